package address

// AuthorityProof records which addresses the current invocation acts for.
// Transaction signers are added with Signers; a module proves authority over
// one of its derived addresses with Deriver.SignDerived. The zero value
// grants nothing.
type AuthorityProof struct {
	keys map[Address]struct{}
}

// Signers returns a proof covering the given externally signed keys.
func Signers(keys ...Address) AuthorityProof {
	p := AuthorityProof{keys: make(map[Address]struct{}, len(keys))}
	for _, k := range keys {
		p.keys[k] = struct{}{}
	}
	return p
}

// Has reports whether the proof covers addr.
func (p AuthorityProof) Has(addr Address) bool {
	_, ok := p.keys[addr]
	return ok
}

// Merge returns a new proof covering the keys of both p and other.
func (p AuthorityProof) Merge(other AuthorityProof) AuthorityProof {
	out := AuthorityProof{keys: make(map[Address]struct{}, len(p.keys)+len(other.keys))}
	for k := range p.keys {
		out.keys[k] = struct{}{}
	}
	for k := range other.keys {
		out.keys[k] = struct{}{}
	}
	return out
}

// Keys returns the covered addresses in no particular order.
func (p AuthorityProof) Keys() []Address {
	out := make([]Address, 0, len(p.keys))
	for k := range p.keys {
		out = append(out, k)
	}
	return out
}

// SignDerived returns a proof for the address owner derives from seeds.
// Only code acting as owner should call this; it is the in-process
// equivalent of a module signing for its own derived address.
func (d *Deriver) SignDerived(owner Address, seeds ...[]byte) (AuthorityProof, error) {
	addr, _, err := d.FindAddress(seeds, owner)
	if err != nil {
		return AuthorityProof{}, err
	}
	return Signers(addr), nil
}
