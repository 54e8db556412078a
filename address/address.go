// Package address implements deterministic, non-signable storage addresses
// and the authority proofs that gate mutations of the cells living at them.
//
// A derived address is sha256(seeds || bump || owner || marker) for the first
// bump (counting down from 255) whose digest is not a valid ed25519 point.
// Nobody holds a private key for such an address, so only the owning module
// can act on its behalf, and it does so by presenting an AuthorityProof.
package address

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// Size is the byte length of an Address.
const Size = 32

// Address identifies a storage cell or a module.
type Address [Size]byte

// Zero is the all-zero address.
var Zero Address

// String returns the base58 encoding of the address.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, a[:])
	return b
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool { return a == Zero }

// Equal reports whether a and b are the same address.
func (a Address) Equal(b Address) bool { return bytes.Equal(a[:], b[:]) }

// FromBytes converts a 32-byte slice into an Address.
func FromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != Size {
		return a, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, Size, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// ParseAddress decodes a base58 string into an Address.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return Zero, fmt.Errorf("%w: empty string", ErrInvalidAddress)
	}
	return FromBytes(base58.Decode(s))
}

// ModuleID returns a stable identity for a named module.
func ModuleID(name string) Address {
	return Address(sha256.Sum256([]byte(name)))
}
