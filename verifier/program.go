// Package verifier is the ECDSA verification module. It keeps the vault
// record of value locked in live UTXOs and decides whether deposits,
// withdrawals and transfers may flip UTXO lifecycle flags in the base module.
package verifier

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/sigverify"
	"github.com/bitfsorg/libutxo-go/utxo"
)

// Program is one deployment of the verification module.
type Program struct {
	id      address.Address
	admin   address.Address
	base    *utxo.Store
	scheme  sigverify.Scheme
	deriver *address.Deriver
	log     zerolog.Logger
}

// New returns the verification module id governing UTXOs held in base. A nil
// scheme selects secp256k1 public-key recovery.
func New(id address.Address, base *utxo.Store, scheme sigverify.Scheme, log zerolog.Logger) (*Program, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: base store", ErrNilParam)
	}
	if scheme == nil {
		scheme = sigverify.NewSecp256k1Recover(log)
	}
	deriver := base.Deriver()
	admin, err := AdminAddress(deriver, id)
	if err != nil {
		return nil, err
	}
	return &Program{
		id:      id,
		admin:   admin,
		base:    base,
		scheme:  scheme,
		deriver: deriver,
		log:     log.With().Str("module", "verifier").Logger(),
	}, nil
}

// ID returns the verification module identity.
func (p *Program) ID() address.Address { return p.id }

// Base returns the base module store this module drives.
func (p *Program) Base() *utxo.Store { return p.base }

func (p *Program) checkBase(base address.Address) error {
	if base != p.base.Module() {
		return fmt.Errorf("%w: base module %s, want %s", utxo.ErrWrongModule, base, p.base.Module())
	}
	return nil
}

// governed rejects records that name a different verification module.
func (p *Program) governed(rec *utxo.Record, target address.Address) error {
	if rec.VerificationModule != p.id {
		return fmt.Errorf("%w: %s is governed by %s", utxo.ErrWrongModule, target, rec.VerificationModule)
	}
	return nil
}

// authorityFor proves this module acts for the UTXO derived from seed.
func (p *Program) authorityFor(rec *utxo.Record) (address.AuthorityProof, error) {
	return p.deriver.SignDerived(p.id, rec.AccountSeed[:])
}
