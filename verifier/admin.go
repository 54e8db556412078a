package verifier

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/ledger"
	"github.com/bitfsorg/libutxo-go/utxo"
)

const (
	// AdminSeed is the derivation seed of the vault record.
	AdminSeed = "admin-ecdsa-verification-account"

	// AdminSize is the encoded size of Admin: total_locked(8) || is_initialized(1).
	AdminSize = 9
)

// Admin is the vault record holding the value locked in active UTXOs.
type Admin struct {
	TotalLocked   uint64
	IsInitialized bool
}

// Encode serializes the record into its fixed 9-byte layout.
func (a *Admin) Encode() []byte {
	buf := make([]byte, AdminSize)
	binary.LittleEndian.PutUint64(buf, a.TotalLocked)
	if a.IsInitialized {
		buf[8] = 1
	}
	return buf
}

// DecodeAdmin parses a 9-byte admin record.
func DecodeAdmin(data []byte) (*Admin, error) {
	if len(data) != AdminSize {
		return nil, fmt.Errorf("%w: admin record is %d bytes", utxo.ErrInvalidRecord, len(data))
	}
	a := &Admin{TotalLocked: binary.LittleEndian.Uint64(data)}
	switch data[8] {
	case 0:
	case 1:
		a.IsInitialized = true
	default:
		return nil, fmt.Errorf("%w: admin flag %d", utxo.ErrInvalidRecord, data[8])
	}
	return a, nil
}

// AdminAddress returns the fixed vault address of the verification module id.
func AdminAddress(deriver *address.Deriver, id address.Address) (address.Address, error) {
	addr, _, err := deriver.Derive([]byte(AdminSeed), id)
	if err != nil {
		return address.Zero, fmt.Errorf("verifier: derive admin: %w", err)
	}
	return addr, nil
}

// AdminAddress returns the vault address of this module.
func (p *Program) AdminAddress() address.Address { return p.admin }

func (p *Program) checkAdmin(admin address.Address) error {
	if admin != p.admin {
		return fmt.Errorf("%w: got %s, want %s", utxo.ErrWrongAdmin, admin, p.admin)
	}
	return nil
}

// InitializeAdmin allocates the vault record at admin, funded by payer.
func (p *Program) InitializeAdmin(tx ledger.Tx, admin, payer address.Address, auth address.AuthorityProof) error {
	if err := p.checkAdmin(admin); err != nil {
		return err
	}
	if !auth.Has(payer) {
		return fmt.Errorf("%w: payer %s", utxo.ErrUnsigned, payer)
	}

	if err := tx.CreateAccount(payer, admin, AdminSize, p.id); err != nil {
		if errors.Is(err, ledger.ErrAccountExists) {
			return fmt.Errorf("%w: admin %s", utxo.ErrAlreadyInUse, admin)
		}
		return fmt.Errorf("verifier: allocate admin: %w", err)
	}
	rec := Admin{IsInitialized: true}
	if err := tx.WriteData(p.id, admin, rec.Encode()); err != nil {
		return fmt.Errorf("verifier: write admin: %w", err)
	}

	p.log.Debug().Str("admin", admin.String()).Msg("vault initialized")
	return nil
}

// LoadAdmin reads the vault record.
func (p *Program) LoadAdmin(tx ledger.Tx) (*Admin, error) {
	acct, err := tx.Account(p.admin)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: admin %s", utxo.ErrNotInitialized, p.admin)
		}
		return nil, err
	}
	if acct.Owner != p.id {
		return nil, fmt.Errorf("%w: admin owned by %s", utxo.ErrWrongAdmin, acct.Owner)
	}
	rec, err := DecodeAdmin(acct.Data)
	if err != nil {
		return nil, err
	}
	if !rec.IsInitialized {
		return nil, fmt.Errorf("%w: admin %s", utxo.ErrNotInitialized, p.admin)
	}
	return rec, nil
}

func (p *Program) storeAdmin(tx ledger.Tx, rec *Admin) error {
	return tx.WriteData(p.id, p.admin, rec.Encode())
}
