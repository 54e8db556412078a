package utxo

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/ledger"
)

// InitializeArgs carries the caller-chosen fields of a new UTXO.
type InitializeArgs struct {
	VerificationModule address.Address
	VerificationData   []byte
	ContentData        []byte
	AccountSeed        [SeedSize]byte
}

// Store is the base module. It owns every UTXO cell and is the only code
// that writes the lifecycle flags.
type Store struct {
	module  address.Address
	deriver *address.Deriver
}

// NewStore returns a Store acting as base module id. A nil deriver selects
// address.Default.
func NewStore(id address.Address, deriver *address.Deriver) *Store {
	if deriver == nil {
		deriver = address.Default
	}
	return &Store{module: id, deriver: deriver}
}

// Module returns the base module identity.
func (s *Store) Module() address.Address { return s.module }

// Deriver returns the address deriver used to validate cells.
func (s *Store) Deriver() *address.Deriver { return s.deriver }

// ExpectedAddress derives the cell address for seed under verification module vm.
func (s *Store) ExpectedAddress(seed [SeedSize]byte, vm address.Address) (address.Address, error) {
	addr, _, err := s.deriver.Derive(seed[:], vm)
	if err != nil {
		return address.Zero, fmt.Errorf("utxo: derive address: %w", err)
	}
	return addr, nil
}

// CheckAddress fails with ErrWrongSeed unless target is the derived address
// of the record's seed and verification module.
func (s *Store) CheckAddress(rec *Record, target address.Address) error {
	expected, err := s.ExpectedAddress(rec.AccountSeed, rec.VerificationModule)
	if err != nil {
		return err
	}
	if expected != target {
		return fmt.Errorf("%w: %s derives to %s", ErrWrongSeed, target, expected)
	}
	return nil
}

// Initialize allocates and writes a new inactive UTXO at target. payer funds
// the allocation and must be covered by auth.
func (s *Store) Initialize(tx ledger.Tx, target, payer address.Address, args InitializeArgs, auth address.AuthorityProof) (*Record, error) {
	expected, err := s.ExpectedAddress(args.AccountSeed, args.VerificationModule)
	if err != nil {
		return nil, err
	}
	if expected != target {
		return nil, fmt.Errorf("%w: seed derives to %s, got %s", ErrWrongSeed, expected, target)
	}
	if !auth.Has(payer) {
		return nil, fmt.Errorf("%w: payer %s", ErrUnsigned, payer)
	}

	existing, err := tx.Account(target)
	switch {
	case err == nil:
		if len(existing.Data) > 0 || !existing.Owner.IsZero() {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyInUse, target)
		}
	case !errors.Is(err, ledger.ErrAccountNotFound):
		return nil, err
	}

	rec := &Record{
		BaseModule:         s.module,
		VerificationModule: args.VerificationModule,
		VerificationData:   append([]byte{}, args.VerificationData...),
		ContentData:        append([]byte{}, args.ContentData...),
		AccountSeed:        args.AccountSeed,
		IsInitialized:      true,
	}
	data, err := rec.Encode()
	if err != nil {
		return nil, err
	}

	if err := tx.CreateAccount(payer, target, uint64(len(data)), s.module); err != nil {
		if errors.Is(err, ledger.ErrAccountExists) {
			return nil, fmt.Errorf("%w: %w", ErrAlreadyInUse, err)
		}
		return nil, fmt.Errorf("utxo: allocate %s: %w", target, err)
	}
	if err := tx.WriteData(s.module, target, data); err != nil {
		return nil, fmt.Errorf("utxo: write %s: %w", target, err)
	}
	return rec, nil
}

// Load reads the initialized record stored at target.
func (s *Store) Load(tx ledger.Tx, target address.Address) (*Record, error) {
	acct, err := tx.Account(target)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotInitialized, target)
		}
		return nil, err
	}
	if len(acct.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, target)
	}
	if acct.Owner != s.module {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrWrongModule, target, acct.Owner)
	}
	rec, err := Decode(acct.Data)
	if err != nil {
		return nil, err
	}
	if !rec.IsInitialized {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, target)
	}
	return rec, nil
}

// Activate marks the UTXO at target active. auth must cover target itself,
// which only its verification module can produce.
func (s *Store) Activate(tx ledger.Tx, target address.Address, auth address.AuthorityProof) error {
	return s.setActive(tx, target, auth, true)
}

// Deactivate marks the UTXO at target inactive. Same authority as Activate.
func (s *Store) Deactivate(tx ledger.Tx, target address.Address, auth address.AuthorityProof) error {
	return s.setActive(tx, target, auth, false)
}

func (s *Store) setActive(tx ledger.Tx, target address.Address, auth address.AuthorityProof, active bool) error {
	rec, err := s.Load(tx, target)
	if err != nil {
		return err
	}
	if err := s.CheckAddress(rec, target); err != nil {
		return err
	}
	if !auth.Has(target) {
		return fmt.Errorf("%w: %s", ErrUnsigned, target)
	}

	rec.IsActive = active
	data, err := rec.Encode()
	if err != nil {
		return err
	}
	return tx.WriteData(s.module, target, data)
}
