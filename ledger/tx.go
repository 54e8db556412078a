package ledger

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/bitfsorg/libutxo-go/address"
)

// backend is the raw key/value view a batch mutates. Implementations are
// responsible for isolation and for discarding writes on rollback.
type backend interface {
	get(key address.Address) (*Account, error) // nil, nil when absent
	put(acct *Account) error
}

var errReadOnly = errors.New("ledger: read-only batch")

// batch implements Tx on top of a backend.
type batch struct {
	be       backend
	rent     Rent
	writable bool
}

var _ Tx = (*batch)(nil)

func (b *batch) load(key address.Address) (*Account, error) {
	acct, err := b.be.get(key)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, key)
	}
	return acct, nil
}

func (b *batch) loadOrEmpty(key address.Address) (*Account, error) {
	acct, err := b.be.get(key)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		acct = &Account{Key: key}
	}
	return acct, nil
}

func (b *batch) Rent() Rent { return b.rent }

func (b *batch) Account(key address.Address) (*Account, error) {
	acct, err := b.load(key)
	if err != nil {
		return nil, err
	}
	return acct.Clone(), nil
}

func (b *batch) CreateAccount(payer, key address.Address, space uint64, owner address.Address) error {
	if !b.writable {
		return errReadOnly
	}
	acct, err := b.loadOrEmpty(key)
	if err != nil {
		return err
	}
	if len(acct.Data) > 0 || !acct.Owner.IsZero() {
		return fmt.Errorf("%w: %s", ErrAccountExists, key)
	}

	if need := b.rent.MinimumBalance(space); acct.Lamports < need {
		if err := b.Transfer(payer, key, need-acct.Lamports); err != nil {
			return fmt.Errorf("ledger: fund rent for %s: %w", key, err)
		}
		// Transfer wrote the new balance; reload before allocating.
		if acct, err = b.load(key); err != nil {
			return err
		}
	}

	acct.Owner = owner
	acct.Data = make([]byte, space)
	return b.be.put(acct)
}

func (b *batch) WriteData(caller, key address.Address, data []byte) error {
	if !b.writable {
		return errReadOnly
	}
	acct, err := b.load(key)
	if err != nil {
		return err
	}
	if acct.Owner != caller {
		return fmt.Errorf("%w: %s owned by %s, not %s", ErrNotOwner, key, acct.Owner, caller)
	}
	if len(data) != len(acct.Data) {
		return fmt.Errorf("%w: allocated %d bytes, got %d", ErrDataSize, len(acct.Data), len(data))
	}
	acct.Data = append(acct.Data[:0], data...)
	return b.be.put(acct)
}

func (b *batch) Transfer(from, to address.Address, amount uint64) error {
	if !b.writable {
		return errReadOnly
	}
	if amount == 0 || from == to {
		return nil
	}
	src, err := b.load(from)
	if err != nil {
		return err
	}
	if src.Lamports < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, from, src.Lamports, amount)
	}
	remaining := src.Lamports - amount
	if len(src.Data) > 0 && remaining < b.rent.MinimumBalance(uint64(len(src.Data))) {
		return fmt.Errorf("%w: %s", ErrRentExemption, from)
	}

	dst, err := b.loadOrEmpty(to)
	if err != nil {
		return err
	}
	sum, carry := bits.Add64(dst.Lamports, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, to)
	}

	src.Lamports = remaining
	dst.Lamports = sum
	if err := b.be.put(src); err != nil {
		return err
	}
	return b.be.put(dst)
}

func (b *batch) Credit(key address.Address, amount uint64) error {
	if !b.writable {
		return errReadOnly
	}
	acct, err := b.loadOrEmpty(key)
	if err != nil {
		return err
	}
	sum, carry := bits.Add64(acct.Lamports, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, key)
	}
	acct.Lamports = sum
	return b.be.put(acct)
}
