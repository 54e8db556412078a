// Package ledger models the account-based runtime the UTXO core runs on: it
// stores account bytes, tracks native balances, charges rent-exempt deposits
// and applies each batch of mutations all-or-nothing.
package ledger

import (
	"github.com/bitfsorg/libutxo-go/address"
)

// Account is a single storage cell.
type Account struct {
	Key      address.Address
	Owner    address.Address // module allowed to write Data
	Lamports uint64
	Data     []byte
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

// Tx is an open batch. All mutations made through a Tx become visible
// together when the enclosing Update returns nil, and are discarded otherwise.
type Tx interface {
	// Account returns a copy of the account at key.
	Account(key address.Address) (*Account, error)

	// CreateAccount allocates space zeroed bytes at key owned by owner and
	// funds its rent-exempt minimum from payer.
	CreateAccount(payer, key address.Address, space uint64, owner address.Address) error

	// WriteData replaces the data of key. Only the owning module may write and
	// the length must match the allocation.
	WriteData(caller, key address.Address, data []byte) error

	// Transfer moves native value between accounts.
	Transfer(from, to address.Address, amount uint64) error

	// Credit mints native value into key, creating an empty account if needed.
	Credit(key address.Address, amount uint64) error

	// Rent returns the rent schedule in force.
	Rent() Rent
}

// Ledger runs batches against account storage.
type Ledger interface {
	// Update runs fn in a read-write batch that commits only if fn returns nil.
	Update(fn func(Tx) error) error

	// View runs fn in a read-only batch. Mutations fail.
	View(fn func(Tx) error) error
}
