package ledger

import (
	"sync"

	"github.com/bitfsorg/libutxo-go/address"
)

// MemoryLedger keeps accounts in memory. Batches are serialized and staged in
// an overlay that is merged only on success.
type MemoryLedger struct {
	mu       sync.RWMutex
	accounts map[address.Address]*Account
	rent     Rent
}

var _ Ledger = (*MemoryLedger)(nil)

// NewMemoryLedger returns an empty in-memory ledger using rent.
func NewMemoryLedger(rent Rent) *MemoryLedger {
	return &MemoryLedger{
		accounts: make(map[address.Address]*Account),
		rent:     rent,
	}
}

// overlay stages writes on top of the committed accounts.
type overlay struct {
	base  map[address.Address]*Account
	dirty map[address.Address]*Account
}

func (o *overlay) get(key address.Address) (*Account, error) {
	if acct, ok := o.dirty[key]; ok {
		return acct.Clone(), nil
	}
	if acct, ok := o.base[key]; ok {
		return acct.Clone(), nil
	}
	return nil, nil
}

func (o *overlay) put(acct *Account) error {
	o.dirty[acct.Key] = acct.Clone()
	return nil
}

// Update runs fn and commits its writes if it returns nil.
func (l *MemoryLedger) Update(fn func(Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ov := &overlay{base: l.accounts, dirty: make(map[address.Address]*Account)}
	if err := fn(&batch{be: ov, rent: l.rent, writable: true}); err != nil {
		return err
	}
	for k, acct := range ov.dirty {
		l.accounts[k] = acct
	}
	return nil
}

// View runs fn against a read-only batch.
func (l *MemoryLedger) View(fn func(Tx) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ov := &overlay{base: l.accounts, dirty: make(map[address.Address]*Account)}
	return fn(&batch{be: ov, rent: l.rent})
}
