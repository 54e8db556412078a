package ledger

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libutxo-go/address"
)

var bucketAccounts = []byte("accounts")

// BoltLedger persists accounts in a bbolt database. Each Update maps onto one
// bbolt read-write transaction, so a failing batch leaves no trace on disk.
type BoltLedger struct {
	db   *bbolt.DB
	rent Rent
}

var _ Ledger = (*BoltLedger)(nil)

// OpenBoltLedger opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltLedger(dbPath string, rent Rent) (*BoltLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketAccounts); err != nil {
			return fmt.Errorf("boltstore: create bucket %q: %w", bucketAccounts, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create buckets: %w", err)
	}

	return &BoltLedger{db: db, rent: rent}, nil
}

// Close closes the underlying database.
func (l *BoltLedger) Close() error { return l.db.Close() }

// Update runs fn inside a bbolt read-write transaction.
func (l *BoltLedger) Update(fn func(Tx) error) error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		return fn(&batch{be: &boltBackend{b: tx.Bucket(bucketAccounts)}, rent: l.rent, writable: true})
	})
}

// View runs fn inside a bbolt read-only transaction.
func (l *BoltLedger) View(fn func(Tx) error) error {
	return l.db.View(func(tx *bbolt.Tx) error {
		return fn(&batch{be: &boltBackend{b: tx.Bucket(bucketAccounts)}, rent: l.rent})
	})
}

// AccountCount returns the number of stored accounts.
func (l *BoltLedger) AccountCount() (int, error) {
	var n int
	err := l.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketAccounts).Stats().KeyN
		return nil
	})
	return n, err
}

// ForEach calls fn for every stored account in key order.
func (l *BoltLedger) ForEach(fn func(*Account) error) error {
	return l.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAccounts).ForEach(func(k, v []byte) error {
			var acct Account
			if err := decodeGob(v, &acct); err != nil {
				return fmt.Errorf("%w: %x: %w", ErrCorruptAccount, k, err)
			}
			return fn(&acct)
		})
	})
}

type boltBackend struct {
	b *bbolt.Bucket
}

func (s *boltBackend) get(key address.Address) (*Account, error) {
	data := s.b.Get(key[:])
	if data == nil {
		return nil, nil
	}
	var acct Account
	if err := decodeGob(data, &acct); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptAccount, key, err)
	}
	return &acct, nil
}

func (s *boltBackend) put(acct *Account) error {
	data, err := encodeGob(acct)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	if err := s.b.Put(acct.Key[:], data); err != nil {
		return fmt.Errorf("boltstore: put account: %w", err)
	}
	return nil
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
