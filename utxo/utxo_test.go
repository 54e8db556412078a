package utxo

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/ledger"
)

var (
	baseID   = address.ModuleID("utxo-base")
	verifyID = address.ModuleID("utxo-verify")
	payer    = address.ModuleID("payer")
)

func makeSeed(b byte) [SeedSize]byte {
	var s [SeedSize]byte
	for i := range s {
		s[i] = b
	}
	return s
}

func newFundedLedger(t *testing.T) *ledger.MemoryLedger {
	t.Helper()
	l := ledger.NewMemoryLedger(ledger.DefaultRent())
	require.NoError(t, l.Update(func(tx ledger.Tx) error { return tx.Credit(payer, 1<<40) }))
	return l
}

func initArgs(seed byte, amount uint64) InitializeArgs {
	return InitializeArgs{
		VerificationModule: verifyID,
		VerificationData:   bytes.Repeat([]byte{0x04}, 64),
		ContentData:        EncodeAmount(amount),
		AccountSeed:        makeSeed(seed),
	}
}

func slotFor(t *testing.T, s *Store, seed byte) address.Address {
	t.Helper()
	addr, err := s.ExpectedAddress(makeSeed(seed), verifyID)
	require.NoError(t, err)
	return addr
}

func signedBy(t *testing.T, seed byte) address.AuthorityProof {
	t.Helper()
	s := makeSeed(seed)
	p, err := address.Default.SignDerived(verifyID, s[:])
	require.NoError(t, err)
	return p
}

func loadRecord(t *testing.T, l ledger.Ledger, s *Store, target address.Address) *Record {
	t.Helper()
	var rec *Record
	require.NoError(t, l.View(func(tx ledger.Tx) error {
		var err error
		rec, err = s.Load(tx, target)
		return err
	}))
	return rec
}

// ---------------------------------------------------------------------------
// Record layout
// ---------------------------------------------------------------------------

func TestRecord_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		vLen    int
		cLen    int
		active  bool
		initted bool
	}{
		{"empty fields", 0, 0, false, false},
		{"ecdsa scheme", 64, 8, true, true},
		{"odd lengths", 3, 17, false, true},
		{"large verification data", 1024, 1, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Record{
				BaseModule:         baseID,
				VerificationModule: verifyID,
				VerificationData:   bytes.Repeat([]byte{0xAB}, tt.vLen),
				ContentData:        bytes.Repeat([]byte{0xCD}, tt.cLen),
				IsActive:           tt.active,
				AccountSeed:        makeSeed(0x42),
				IsInitialized:      tt.initted,
			}
			data, err := rec.Encode()
			require.NoError(t, err)
			assert.Len(t, data, EncodedSize(tt.vLen, tt.cLen))

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, rec, decoded)

			again, err := decoded.Encode()
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestRecord_Size(t *testing.T) {
	assert.Equal(t, 96+64+8+2, Size(64, 8))
	assert.Equal(t, Size(64, 8)+8, EncodedSize(64, 8))

	rec := &Record{VerificationData: make([]byte, 5), ContentData: make([]byte, 7)}
	assert.Equal(t, 96+5+7+2, rec.Size())
}

func TestRecord_Layout(t *testing.T) {
	rec := &Record{
		BaseModule:         baseID,
		VerificationModule: verifyID,
		VerificationData:   []byte{1, 2},
		ContentData:        []byte{3},
		IsActive:           true,
		AccountSeed:        makeSeed(9),
		IsInitialized:      true,
	}
	data, err := rec.Encode()
	require.NoError(t, err)

	assert.Equal(t, baseID[:], data[0:32])
	assert.Equal(t, verifyID[:], data[32:64])
	assert.Equal(t, []byte{2, 0, 0, 0, 1, 2}, data[64:70])
	assert.Equal(t, []byte{1, 0, 0, 0, 3}, data[70:75])
	assert.Equal(t, byte(1), data[75])
	assert.Equal(t, bytes.Repeat([]byte{9}, 32), data[76:108])
	assert.Equal(t, byte(1), data[108])
}

func TestDecode_Malformed(t *testing.T) {
	rec := &Record{VerificationData: []byte{1}, ContentData: []byte{2}, IsInitialized: true}
	good, err := rec.Encode()
	require.NoError(t, err)

	badFlag := append([]byte{}, good...)
	badFlag[len(badFlag)-1] = 7

	hugeLen := append([]byte{}, good...)
	hugeLen[64] = 0xFF

	// 0xFFFFFFFF does not fit a 32-bit int and must not wrap.
	maxLen := append([]byte{}, good...)
	copy(maxLen[64:68], []byte{0xFF, 0xFF, 0xFF, 0xFF})

	tests := map[string][]byte{
		"empty":     nil,
		"truncated": good[:len(good)-1],
		"trailing":  append(append([]byte{}, good...), 0),
		"bad flag":  badFlag,
		"huge len":  hugeLen,
		"max len":   maxLen,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

// ---------------------------------------------------------------------------
// Amounts and codes
// ---------------------------------------------------------------------------

func TestAmount(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x03, 0xE8}, EncodeAmount(1000))

	got, err := DecodeAmount(EncodeAmount(1500))
	require.NoError(t, err)
	assert.Equal(t, uint64(1500), got)

	_, err = DecodeAmount([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestCode(t *testing.T) {
	for i, kind := range codes {
		code, ok := Code(fmt.Errorf("wrapped: %w", kind))
		require.True(t, ok)
		assert.Equal(t, uint32(i), code)
		assert.Equal(t, kind, Kind(code))
	}
	_, ok := Code(fmt.Errorf("other"))
	assert.False(t, ok)
	assert.Nil(t, Kind(uint32(len(codes))))

	code, _ := Code(ErrInvalidTransferData)
	assert.Equal(t, uint32(8), code)
}

// ---------------------------------------------------------------------------
// Store lifecycle
// ---------------------------------------------------------------------------

func TestStore_Initialize(t *testing.T) {
	l := newFundedLedger(t)
	s := NewStore(baseID, nil)
	target := slotFor(t, s, 1)

	require.NoError(t, l.Update(func(tx ledger.Tx) error {
		_, err := s.Initialize(tx, target, payer, initArgs(1, 1000), address.Signers(payer))
		return err
	}))

	rec := loadRecord(t, l, s, target)
	assert.True(t, rec.IsInitialized)
	assert.False(t, rec.IsActive)
	assert.Equal(t, baseID, rec.BaseModule)
	assert.Equal(t, verifyID, rec.VerificationModule)
	assert.Equal(t, makeSeed(1), rec.AccountSeed)

	require.NoError(t, l.View(func(tx ledger.Tx) error {
		acct, err := tx.Account(target)
		require.NoError(t, err)
		assert.Equal(t, baseID, acct.Owner)
		assert.Len(t, acct.Data, EncodedSize(64, 8))
		return nil
	}))
}

func TestStore_InitializeTwice(t *testing.T) {
	l := newFundedLedger(t)
	s := NewStore(baseID, nil)
	target := slotFor(t, s, 1)
	auth := address.Signers(payer)

	require.NoError(t, l.Update(func(tx ledger.Tx) error {
		_, err := s.Initialize(tx, target, payer, initArgs(1, 1000), auth)
		return err
	}))
	err := l.Update(func(tx ledger.Tx) error {
		_, err := s.Initialize(tx, target, payer, initArgs(1, 5), auth)
		return err
	})
	assert.ErrorIs(t, err, ErrAlreadyInUse)

	amount, err := loadRecord(t, l, s, target).Amount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), amount)
}

func TestStore_InitializeWrongSlot(t *testing.T) {
	l := newFundedLedger(t)
	s := NewStore(baseID, nil)

	err := l.Update(func(tx ledger.Tx) error {
		_, err := s.Initialize(tx, slotFor(t, s, 2), payer, initArgs(1, 1000), address.Signers(payer))
		return err
	})
	assert.ErrorIs(t, err, ErrWrongSeed)
}

func TestStore_InitializeUnsignedPayer(t *testing.T) {
	l := newFundedLedger(t)
	s := NewStore(baseID, nil)

	err := l.Update(func(tx ledger.Tx) error {
		_, err := s.Initialize(tx, slotFor(t, s, 1), payer, initArgs(1, 1000), address.AuthorityProof{})
		return err
	})
	assert.ErrorIs(t, err, ErrUnsigned)
}

func TestStore_ActivateDeactivate(t *testing.T) {
	l := newFundedLedger(t)
	s := NewStore(baseID, nil)
	target := slotFor(t, s, 1)

	require.NoError(t, l.Update(func(tx ledger.Tx) error {
		_, err := s.Initialize(tx, target, payer, initArgs(1, 1000), address.Signers(payer))
		return err
	}))

	auth := signedBy(t, 1)
	require.NoError(t, l.Update(func(tx ledger.Tx) error { return s.Activate(tx, target, auth) }))
	assert.True(t, loadRecord(t, l, s, target).IsActive)

	// Re-activation re-asserts the flag without error.
	require.NoError(t, l.Update(func(tx ledger.Tx) error { return s.Activate(tx, target, auth) }))
	assert.True(t, loadRecord(t, l, s, target).IsActive)

	require.NoError(t, l.Update(func(tx ledger.Tx) error { return s.Deactivate(tx, target, auth) }))
	assert.False(t, loadRecord(t, l, s, target).IsActive)
}

func TestStore_ActivateErrors(t *testing.T) {
	l := newFundedLedger(t)
	s := NewStore(baseID, nil)
	target := slotFor(t, s, 1)

	err := l.Update(func(tx ledger.Tx) error { return s.Activate(tx, target, signedBy(t, 1)) })
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, l.Update(func(tx ledger.Tx) error {
		_, err := s.Initialize(tx, target, payer, initArgs(1, 1000), address.Signers(payer))
		return err
	}))

	for _, op := range []func(ledger.Tx, address.Address, address.AuthorityProof) error{s.Activate, s.Deactivate} {
		err = l.Update(func(tx ledger.Tx) error { return op(tx, target, address.Signers(payer)) })
		assert.ErrorIs(t, err, ErrUnsigned)

		err = l.Update(func(tx ledger.Tx) error { return op(tx, target, signedBy(t, 2)) })
		assert.ErrorIs(t, err, ErrUnsigned)
	}
}

func TestStore_TamperedSeed(t *testing.T) {
	l := newFundedLedger(t)
	s := NewStore(baseID, nil)
	target := slotFor(t, s, 1)

	require.NoError(t, l.Update(func(tx ledger.Tx) error {
		rec, err := s.Initialize(tx, target, payer, initArgs(1, 1000), address.Signers(payer))
		if err != nil {
			return err
		}
		rec.AccountSeed = makeSeed(2)
		data, err := rec.Encode()
		if err != nil {
			return err
		}
		return tx.WriteData(baseID, target, data)
	}))

	auth := signedBy(t, 1)
	err := l.Update(func(tx ledger.Tx) error { return s.Activate(tx, target, auth) })
	assert.ErrorIs(t, err, ErrWrongSeed)
	err = l.Update(func(tx ledger.Tx) error { return s.Deactivate(tx, target, auth) })
	assert.ErrorIs(t, err, ErrWrongSeed)
}

func TestStore_LoadForeignAccount(t *testing.T) {
	l := newFundedLedger(t)
	s := NewStore(baseID, nil)
	other := address.ModuleID("other")

	require.NoError(t, l.Update(func(tx ledger.Tx) error {
		return tx.CreateAccount(payer, other, 8, verifyID)
	}))
	err := l.View(func(tx ledger.Tx) error {
		_, err := s.Load(tx, other)
		return err
	})
	assert.ErrorIs(t, err, ErrWrongModule)
}
