package wallet

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libutxo-go/address"
)

func testNote(label string, index uint32, amount uint64) *Note {
	var seed [32]byte
	seed[0] = byte(index)
	return &Note{
		Label:   label,
		Address: address.ModuleID(label).String(),
		Seed:    hex.EncodeToString(seed[:]),
		Index:   index,
		Amount:  amount,
	}
}

func TestWalletState_Notes(t *testing.T) {
	ws := NewWalletState()

	for i, label := range []string{"b", "a", "c"} {
		idx, err := ws.AllocateIndex()
		require.NoError(t, err)
		assert.Equal(t, uint32(i), idx)
		require.NoError(t, ws.AddNote(testNote(label, idx, uint64(100*(i+1)))))
	}
	assert.ErrorIs(t, ws.AddNote(testNote("a", 0, 1)), ErrNoteExists)

	n, err := ws.GetNote("c")
	require.NoError(t, err)
	assert.Equal(t, uint64(300), n.Amount)
	_, err = ws.GetNote("missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)

	assert.Equal(t, uint64(600), ws.Balance())
	n.Spent = true
	unspent := ws.Unspent()
	require.Len(t, unspent, 2)
	assert.Equal(t, "a", unspent[0].Label)
	assert.Equal(t, "b", unspent[1].Label)
	assert.Equal(t, uint64(300), ws.Balance())
	require.NoError(t, ws.Validate())
}

func TestNote_Decode(t *testing.T) {
	n := testNote("x", 4, 1)
	seed, err := n.AccountSeed()
	require.NoError(t, err)
	assert.Equal(t, byte(4), seed[0])

	target, err := n.Target()
	require.NoError(t, err)
	assert.Equal(t, address.ModuleID("x"), target)

	n.Seed = "abcd"
	_, err = n.AccountSeed()
	assert.ErrorIs(t, err, ErrInvalidState)
	n.Address = "0OIl"
	_, err = n.Target()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestWalletState_Validate(t *testing.T) {
	tests := []struct {
		name  string
		state func() *WalletState
	}{
		{"empty label", func() *WalletState {
			return &WalletState{NextIndex: 1, Notes: []*Note{testNote("", 0, 1)}}
		}},
		{"duplicate label", func() *WalletState {
			a, b := testNote("a", 0, 1), testNote("a", 1, 1)
			b.Address = address.ModuleID("other").String()
			return &WalletState{NextIndex: 2, Notes: []*Note{a, b}}
		}},
		{"shared cell", func() *WalletState {
			a, b := testNote("a", 0, 1), testNote("b", 1, 1)
			b.Address = a.Address
			return &WalletState{NextIndex: 2, Notes: []*Note{a, b}}
		}},
		{"index not allocated", func() *WalletState {
			return &WalletState{NextIndex: 1, Notes: []*Note{testNote("a", 1, 1)}}
		}},
		{"bad seed", func() *WalletState {
			n := testNote("a", 0, 1)
			n.Seed = "zz"
			return &WalletState{NextIndex: 1, Notes: []*Note{n}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.state().Validate(), ErrInvalidState)
		})
	}
}

func TestAllocateIndex_Exhausted(t *testing.T) {
	ws := &WalletState{NextIndex: Hardened}
	_, err := ws.AllocateIndex()
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSaveLoadState(t *testing.T) {
	dir := t.TempDir()

	ws, err := LoadState(dir)
	require.NoError(t, err)
	assert.Empty(t, ws.Notes)

	idx, err := ws.AllocateIndex()
	require.NoError(t, err)
	require.NoError(t, ws.AddNote(testNote("first", idx, 42)))
	require.NoError(t, SaveState(dir, ws))

	loaded, err := LoadState(dir)
	require.NoError(t, err)
	assert.Equal(t, ws, loaded)

	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName), []byte("{not json"), 0600))
	_, err = LoadState(dir)
	assert.ErrorIs(t, err, ErrInvalidState)
}
