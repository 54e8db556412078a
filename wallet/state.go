package wallet

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/utxo"
)

// StateFileName is the wallet metadata file inside the data directory.
const StateFileName = "wallet.json"

// Note is a UTXO the wallet owns or has created.
type Note struct {
	Label   string `json:"label"`
	Address string `json:"address"` // base58 cell address
	Seed    string `json:"seed"`    // hex account seed
	Account uint32 `json:"account"`
	Index   uint32 `json:"index"` // owner key index
	Amount  uint64 `json:"amount"`
	Spent   bool   `json:"spent"`
}

// AccountSeed decodes the note's seed.
func (n *Note) AccountSeed() ([utxo.SeedSize]byte, error) {
	var seed [utxo.SeedSize]byte
	raw, err := hex.DecodeString(n.Seed)
	if err != nil || len(raw) != utxo.SeedSize {
		return seed, fmt.Errorf("%w: note %q seed", ErrInvalidState, n.Label)
	}
	copy(seed[:], raw)
	return seed, nil
}

// Target decodes the note's cell address.
func (n *Note) Target() (address.Address, error) {
	addr, err := address.ParseAddress(n.Address)
	if err != nil {
		return address.Zero, fmt.Errorf("%w: note %q address: %w", ErrInvalidState, n.Label, err)
	}
	return addr, nil
}

// WalletState holds persisted wallet metadata.
type WalletState struct {
	NextIndex uint32  `json:"next_index"` // next unused owner key index
	Notes     []*Note `json:"notes"`
}

// NewWalletState creates an empty WalletState.
func NewWalletState() *WalletState {
	return &WalletState{Notes: []*Note{}}
}

// Validate checks the integrity of a deserialized WalletState.
func (ws *WalletState) Validate() error {
	labels := make(map[string]bool, len(ws.Notes))
	cells := make(map[string]string, len(ws.Notes))
	for _, n := range ws.Notes {
		if n.Label == "" {
			return fmt.Errorf("%w: empty label", ErrInvalidState)
		}
		if labels[n.Label] {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidState, n.Label)
		}
		labels[n.Label] = true

		if prev, ok := cells[n.Address]; ok {
			return fmt.Errorf("%w: notes %q and %q share cell %s", ErrInvalidState, prev, n.Label, n.Address)
		}
		cells[n.Address] = n.Label

		if _, err := n.AccountSeed(); err != nil {
			return err
		}
		if _, err := n.Target(); err != nil {
			return err
		}
		if n.Index >= ws.NextIndex {
			return fmt.Errorf("%w: note %q uses index %d but next index is %d", ErrInvalidState, n.Label, n.Index, ws.NextIndex)
		}
	}
	return nil
}

// AllocateIndex reserves the next owner key index.
func (ws *WalletState) AllocateIndex() (uint32, error) {
	if ws.NextIndex >= Hardened {
		return 0, ErrIndexOutOfRange
	}
	idx := ws.NextIndex
	ws.NextIndex++
	return idx, nil
}

// AddNote records n. Labels are unique.
func (ws *WalletState) AddNote(n *Note) error {
	if _, err := ws.GetNote(n.Label); err == nil {
		return fmt.Errorf("%w: %q", ErrNoteExists, n.Label)
	}
	ws.Notes = append(ws.Notes, n)
	return nil
}

// GetNote returns the note with label.
func (ws *WalletState) GetNote(label string) (*Note, error) {
	for _, n := range ws.Notes {
		if n.Label == label {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoteNotFound, label)
}

// Unspent returns the notes not yet spent, ordered by label.
func (ws *WalletState) Unspent() []*Note {
	var out []*Note
	for _, n := range ws.Notes {
		if !n.Spent {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Balance sums the amounts of unspent notes.
func (ws *WalletState) Balance() uint64 {
	var total uint64
	for _, n := range ws.Unspent() {
		total += n.Amount
	}
	return total
}

// LoadState reads dataDir/wallet.json, returning an empty state if absent.
func LoadState(dataDir string) (*WalletState, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, StateFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewWalletState(), nil
		}
		return nil, fmt.Errorf("wallet: read state: %w", err)
	}
	ws := NewWalletState()
	if err := json.Unmarshal(data, ws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	return ws, nil
}

// SaveState writes ws to dataDir/wallet.json.
func SaveState(dataDir string, ws *WalletState) error {
	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return fmt.Errorf("wallet: encode state: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("wallet: create data directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, StateFileName), data, 0600); err != nil {
		return fmt.Errorf("wallet: write state: %w", err)
	}
	return nil
}
