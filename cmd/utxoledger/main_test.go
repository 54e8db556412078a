package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libutxo-go/config"
	"github.com/bitfsorg/libutxo-go/wallet"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

type cliHarness struct {
	t       *testing.T
	dataDir string
}

func newCLI(t *testing.T) *cliHarness {
	t.Helper()
	return &cliHarness{t: t, dataDir: t.TempDir()}
}

// run executes one command and returns its standard output.
func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"utxoledger", "--datadir", h.dataDir, "--password", "pw"}, args...)
	err := newApp(&stdout, &stderr).Run(full)
	return stdout.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "utxoledger %s", strings.Join(args, " "))
	return out
}

// noteState returns the STATE column of label in the show listing.
func (h *cliHarness) noteState(label string) string {
	h.t.Helper()
	for _, line := range strings.Split(h.mustRun("show"), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 4 && fields[0] == label {
			return fields[3]
		}
	}
	h.t.Fatalf("no show line for %q", label)
	return ""
}

func TestCLI_Lifecycle(t *testing.T) {
	h := newCLI(t)

	out := h.mustRun("init", "--network", "regtest", "--mnemonic", testMnemonic)
	assert.Contains(t, out, "Fee account:")
	assert.NotContains(t, out, "Mnemonic:")

	_, err := h.run("init", "--mnemonic", testMnemonic)
	assert.ErrorIs(t, err, errAlreadyInitialized)

	out = h.mustRun("airdrop", "--amount", "1000000000")
	assert.Contains(t, out, "Fee account balance: 1000000000")

	h.mustRun("create", "--label", "a", "--amount", "1500", "--deposit")
	assert.Equal(t, "active", h.noteState("a"))

	out = h.mustRun("transfer", "--from", "a", "--to", "b:1000", "--to", "c:500")
	assert.Contains(t, out, "Transferred 1500 from 1 input(s) to 2 output(s)")
	assert.Equal(t, "spent", h.noteState("a"))
	assert.Equal(t, "active", h.noteState("b"))
	assert.Equal(t, "active", h.noteState("c"))

	h.mustRun("withdraw", "--label", "b")
	assert.Equal(t, "spent", h.noteState("b"))
	assert.Contains(t, h.mustRun("show"), "Vault locked: 500")

	_, err = h.run("withdraw", "--label", "b")
	assert.ErrorIs(t, err, errNoteSpent)

	_, err = h.run("transfer", "--from", "c", "--to", "d:400")
	assert.ErrorIs(t, err, errUnbalanced)

	state, err := wallet.LoadState(h.dataDir)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), state.Balance())
	assert.Equal(t, uint32(3), state.NextIndex)
}

func TestCLI_CreateThenDeposit(t *testing.T) {
	h := newCLI(t)
	h.mustRun("init", "--mnemonic", testMnemonic)
	h.mustRun("airdrop", "--amount", "100000000")

	h.mustRun("create", "--label", "x", "--amount", "7")
	assert.Equal(t, "inactive", h.noteState("x"))
	assert.Contains(t, h.mustRun("show"), "not initialized")

	_, err := h.run("create", "--label", "x", "--amount", "7")
	assert.ErrorIs(t, err, wallet.ErrNoteExists)

	h.mustRun("deposit", "--label", "x")
	assert.Equal(t, "active", h.noteState("x"))
	assert.Contains(t, h.mustRun("show"), "Vault locked: 7")
}

func TestCLI_WithdrawToAddress(t *testing.T) {
	h := newCLI(t)
	h.mustRun("init", "--mnemonic", testMnemonic)
	h.mustRun("airdrop", "--amount", "100000000")
	h.mustRun("create", "--label", "x", "--amount", "250", "--deposit")

	receiver := config.ResolveModule("somebody")
	out := h.mustRun("withdraw", "--label", "x", "--to", receiver.String())
	assert.Contains(t, out, "Withdrew 250 from x to "+receiver.String())
}

func TestCLI_Errors(t *testing.T) {
	h := newCLI(t)

	_, err := h.run("show")
	assert.ErrorIs(t, err, config.ErrConfigNotFound)

	var stdout, stderr bytes.Buffer
	err = newApp(&stdout, &stderr).Run([]string{"utxoledger", "--datadir", h.dataDir, "init"})
	assert.ErrorIs(t, err, errNoPassword)

	_, err = h.run("init", "--words", "15")
	assert.ErrorIs(t, err, wallet.ErrInvalidEntropy)

	_, err = h.run("init", "--network", "devnet")
	assert.ErrorIs(t, err, config.ErrInvalidNetwork)

	out := h.mustRun("init", "--words", "24")
	assert.Contains(t, out, "Mnemonic:")

	_, err = h.run("deposit", "--label", "nope")
	assert.ErrorIs(t, err, wallet.ErrNoteNotFound)

	_, err = h.run("transfer", "--from", "nope", "--to", "x")
	assert.ErrorIs(t, err, wallet.ErrNoteNotFound)
}

func TestParseOutput(t *testing.T) {
	o, err := parseOutput("note:42")
	require.NoError(t, err)
	assert.Equal(t, output{label: "note", amount: 42}, o)

	for _, bad := range []string{"note", ":5", "note:-1", "note:x"} {
		_, err := parseOutput(bad)
		assert.ErrorIs(t, err, errBadOutput, bad)
	}
}
