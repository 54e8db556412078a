package wallet

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/sigverify"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// --- Mnemonic tests ---

func TestGenerateMnemonic(t *testing.T) {
	for bits, words := range map[int]int{Mnemonic12Words: 12, Mnemonic24Words: 24} {
		mnemonic, err := GenerateMnemonic(bits)
		require.NoError(t, err)
		assert.Len(t, strings.Fields(mnemonic), words)
		assert.True(t, ValidateMnemonic(mnemonic), "generated mnemonic should be valid")
	}

	_, err := GenerateMnemonic(64)
	assert.ErrorIs(t, err, ErrInvalidEntropy)
}

func TestValidateMnemonic(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		valid    bool
	}{
		{"valid 12-word", testMnemonic, true},
		{"invalid words", "foo bar baz qux quux corge grault garply waldo fred plugh xyzzy", false},
		{"empty", "", false},
		{"partial", "abandon abandon", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateMnemonic(tt.mnemonic))
		})
	}
}

func TestSeedFromMnemonic(t *testing.T) {
	seed1, err := SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	assert.Len(t, seed1, 64)
	// BIP39 test vector for the all-abandon mnemonic with an empty passphrase.
	assert.Equal(t, "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc1", hex.EncodeToString(seed1[:32]))

	seed2, err := SeedFromMnemonic(testMnemonic, "my secret passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, seed1, seed2)

	_, err = SeedFromMnemonic("invalid mnemonic words here", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

// --- Seed encryption tests ---

func TestEncryptDecryptSeed_RoundTrip(t *testing.T) {
	seed := make([]byte, 64)
	for i := range seed {
		seed[i] = byte(i)
	}

	enc1, err := EncryptSeed(seed, "pw")
	require.NoError(t, err)
	enc2, err := EncryptSeed(seed, "pw")
	require.NoError(t, err)
	assert.NotEqual(t, enc1, enc2, "salt and nonce are random")

	for _, enc := range [][]byte{enc1, enc2} {
		dec, err := DecryptSeed(enc, "pw")
		require.NoError(t, err)
		assert.Equal(t, seed, dec)
	}
}

func TestDecryptSeed_Failures(t *testing.T) {
	enc, err := EncryptSeed(make([]byte, 64), "correct")
	require.NoError(t, err)

	_, err = DecryptSeed(enc, "wrong")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	tampered := append([]byte{}, enc...)
	tampered[len(tampered)-1] ^= 1
	_, err = DecryptSeed(tampered, "correct")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = DecryptSeed([]byte{1, 2, 3}, "correct")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = EncryptSeed(nil, "pw")
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestSaveLoadSeed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	seed, err := SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)

	require.NoError(t, SaveSeed(dir, seed, "pw"))
	assert.Error(t, SaveSeed(dir, seed, "pw"), "existing seed file must not be replaced")

	got, err := LoadSeed(dir, "pw")
	require.NoError(t, err)
	assert.Equal(t, seed, got)

	info, err := os.Stat(filepath.Join(dir, SeedFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = LoadSeed(t.TempDir(), "pw")
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

// --- Owner key tests ---

func newTestWallet(t *testing.T, network *NetworkConfig) *Wallet {
	t.Helper()
	seed, err := SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	w, err := NewWallet(seed, network)
	require.NoError(t, err)
	return w
}

func TestNewWallet(t *testing.T) {
	assert.Equal(t, "mainnet", newTestWallet(t, nil).Network().Name)
	assert.Equal(t, "testnet", newTestWallet(t, &TestNet).Network().Name)

	_, err := NewWallet(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestGetNetwork(t *testing.T) {
	for _, name := range []string{"mainnet", "testnet", "regtest"} {
		n, err := GetNetwork(name)
		require.NoError(t, err)
		assert.Equal(t, name, n.Name)
	}
	_, err := GetNetwork("devnet")
	assert.ErrorIs(t, err, ErrInvalidNetwork)
}

func TestDeriveOwnerKey(t *testing.T) {
	w := newTestWallet(t, nil)

	kp, err := w.DeriveOwnerKey(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/236'/0'/0/0", kp.Path)

	again, err := w.DeriveOwnerKey(0, 0)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey.Compressed(), again.PublicKey.Compressed())

	next, err := w.DeriveOwnerKey(0, 1)
	require.NoError(t, err)
	other, err := w.DeriveOwnerKey(1, 0)
	require.NoError(t, err)
	assert.NotEqual(t, kp.PublicKey.Compressed(), next.PublicKey.Compressed())
	assert.NotEqual(t, kp.PublicKey.Compressed(), other.PublicKey.Compressed())

	testKey, err := newTestWallet(t, &TestNet).DeriveOwnerKey(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/1'/0'/0/0", testKey.Path)
	assert.NotEqual(t, kp.PublicKey.Compressed(), testKey.PublicKey.Compressed())
}

func TestDeriveOwnerKey_OutOfRange(t *testing.T) {
	w := newTestWallet(t, nil)
	_, err := w.DeriveOwnerKey(Hardened, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = w.DeriveOwnerKey(0, Hardened)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestKeyPair_Witnesses(t *testing.T) {
	kp, err := newTestWallet(t, nil).DeriveOwnerKey(0, 3)
	require.NoError(t, err)
	pub, err := kp.VerificationData()
	require.NoError(t, err)
	require.Len(t, pub, sigverify.PublicKeyLength)

	scheme := sigverify.NewSecp256k1Recover(zerolog.Nop())
	target := address.ModuleID("cell")
	outputs := []address.Address{address.ModuleID("o1"), address.ModuleID("o2")}

	w, err := kp.SignWithdraw(target)
	require.NoError(t, err)
	assert.NoError(t, scheme.Verify(sigverify.WithdrawMessage(target), w, pub))

	w, err = kp.SignTransfer(target, outputs)
	require.NoError(t, err)
	assert.NoError(t, scheme.Verify(sigverify.TransferMessage(target, outputs), w, pub))
	assert.ErrorIs(t, scheme.Verify(sigverify.TransferMessage(target, outputs[:1]), w, pub), sigverify.ErrInvalidWitness)
}

func TestSlotSeed(t *testing.T) {
	pub := make([]byte, 64)
	assert.Equal(t, SlotSeed(pub, 1), SlotSeed(pub, 1))
	assert.NotEqual(t, SlotSeed(pub, 1), SlotSeed(pub, 2))
	pub[0] = 1
	assert.NotEqual(t, SlotSeed(make([]byte, 64), 1), SlotSeed(pub, 1))
}

func TestDeriveFeeKey(t *testing.T) {
	w := newTestWallet(t, nil)
	fee, err := w.DeriveFeeKey(0)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/236'/0'/1/0", fee.Path)

	owner, err := w.DeriveOwnerKey(0, 0)
	require.NoError(t, err)
	feeAddr, err := fee.Address()
	require.NoError(t, err)
	ownerAddr, err := owner.Address()
	require.NoError(t, err)
	assert.NotEqual(t, feeAddr, ownerAddr)

	pub, err := fee.VerificationData()
	require.NoError(t, err)
	assert.Equal(t, address.Address(sigverify.Keccak256(pub)), feeAddr)
}
