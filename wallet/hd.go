package wallet

import (
	"encoding/binary"
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/sigverify"
	"github.com/bitfsorg/libutxo-go/utxo"
)

const (
	// PurposeBIP44 is the BIP44 purpose level.
	PurposeBIP44 = 44

	// OwnerChain is the chain under each account that owner keys live on.
	OwnerChain = 0

	// FeeChain holds the keys whose ledger accounts pay rent and deposits.
	FeeChain = 1

	// Hardened is the BIP32 hardened offset.
	Hardened = 0x80000000
)

// Wallet derives UTXO owner keys from a BIP39 seed.
type Wallet struct {
	masterKey *bip32.ExtendedKey
	network   *NetworkConfig
}

// KeyPair holds a derived owner key.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	Path       string         `json:"path"`
}

// NewWallet creates a Wallet from a BIP39 seed. A nil network selects MainNet.
func NewWallet(seed []byte, network *NetworkConfig) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if network == nil {
		network = &MainNet
	}

	masterKey, err := bip32.NewMaster(seed, network.params())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	return &Wallet{masterKey: masterKey, network: network}, nil
}

// Network returns the wallet's network configuration.
func (w *Wallet) Network() *NetworkConfig {
	return w.network
}

// DeriveOwnerKey derives the key at m/44'/coin'/account'/0/index. Its
// public key is the verification data of the UTXOs it owns.
func (w *Wallet) DeriveOwnerKey(account, index uint32) (*KeyPair, error) {
	return w.derive(account, OwnerChain, index)
}

// DeriveFeeKey derives the key at m/44'/coin'/0'/1/index.
func (w *Wallet) DeriveFeeKey(index uint32) (*KeyPair, error) {
	return w.derive(0, FeeChain, index)
}

func (w *Wallet) derive(account, chain, index uint32) (*KeyPair, error) {
	if account >= Hardened || index >= Hardened {
		return nil, fmt.Errorf("%w: account %d index %d", ErrIndexOutOfRange, account, index)
	}

	steps := []struct {
		name  string
		index uint32
	}{
		{"purpose", PurposeBIP44 + Hardened},
		{"coin type", w.network.CoinType + Hardened},
		{"account", account + Hardened},
		{"chain", chain},
		{"index", index},
	}
	key := w.masterKey
	for _, s := range steps {
		child, err := key.Child(s.index)
		if err != nil {
			return nil, fmt.Errorf("%w: %s derivation: %w", ErrDerivationFailed, s.name, err)
		}
		key = child
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract EC private key: %w", ErrDerivationFailed, err)
	}
	return &KeyPair{
		PrivateKey: priv,
		PublicKey:  priv.PubKey(),
		Path:       fmt.Sprintf("m/44'/%d'/%d'/%d/%d", w.network.CoinType, account, chain, index),
	}, nil
}

// VerificationData returns the 64-byte X||Y public key stored in UTXOs this
// key owns.
func (kp *KeyPair) VerificationData() ([]byte, error) {
	return sigverify.PublicKeyBytes(kp.PublicKey)
}

// Address returns the ledger account controlled by this key:
// keccak(X||Y) of its public key.
func (kp *KeyPair) Address() (address.Address, error) {
	pub, err := kp.VerificationData()
	if err != nil {
		return address.Zero, err
	}
	return address.Address(sigverify.Keccak256(pub)), nil
}

// SignWithdraw returns the witness releasing target to native value.
func (kp *KeyPair) SignWithdraw(target address.Address) ([]byte, error) {
	return sigverify.SignWitness(kp.PrivateKey, sigverify.WithdrawMessage(target))
}

// SignTransfer returns the witness spending input into exactly outputs, in order.
func (kp *KeyPair) SignTransfer(input address.Address, outputs []address.Address) ([]byte, error) {
	return sigverify.SignWitness(kp.PrivateKey, sigverify.TransferMessage(input, outputs))
}

// SlotSeed returns the account seed of the nonce-th UTXO owned by pub:
// keccak(pub || nonce_be32). Distinct nonces give distinct cells.
func SlotSeed(pub []byte, nonce uint32) [utxo.SeedSize]byte {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], nonce)
	return sigverify.Keccak256(pub, n[:])
}
