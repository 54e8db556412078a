package sigverify

import (
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignWitness signs hash with priv and returns the 65-byte witness
// r||s||recovery_id accepted by Secp256k1Recover.
func SignWitness(priv *ec.PrivateKey, hash [HashLength]byte) ([]byte, error) {
	if priv == nil {
		return nil, ErrNilPrivateKey
	}
	var raw [32]byte
	priv.D.FillBytes(raw[:])
	key := secp256k1.PrivKeyFromBytes(raw[:])
	defer key.Zero()

	compact := ecdsa.SignCompact(key, hash[:], false)

	var sig [SignatureLength]byte
	copy(sig[:], compact[1:])
	return EncodeWitness(sig, compact[0]-compactHeaderBase), nil
}

// PublicKeyBytes returns the 64-byte X||Y encoding stored as UTXO
// verification data.
func PublicKeyBytes(pub *ec.PublicKey) ([]byte, error) {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil, ErrNilPublicKey
	}
	out := make([]byte, PublicKeyLength)
	pub.X.FillBytes(out[:32])
	pub.Y.FillBytes(out[32:])
	return out, nil
}
