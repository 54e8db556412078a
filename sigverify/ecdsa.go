package sigverify

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/rs/zerolog"
)

// compactHeaderBase is added to the recovery id to form the leading byte of
// an uncompressed-key compact signature.
const compactHeaderBase = 27

// maxRecoveryID is the largest secp256k1 recovery id.
const maxRecoveryID = 3

// Scheme decides whether witness authorizes a spend bound to hash by the
// holder of expectedKey.
type Scheme interface {
	Verify(hash [HashLength]byte, witness []byte, expectedKey []byte) error
}

// Recover returns the uncompressed public key (X||Y) that produced sig over hash.
func Recover(hash [HashLength]byte, sig [SignatureLength]byte, recoveryID byte) ([PublicKeyLength]byte, error) {
	var key [PublicKeyLength]byte
	if recoveryID > maxRecoveryID {
		return key, fmt.Errorf("%w: recovery id %d", ErrInvalidWitness, recoveryID)
	}

	compact := make([]byte, 1+SignatureLength)
	compact[0] = compactHeaderBase + recoveryID
	copy(compact[1:], sig[:])

	pub, _, err := ecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return key, fmt.Errorf("%w: recover: %w", ErrInvalidWitness, err)
	}
	copy(key[:], pub.SerializeUncompressed()[1:])
	return key, nil
}

// Verify recovers the signing key and requires it to equal expectedKey byte for byte.
func Verify(hash [HashLength]byte, sig [SignatureLength]byte, recoveryID byte, expectedKey []byte) error {
	key, err := Recover(hash, sig, recoveryID)
	if err != nil {
		return err
	}
	if !bytes.Equal(key[:], expectedKey) {
		return fmt.Errorf("%w: recovered key does not match", ErrInvalidWitness)
	}
	return nil
}

// Secp256k1Recover is the ECDSA public-key-recovery scheme.
type Secp256k1Recover struct {
	log zerolog.Logger
}

var _ Scheme = (*Secp256k1Recover)(nil)

// NewSecp256k1Recover returns the scheme; recovered and required keys are
// logged at debug level.
func NewSecp256k1Recover(log zerolog.Logger) *Secp256k1Recover {
	return &Secp256k1Recover{log: log}
}

// Verify parses witness and checks it against hash and expectedKey.
func (s *Secp256k1Recover) Verify(hash [HashLength]byte, witness []byte, expectedKey []byte) error {
	sig, recoveryID, err := ParseWitness(witness)
	if err != nil {
		return err
	}
	key, err := Recover(hash, sig, recoveryID)
	if err != nil {
		return err
	}

	s.log.Debug().
		Str("recovered", hex.EncodeToString(key[:])).
		Str("required", hex.EncodeToString(expectedKey)).
		Msg("recovered public key from witness")

	if !bytes.Equal(key[:], expectedKey) {
		return fmt.Errorf("%w: recovered key does not match", ErrInvalidWitness)
	}
	return nil
}
