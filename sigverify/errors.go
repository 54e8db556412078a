package sigverify

import (
	"errors"

	"github.com/bitfsorg/libutxo-go/utxo"
)

var (
	// ErrNilPrivateKey indicates a nil private key was provided.
	ErrNilPrivateKey = errors.New("sigverify: private key is nil")

	// ErrNilPublicKey indicates a nil public key was provided.
	ErrNilPublicKey = errors.New("sigverify: public key is nil")
)

// ErrInvalidWitness is the ledger-wide witness error; every parse, recovery
// and key mismatch failure in this package wraps it.
var ErrInvalidWitness = utxo.ErrInvalidWitness
