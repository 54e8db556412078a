package sigverify

import (
	"golang.org/x/crypto/sha3"

	"github.com/bitfsorg/libutxo-go/address"
)

// Keccak256 hashes the concatenation of parts with legacy Keccak-256.
func Keccak256(parts ...[]byte) [HashLength]byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out [HashLength]byte
	copy(out[:], h.Sum(nil))
	return out
}

// WithdrawMessage is the hash a withdraw witness signs: keccak(utxo).
func WithdrawMessage(utxo address.Address) [HashLength]byte {
	return Keccak256(utxo[:])
}

// TransferMessage is the hash the witness for input signs:
// keccak(input || outputs[0] || ... || outputs[n-1]). Binding every output
// in order stops a witness from being replayed against another output set.
func TransferMessage(input address.Address, outputs []address.Address) [HashLength]byte {
	parts := make([][]byte, 0, 1+len(outputs))
	parts = append(parts, input[:])
	for i := range outputs {
		parts = append(parts, outputs[i][:])
	}
	return Keccak256(parts...)
}
