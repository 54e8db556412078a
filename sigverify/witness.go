// Package sigverify authorizes UTXO spends: it parses witnesses, recovers
// secp256k1 public keys from them and builds the keccak binding hashes the
// witnesses sign.
package sigverify

import "fmt"

const (
	// SignatureLength is the r||s signature length.
	SignatureLength = 64

	// WitnessLength is a signature followed by a one-byte recovery id.
	WitnessLength = SignatureLength + 1

	// PublicKeyLength is an uncompressed X||Y key without the 0x04 prefix.
	PublicKeyLength = 64

	// HashLength is the length of a binding hash.
	HashLength = 32
)

// ParseWitness splits a 65-byte witness into its signature and recovery id.
func ParseWitness(witness []byte) ([SignatureLength]byte, byte, error) {
	var sig [SignatureLength]byte
	if len(witness) != WitnessLength {
		return sig, 0, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidWitness, WitnessLength, len(witness))
	}
	copy(sig[:], witness[:SignatureLength])
	return sig, witness[SignatureLength], nil
}

// EncodeWitness joins a signature and recovery id into the wire format.
func EncodeWitness(sig [SignatureLength]byte, recoveryID byte) []byte {
	w := make([]byte, WitnessLength)
	copy(w, sig[:])
	w[SignatureLength] = recoveryID
	return w
}
