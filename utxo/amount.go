package utxo

import (
	"encoding/binary"
	"fmt"
)

// AmountSize is the length of an encoded amount.
const AmountSize = 8

// EncodeAmount returns amount as 8 big-endian bytes.
func EncodeAmount(amount uint64) []byte {
	buf := make([]byte, AmountSize)
	binary.BigEndian.PutUint64(buf, amount)
	return buf
}

// DecodeAmount parses content data holding a big-endian amount.
func DecodeAmount(content []byte) (uint64, error) {
	if len(content) != AmountSize {
		return 0, fmt.Errorf("%w: amount must be %d bytes, got %d", ErrInvalidData, AmountSize, len(content))
	}
	return binary.BigEndian.Uint64(content), nil
}

// Amount decodes the record's content data as an amount.
func (r *Record) Amount() (uint64, error) {
	return DecodeAmount(r.ContentData)
}
