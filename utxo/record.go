// Package utxo defines the UTXO record, its binary layout and the base
// module's lifecycle operations: initialize, activate and deactivate.
package utxo

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bitfsorg/libutxo-go/address"
)

const (
	// HeaderSize covers the two module identities and the account seed.
	HeaderSize = 3 * address.Size

	// FlagsSize covers is_active and is_initialized.
	FlagsSize = 2

	// SeedSize is the length of an account seed.
	SeedSize = 32

	lengthPrefixSize = 4
)

// Record is the stored state of one UTXO.
type Record struct {
	BaseModule         address.Address // may flip IsActive
	VerificationModule address.Address // decides spend validity
	VerificationData   []byte
	ContentData        []byte
	IsActive           bool
	AccountSeed        [SeedSize]byte
	IsInitialized      bool
}

// Size returns 96 + vLen + cLen + 2, the record size excluding length prefixes.
func Size(vLen, cLen int) int {
	return HeaderSize + vLen + cLen + FlagsSize
}

// EncodedSize is the number of bytes Encode produces: Size plus one u32
// length prefix per variable field.
func EncodedSize(vLen, cLen int) int {
	return Size(vLen, cLen) + 2*lengthPrefixSize
}

// Size returns the record size per Size.
func (r *Record) Size() int { return Size(len(r.VerificationData), len(r.ContentData)) }

// Encode serializes the record:
//
//	base(32) || verification(32) || u32le len || vdata || u32le len || cdata ||
//	is_active(1) || seed(32) || is_initialized(1)
func (r *Record) Encode() ([]byte, error) {
	if len(r.VerificationData) > math.MaxUint32 || len(r.ContentData) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: variable field too long", ErrInvalidRecord)
	}
	buf := make([]byte, EncodedSize(len(r.VerificationData), len(r.ContentData)))
	offset := 0

	copy(buf[offset:], r.BaseModule[:])
	offset += address.Size
	copy(buf[offset:], r.VerificationModule[:])
	offset += address.Size

	offset = putBytes(buf, offset, r.VerificationData)
	offset = putBytes(buf, offset, r.ContentData)

	buf[offset] = boolByte(r.IsActive)
	offset++
	copy(buf[offset:], r.AccountSeed[:])
	offset += SeedSize
	buf[offset] = boolByte(r.IsInitialized)
	return buf, nil
}

// Decode parses bytes produced by Encode. Truncated input, trailing bytes and
// flag bytes other than 0 or 1 are rejected.
func Decode(data []byte) (*Record, error) {
	r := &Record{}
	offset := 0
	need := func(n int) error {
		if len(data)-offset < n {
			return fmt.Errorf("%w: truncated at offset %d", ErrInvalidRecord, offset)
		}
		return nil
	}

	if err := need(2 * address.Size); err != nil {
		return nil, err
	}
	copy(r.BaseModule[:], data[offset:])
	offset += address.Size
	copy(r.VerificationModule[:], data[offset:])
	offset += address.Size

	var err error
	for _, field := range []*[]byte{&r.VerificationData, &r.ContentData} {
		if err = need(lengthPrefixSize); err != nil {
			return nil, err
		}
		n32 := binary.LittleEndian.Uint32(data[offset:])
		offset += lengthPrefixSize
		if uint64(n32) > uint64(len(data)-offset) {
			return nil, fmt.Errorf("%w: length %d exceeds remaining %d bytes at offset %d",
				ErrInvalidRecord, n32, len(data)-offset, offset)
		}
		n := int(n32)
		*field = append([]byte{}, data[offset:offset+n]...)
		offset += n
	}

	if err := need(1 + SeedSize + 1); err != nil {
		return nil, err
	}
	if r.IsActive, err = byteBool(data[offset]); err != nil {
		return nil, err
	}
	offset++
	copy(r.AccountSeed[:], data[offset:])
	offset += SeedSize
	if r.IsInitialized, err = byteBool(data[offset]); err != nil {
		return nil, err
	}
	offset++

	if offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidRecord, len(data)-offset)
	}
	return r, nil
}

func putBytes(buf []byte, offset int, b []byte) int {
	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(b)))
	offset += lengthPrefixSize
	copy(buf[offset:], b)
	return offset + len(b)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func byteBool(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: flag byte %#x", ErrInvalidRecord, b)
	}
}
