package instruction

import (
	"encoding/binary"
	"fmt"

	"github.com/bitfsorg/libutxo-go/address"
)

// encoder appends little-endian fields.
type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8) { e.buf = append(e.buf, v) }

func (e *encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }

func (e *encoder) u64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }

func (e *encoder) bytes(b []byte) {
	e.u32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *encoder) fixed(b []byte) { e.buf = append(e.buf, b...) }

// decoder reads fields and records the first failure.
type decoder struct {
	data []byte
	off  int
	err  error
}

func (d *decoder) fail(format string, args ...interface{}) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s", ErrInvalidInstruction, fmt.Sprintf(format, args...))
	}
}

func (d *decoder) take(n int, what string) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.data)-d.off < n {
		d.fail("truncated %s at offset %d", what, d.off)
		return nil
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8(what string) uint8 {
	b := d.take(1, what)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) u32(what string) uint32 {
	b := d.take(4, what)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) u64(what string) uint64 {
	b := d.take(8, what)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) bytes(what string) []byte {
	n := d.u32(what + " length")
	if d.err != nil {
		return nil
	}
	if uint64(n) > uint64(len(d.data)-d.off) {
		d.fail("%s length %d exceeds remaining %d bytes", what, n, len(d.data)-d.off)
		return nil
	}
	return append([]byte{}, d.take(int(n), what)...)
}

// byteVecs reads a u32 count followed by that many length-prefixed values.
func (d *decoder) byteVecs(what string) [][]byte {
	n := d.u32(what + " count")
	if d.err != nil {
		return nil
	}
	// Each element carries at least its 4-byte length prefix.
	if uint64(n)*4 > uint64(len(d.data)-d.off) {
		d.fail("%s count %d exceeds remaining data", what, n)
		return nil
	}
	out := make([][]byte, 0, n)
	for i := uint32(0); i < n && d.err == nil; i++ {
		out = append(out, d.bytes(what))
	}
	return out
}

func (d *decoder) address(what string) address.Address {
	var a address.Address
	copy(a[:], d.take(address.Size, what))
	return a
}

func (d *decoder) finish() error {
	if d.err == nil && d.off != len(d.data) {
		d.fail("%d trailing bytes", len(d.data)-d.off)
	}
	return d.err
}
