// Package leb128 implements the length-bounded LEB128 variable-length integer codec used for
// WebAssembly immediates, plus the fixed-width little-endian helpers module glue code needs. See
// spec.md §4.2.
package leb128

import (
	"fmt"
	"io"
)

// maxVarintLen32/64 bound how many groups a checked reader will consume before failing, mirroring
// the "checked" readers of spec.md §4.2: ⌈32/7⌉ = 5, ⌈64/7⌉ = 10, and the blocktype's 33-bit form
// consumes at most ⌈33/7⌉ = 5 groups.
const (
	maxVarintLen32 = 5
	maxVarintLen64 = 10
	maxVarintLen33 = 5
)

// EncodeInt32 encodes v as signed LEB128.
func EncodeInt32(v int32) []byte { return encodeSigned(int64(v)) }

// EncodeInt64 encodes v as signed LEB128.
func EncodeInt64(v int64) []byte { return encodeSigned(v) }

func encodeSigned(v int64) []byte {
	out := make([]byte, 0, 10)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}

// EncodeUint32 encodes v as unsigned LEB128.
func EncodeUint32(v uint32) []byte { return encodeUnsigned(uint64(v)) }

// EncodeUint64 encodes v as unsigned LEB128.
func EncodeUint64(v uint64) []byte { return encodeUnsigned(v) }

func encodeUnsigned(v uint64) []byte {
	out := make([]byte, 0, 10)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}

// LoadUint32 is a checked reader: it fails if more than ⌈32/7⌉ groups are consumed or the final
// group's high bits overflow 32 bits.
func LoadUint32(b []byte) (v uint32, n uint64, err error) {
	u, n, err := loadUnsigned(b, 32, maxVarintLen32)
	return uint32(u), n, err
}

// LoadUint64 is a checked reader for the 64-bit unsigned form.
func LoadUint64(b []byte) (v uint64, n uint64, err error) {
	return loadUnsigned(b, 64, maxVarintLen64)
}

func loadUnsigned(b []byte, bits uint, maxLen int) (result uint64, n uint64, err error) {
	var shift uint
	for i := 0; i < maxLen; i++ {
		if int(n) >= len(b) {
			return 0, n, io.ErrUnexpectedEOF
		}
		c := b[n]
		n++
		cur := uint64(c & 0x7f)
		if c&0x80 == 0 {
			// Terminal group: bits at or beyond `bits` must be zero (redundant zero-padding is the
			// only thing spec.md §4.2 allows past the N-bit limit).
			if shift >= bits {
				if cur != 0 {
					return 0, n, fmt.Errorf("leb128: integer too large for %d bits", bits)
				}
			} else if remaining := bits - shift; remaining < 7 && cur>>remaining != 0 {
				return 0, n, fmt.Errorf("leb128: integer too large for %d bits", bits)
			}
			result |= cur << shift
			return result, n, nil
		}
		result |= cur << shift
		shift += 7
	}
	return 0, n, fmt.Errorf("leb128: integer representation too long (E2BIG)")
}

// LoadInt32 is a checked reader for the 32-bit signed form.
func LoadInt32(b []byte) (v int32, n uint64, err error) {
	r, n, err := loadSigned(b, 32, maxVarintLen32)
	return int32(r), n, err
}

// LoadInt64 is a checked reader for the 64-bit signed form.
func LoadInt64(b []byte) (v int64, n uint64, err error) {
	return loadSigned(b, 64, maxVarintLen64)
}

func loadSigned(b []byte, bits uint, maxLen int) (result int64, n uint64, err error) {
	var shift uint
	var c byte
	for i := 0; i < maxLen; i++ {
		if int(n) >= len(b) {
			return 0, n, io.ErrUnexpectedEOF
		}
		c = b[n]
		n++
		result |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			break
		}
		if i == maxLen-1 {
			return 0, n, fmt.Errorf("leb128: integer representation too long (E2BIG)")
		}
	}
	if shift < 64 && c&0x40 != 0 {
		result |= -1 << shift
	}
	if bits < 64 {
		// Ensure the sign-extended value is representable in `bits`.
		shifted := result >> (bits - 1)
		if shifted != 0 && shifted != -1 {
			return 0, n, fmt.Errorf("leb128: integer too large for %d bits", bits)
		}
	}
	return result, n, nil
}

// LoadInt33 is a checked reader for Wasm's s33 blocktype encoding operating directly on a byte
// slice, for decoders that already hold the whole function body in memory and track their own
// cursor (unlike DecodeInt33AsInt64, which reads from an io.Reader one byte at a time).
func LoadInt33(b []byte) (v int64, n uint64, err error) {
	return loadSigned(b, 33, maxVarintLen33)
}

// DecodeInt33AsInt64 decodes Wasm's s33 blocktype encoding from an io.Reader, returning the value
// sign-extended into an int64: non-negative values index the type section, while the range
// {-1, ..., -64} denotes an inline result-type or the empty blocktype. See spec.md §4.2 and the
// Blocktype glossary entry.
func DecodeInt33AsInt64(r io.Reader) (v int64, n uint64, err error) {
	var shift uint
	var c byte
	buf := make([]byte, 1)
	for i := 0; i < maxVarintLen33; i++ {
		if _, err = io.ReadFull(r, buf); err != nil {
			return 0, n, err
		}
		c = buf[0]
		n++
		v |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			break
		}
		if i == maxVarintLen33-1 {
			return 0, n, fmt.Errorf("leb128: s33 representation too long (E2BIG)")
		}
	}
	if shift < 64 && c&0x40 != 0 {
		v |= -1 << shift
	}
	return v, n, nil
}

// UncheckedUint32 decodes an unsigned LEB128 u32 starting at b[pc], assuming b was already
// validated (spec.md §4.2's "unchecked fast readers"). It never returns an error; out-of-range
// input on unvalidated bytes is undefined behavior by contract.
func UncheckedUint32(b []byte, pc uint32) (v uint32, width uint32) {
	var shift uint
	for {
		c := b[pc+width]
		v |= uint32(c&0x7f) << shift
		width++
		if c&0x80 == 0 {
			return v, width
		}
		shift += 7
	}
}

// UncheckedUint64 decodes an unsigned LEB128 u64 starting at b[pc] without validation.
func UncheckedUint64(b []byte, pc uint32) (v uint64, width uint32) {
	var shift uint
	for {
		c := b[pc+width]
		v |= uint64(c&0x7f) << shift
		width++
		if c&0x80 == 0 {
			return v, width
		}
		shift += 7
	}
}

// UncheckedInt32 decodes a signed LEB128 i32 starting at b[pc] without validation.
func UncheckedInt32(b []byte, pc uint32) (v int32, width uint32) {
	r, w := uncheckedSigned(b, pc)
	return int32(r), w
}

// UncheckedInt64 decodes a signed LEB128 i64 starting at b[pc] without validation.
func UncheckedInt64(b []byte, pc uint32) (v int64, width uint32) {
	return uncheckedSigned(b, pc)
}

func uncheckedSigned(b []byte, pc uint32) (v int64, width uint32) {
	var shift uint
	var c byte
	for {
		c = b[pc+width]
		v |= int64(c&0x7f) << shift
		shift += 7
		width++
		if c&0x80 == 0 {
			break
		}
	}
	if shift < 64 && c&0x40 != 0 {
		v |= -1 << shift
	}
	return v, width
}
