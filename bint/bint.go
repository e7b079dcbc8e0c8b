// big endian, uint64 binary encoding/decoding
package bint

import (
	"fmt"
	"math"
)

// Encodes a uint64 into a big-endian byte slice
// To avoid an allocation, or to have a padded result,
// supply an initialized value for b -otherwise use nil.
// Panics when provided slice is too small for n.
func Encode(b []byte, n uint64) []byte {
	s := size(n)
	if b == nil {
		b = make([]byte, s)
	}
	if int(s) > len(b) {
		panic("bint: supplied slice is too small for input")
	}
	for i := len(b) - 1; n > 0; i-- {
		b[i] = byte(n & 0xff)
		n = n >> 8
	}
	return b
}

func size(n uint64) (s uint8) {
	if n == 0 {
		return 1
	}
	for n > 0 {
		n = n >> 8
		s++
	}
	return
}

// Decodes big-endian byte array into a uint64
// left-padded zero bytes are ignored.
// Disregards extra bytes if len(b) > 8
func Decode(b []byte) uint64 {
	var n uint64
	for i := 0; i < len(b); i++ {
		n = n << 8
		n += uint64(b[i])
	}
	return n
}

// Like [Decode] but returns an error when b holds a value
// that doesn't fit in a non-negative int. ABI offset and
// length words are 256 bits wide on the wire; a word wider
// than the host int must be rejected rather than truncated.
func DecodeChecked(b []byte) (int, error) {
	var i int
	for ; i < len(b) && b[i] == 0; i++ {
	}
	if len(b)-i > 8 {
		return 0, fmt.Errorf("bint: %d byte value overflows int", len(b)-i)
	}
	n := Decode(b[i:])
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("bint: %d overflows int", n)
	}
	return int(n), nil
}
