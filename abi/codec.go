// ABI encoding/decoding
//
// Implementation based on the [ABI Spec].
//
// [ABI Spec]: https://docs.soliditylang.org/en/latest/abi-spec.html
package abi

import (
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/indexsupply/ethabi/abi/schema"
	"github.com/indexsupply/ethabi/bint"
)

// The value being encoded doesn't fit the target type:
// wrong shape, out of range integer, or mismatched length.
type EncodeError struct {
	Type schema.Type
	Msg  string
}

func (e EncodeError) Error() string {
	return fmt.Sprintf("abi encode: %s: %s", e.Type, e.Msg)
}

// Byte offset into the region being decoded plus what went
// wrong there. Offsets are relative to the innermost
// head-tail region; wrapping errors add element context.
type DecodeError struct {
	Off int
	Msg string
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("abi decode: byte %d: %s", e.Off, e.Msg)
}

// padding must never write into d's backing array since
// values may alias decode input or caller buffers
func rpad(l int, d []byte) []byte {
	n := len(d) % l
	if n == 0 {
		return d
	}
	return append(d[:len(d):len(d)], make([]byte, l-n)...)
}

// ABI encoding. Not packed. Uses v's own type; see
// [EncodeFor] to encode against a declared schema type.
func Encode(v Value) ([]byte, error) {
	return EncodeFor(v.Type(), v)
}

// Head-tail encoding of v as t. Static values encode inline
// into their head slot (integers left padded, sign extended
// when negative; bytes-like right padded). Dynamic values
// put an offset word in the head and their content in the
// tail of the enclosing region.
func EncodeFor(t schema.Type, v Value) ([]byte, error) {
	switch t.Kind {
	case schema.Uint, schema.Int:
		return encodeInt(t, v)
	case schema.Address, schema.Bool, schema.FixedBytes:
		if v.t.Kind != t.Kind {
			return nil, EncodeError{t, fmt.Sprintf("cannot encode %s value", v.t)}
		}
		if t.Kind == schema.FixedBytes && v.t.Size != t.Size {
			return nil, EncodeError{t, fmt.Sprintf("cannot encode %s value", v.t)}
		}
		if len(v.d) != 32 {
			return nil, EncodeError{t, fmt.Sprintf("value word is %d bytes", len(v.d))}
		}
		return v.d, nil
	case schema.Bytes, schema.String:
		if v.t.Kind != t.Kind {
			return nil, EncodeError{t, fmt.Sprintf("cannot encode %s value", v.t)}
		}
		var c [32]byte
		bint.Encode(c[:], uint64(len(v.d)))
		return append(c[:], rpad(32, v.d)...), nil
	case schema.Array:
		if v.t.Kind != schema.Array {
			return nil, EncodeError{t, fmt.Sprintf("cannot encode %s value", v.t)}
		}
		if t.Length > 0 && len(v.l) != t.Length {
			return nil, EncodeError{t, fmt.Sprintf("need %d elements. got: %d", t.Length, len(v.l))}
		}
		elems := make([]schema.Type, len(v.l))
		for i := range elems {
			elems[i] = *t.Elem
		}
		body, err := encodeRegion(elems, v.l)
		if err != nil {
			return nil, err
		}
		if t.Length > 0 {
			return body, nil
		}
		var c [32]byte
		bint.Encode(c[:], uint64(len(v.l)))
		return append(c[:], body...), nil
	case schema.Tuple:
		if v.t.Kind != schema.Tuple {
			return nil, EncodeError{t, fmt.Sprintf("cannot encode %s value", v.t)}
		}
		if len(v.l) != len(t.Fields) {
			return nil, EncodeError{t, fmt.Sprintf("need %d fields. got: %d", len(t.Fields), len(v.l))}
		}
		return encodeRegion(t.Fields, v.l)
	default:
		return nil, EncodeError{t, "type cannot be encoded"}
	}
}

// integers interchange between signed and unsigned values
// as long as the number fits the target width
func encodeInt(t schema.Type, v Value) ([]byte, error) {
	if v.t.Kind != schema.Uint && v.t.Kind != schema.Int {
		return nil, EncodeError{t, fmt.Sprintf("cannot encode %s value", v.t)}
	}
	switch t.Kind {
	case schema.Uint:
		if v.t.Kind == schema.Int && len(v.d) == 32 && v.d[0]&0x80 != 0 {
			return nil, EncodeError{t, fmt.Sprintf("negative value %s", v.BigInt())}
		}
		u := v.Uint256()
		if u.BitLen() > t.Bits {
			return nil, EncodeError{t, fmt.Sprintf("value %s overflows %d bits", u.Dec(), t.Bits)}
		}
		b := u.Bytes32()
		return b[:], nil
	default:
		x := v.BigInt()
		var (
			max = new(big.Int).Lsh(big.NewInt(1), uint(t.Bits-1))
			min = new(big.Int).Neg(max)
		)
		if x.Cmp(min) < 0 || x.Cmp(max) >= 0 {
			return nil, EncodeError{t, fmt.Sprintf("value %s outside [-2^%d, 2^%d)", x, t.Bits-1, t.Bits-1)}
		}
		w := x
		if x.Sign() < 0 {
			w = new(big.Int).Add(x, two256)
		}
		var b [32]byte
		w.FillBytes(b[:])
		return b[:], nil
	}
}

// one head slot per item, static content inline, dynamic
// content in the tail with an offset word in the head
func encodeRegion(types []schema.Type, vals []Value) ([]byte, error) {
	var hlen int
	for i := range types {
		hlen += types[i].HeadSize()
	}
	var head, tail []byte
	for i := range types {
		b, err := EncodeFor(types[i], vals[i])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if types[i].Static() {
			head = append(head, b...)
			continue
		}
		var offset [32]byte
		bint.Encode(offset[:], uint64(hlen+len(tail)))
		head = append(head, offset[:]...)
		tail = append(tail, b...)
	}
	return append(head, tail...), nil
}

// Decodes ABI encoded bytes into a [Value] shaped by t.
// The exact inverse of [EncodeFor] with one deliberate
// leniency: unused bytes in a head word are not required to
// be zero. Real chain encoders do not always pad strictly,
// so a bool word with junk above its low byte or a uint8
// word with nonzero high bytes decodes to the narrow value
// rather than erroring. Offsets and lengths are fully bounds
// checked and the returned value may alias input.
func Decode(input []byte, t schema.Type) (Value, error) {
	switch t.Kind {
	case schema.Uint, schema.Int, schema.Address, schema.Bool,
		schema.FixedBytes, schema.Hash:
		if len(input) < 32 {
			return Value{}, DecodeError{0, fmt.Sprintf("need 32 bytes. got: %d", len(input))}
		}
		return Value{t: t, d: input[:32]}, nil
	case schema.Bytes, schema.String:
		if len(input) < 32 {
			return Value{}, DecodeError{0, fmt.Sprintf("need 32 byte length. got: %d", len(input))}
		}
		n, err := bint.DecodeChecked(input[:32])
		if err != nil {
			return Value{}, DecodeError{0, err.Error()}
		}
		if n > len(input)-32 {
			return Value{}, DecodeError{0, fmt.Sprintf("length %d beyond input of %d bytes", n, len(input))}
		}
		d := input[32 : 32+n]
		if t.Kind == schema.String && !utf8.Valid(d) {
			return Value{}, DecodeError{32, "string is not valid utf-8"}
		}
		return Value{t: t, d: d}, nil
	case schema.Array:
		var (
			length = t.Length
			region = input
		)
		if length == 0 { // dynamic sized array
			if len(input) < 32 {
				return Value{}, DecodeError{0, fmt.Sprintf("need 32 byte count. got: %d", len(input))}
			}
			n, err := bint.DecodeChecked(input[:32])
			if err != nil {
				return Value{}, DecodeError{0, err.Error()}
			}
			// every element needs at least one head word, so the
			// count bounds the region before anything is allocated
			if n > (len(input)-32)/32 {
				return Value{}, DecodeError{0, fmt.Sprintf("count %d beyond region of %d bytes", n, len(input)-32)}
			}
			length, region = n, input[32:]
		}
		elems := make([]schema.Type, length)
		for i := range elems {
			elems[i] = *t.Elem
		}
		l, err := decodeRegion(region, elems)
		if err != nil {
			return Value{}, err
		}
		return Value{t: t, l: l}, nil
	case schema.Tuple:
		l, err := decodeRegion(input, t.Fields)
		if err != nil {
			return Value{}, err
		}
		return Value{t: t, l: l}, nil
	default:
		return Value{}, DecodeError{0, fmt.Sprintf("type %s cannot be decoded", t)}
	}
}

func decodeRegion(region []byte, types []schema.Type) ([]Value, error) {
	var (
		pos int
		res = make([]Value, len(types))
	)
	for i := range types {
		switch {
		case types[i].Static():
			n := types[i].HeadSize()
			if len(region) < pos+n {
				return nil, DecodeError{pos, fmt.Sprintf("need %d bytes. got: %d", pos+n, len(region))}
			}
			v, err := Decode(region[pos:], types[i])
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			res[i] = v
			pos += n
		default:
			if len(region) < pos+32 {
				return nil, DecodeError{pos, fmt.Sprintf("need %d bytes. got: %d", pos+32, len(region))}
			}
			offset, err := bint.DecodeChecked(region[pos : pos+32])
			if err != nil {
				return nil, DecodeError{pos, err.Error()}
			}
			if offset > len(region) {
				return nil, DecodeError{pos, fmt.Sprintf("offset %d beyond region of %d bytes", offset, len(region))}
			}
			v, err := Decode(region[offset:], types[i])
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			res[i] = v
			pos += 32
		}
	}
	return res, nil
}
