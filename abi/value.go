package abi

import (
	"bytes"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/indexsupply/ethabi/abi/schema"
	"github.com/indexsupply/ethabi/bint"
)

// A decoded (or to-be-encoded) value together with the
// schema type describing its shape. Scalars keep their
// 32 byte word (two's complement for signed ints), bytes
// and strings keep their raw payload, arrays and tuples
// keep their elements.
type Value struct {
	t schema.Type
	d []byte
	l []Value
}

func (v Value) Type() schema.Type {
	return v.t
}

// Returns length of array, tuple, bytes, or string
// depending on how the value was constructed.
func (v Value) Len() int {
	if len(v.l) > 0 {
		return len(v.l)
	}
	return len(v.d)
}

// i'th element of an array or tuple. zero Value when out
// of range.
func (v Value) At(i int) Value {
	if i < 0 || i >= len(v.l) {
		return Value{}
	}
	return v.l[i]
}

// field name of the i'th tuple component, when known
func (v Value) Name(i int) string {
	return v.t.Name(i)
}

func (v Value) Equal(other Value) bool {
	if !bytes.Equal(v.d, other.d) {
		return false
	}
	if len(v.l) != len(other.l) {
		return false
	}
	for i := range v.l {
		if !v.l[i].Equal(other.l[i]) {
			return false
		}
	}
	return true
}

var (
	two255 = new(big.Int).Lsh(big.NewInt(1), 255)
	two256 = new(big.Int).Lsh(big.NewInt(1), 256)
)

func Uint64(n uint64) Value {
	var b [32]byte
	bint.Encode(b[:], n)
	return Value{t: schema.U(64), d: b[:]}
}

func (v Value) Uint64() uint64 {
	return bint.Decode(v.d)
}

func Uint256(i uint256.Int) Value {
	b := i.Bytes32()
	return Value{t: schema.U(256), d: b[:]}
}

func (v Value) Uint256() uint256.Int {
	var i uint256.Int
	i.SetBytes(v.d)
	return i
}

// unsigned value. panics when x is negative or wider than
// 256 bits since there is no wire representation for it.
func UintBig(x *big.Int) Value {
	if x.Sign() < 0 || x.BitLen() > 256 {
		panic("abi: UintBig value outside [0, 2^256)")
	}
	var b [32]byte
	x.FillBytes(b[:])
	return Value{t: schema.U(256), d: b[:]}
}

func Int64(n int64) Value {
	var b [32]byte
	if n < 0 {
		for i := range b {
			b[i] = 0xff
		}
	}
	bint.Encode(b[:], uint64(n))
	return Value{t: schema.I(64), d: b[:]}
}

func (v Value) Int64() int64 {
	return v.BigInt().Int64()
}

// signed value, stored as a 256 bit two's complement word.
// panics when x is outside [-2^255, 2^255).
func IntBig(x *big.Int) Value {
	w := x
	switch {
	case x.Sign() >= 0:
		if x.BitLen() > 255 {
			panic("abi: IntBig value outside [-2^255, 2^255)")
		}
	default:
		if new(big.Int).Neg(x).Cmp(two255) > 0 {
			panic("abi: IntBig value outside [-2^255, 2^255)")
		}
		w = new(big.Int).Add(x, two256)
	}
	var b [32]byte
	w.FillBytes(b[:])
	return Value{t: schema.I(256), d: b[:]}
}

// Sign aware integer accessor. A value with a signed type
// and the high bit set reads as negative.
func (v Value) BigInt() *big.Int {
	x := new(big.Int).SetBytes(v.d)
	if v.t.Kind == schema.Int && len(v.d) == 32 && v.d[0]&0x80 != 0 {
		x.Sub(x, two256)
	}
	return x
}

func Address(a [20]byte) Value {
	var b [32]byte
	copy(b[12:], a[:])
	return Value{t: schema.Addr(), d: b[:]}
}

func (v Value) Address() [20]byte {
	if len(v.d) < 32 {
		return [20]byte{}
	}
	return [20]byte(v.d[12:])
}

func Bool(b bool) Value {
	var d [32]byte
	if b {
		d[31] = 1
	}
	return Value{t: schema.Boolean(), d: d[:]}
}

func (v Value) Bool() bool {
	if len(v.d) < 32 {
		return false
	}
	return v.d[31] == 1
}

// fixed size bytesN value. panics unless 1 <= len(d) <= 32
func BytesK(d []byte) Value {
	var b [32]byte
	copy(b[:], d) // schema.BytesK checks the range
	return Value{t: schema.BytesK(len(d)), d: b[:]}
}

func Bytes4(d [4]byte) Value {
	return BytesK(d[:])
}

func (v Value) Bytes4() [4]byte {
	if len(v.d) < 4 {
		return [4]byte{}
	}
	return [4]byte(v.d[:4])
}

func Bytes32(d [32]byte) Value {
	return BytesK(d[:])
}

func (v Value) Bytes32() [32]byte {
	if len(v.d) < 32 {
		return [32]byte{}
	}
	return [32]byte(v.d[:32])
}

func Bytes(d []byte) Value {
	return Value{t: schema.Dynamic(), d: d}
}

// raw payload. for a bytesN value the word is truncated to
// its declared size.
func (v Value) Bytes() []byte {
	if v.t.Kind == schema.FixedBytes && v.t.Size <= len(v.d) {
		return v.d[:v.t.Size]
	}
	return v.d
}

func String(s string) Value {
	return Value{t: schema.Str(), d: []byte(s)}
}

func (v Value) String() string {
	return string(v.d)
}

// keccak standing in for an indexed dynamic event input.
// the original value is not recoverable from the log.
func Hashed(h [32]byte) Value {
	return Value{t: schema.Hashed(), d: h[:]}
}

func (v Value) Hash32() [32]byte {
	if v.t.Kind != schema.Hash || len(v.d) < 32 {
		return [32]byte{}
	}
	return [32]byte(v.d[:32])
}

// dynamic length array. panics when items is empty since
// the element type cannot be inferred. see [ArrayOf].
func Array(items ...Value) Value {
	if len(items) == 0 {
		panic("abi: Array requires at least one item")
	}
	return Value{t: schema.List(items[0].t), l: items}
}

// dynamic length array with an explicit element type.
// required for empty arrays.
func ArrayOf(elem schema.Type, items ...Value) Value {
	return Value{t: schema.List(elem), l: items}
}

// fixed length array
func ArrayK(items ...Value) Value {
	if len(items) == 0 {
		panic("abi: ArrayK requires at least one item")
	}
	return Value{t: schema.ListK(len(items), items[0].t), l: items}
}

func Tuple(items ...Value) Value {
	fields := make([]schema.Type, len(items))
	for i := range items {
		fields[i] = items[i].t
	}
	return Value{t: schema.TupleOf(fields...), l: items}
}

func NamedTuple(names []string, items ...Value) Value {
	fields := make([]schema.Type, len(items))
	for i := range items {
		fields[i] = items[i].t
	}
	return Value{t: schema.NamedTuple(names, fields), l: items}
}
