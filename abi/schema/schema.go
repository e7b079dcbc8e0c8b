// Solidity type model for ABI encoding / decoding
package schema

import (
	"fmt"
	"strings"
)

const (
	Uint byte = iota
	Int
	Address
	Bool
	FixedBytes
	Bytes
	String
	Array
	Tuple
	// Hash is not part of the Solidity grammar. It is the
	// shape of an indexed, dynamically typed event input:
	// the log carries the keccak of the value, not the value.
	Hash
)

// Recursive description of a Solidity data shape. Whether a
// type is static or dynamic and how many head bytes it
// occupies are derived structurally from the tree every time
// they are needed. Nothing is cached that could fall out of
// sync with the tree.
type Type struct {
	Kind byte

	Bits int // Uint, Int
	Size int // FixedBytes

	// Array. Length == 0 means dynamic length
	Length int
	Elem   *Type

	// Tuple. Names may be nil when the type was parsed
	// from a bare signature rather than json components.
	Fields []Type
	Names  []string
}

func U(bits int) Type {
	mustWidth(bits)
	return Type{Kind: Uint, Bits: bits}
}

func I(bits int) Type {
	mustWidth(bits)
	return Type{Kind: Int, Bits: bits}
}

func mustWidth(bits int) {
	if bits < 8 || bits > 256 || bits%8 != 0 {
		panic(fmt.Sprintf("schema: invalid int width: %d", bits))
	}
}

func Addr() Type { return Type{Kind: Address} }

func Boolean() Type { return Type{Kind: Bool} }

func BytesK(n int) Type {
	if n < 1 || n > 32 {
		panic(fmt.Sprintf("schema: invalid fixed bytes size: %d", n))
	}
	return Type{Kind: FixedBytes, Size: n}
}

func Dynamic() Type { return Type{Kind: Bytes} }

func Str() Type { return Type{Kind: String} }

func List(e Type) Type {
	return Type{Kind: Array, Elem: &e}
}

func ListK(k int, e Type) Type {
	if k < 1 {
		panic(fmt.Sprintf("schema: invalid array length: %d", k))
	}
	return Type{Kind: Array, Elem: &e, Length: k}
}

func TupleOf(fields ...Type) Type {
	return Type{Kind: Tuple, Fields: fields}
}

// tuple with field names from json components
func NamedTuple(names []string, fields []Type) Type {
	if len(names) != len(fields) {
		panic("schema: names and fields must have equal length")
	}
	return Type{Kind: Tuple, Fields: fields, Names: names}
}

func Hashed() Type { return Type{Kind: Hash} }

// Static reports whether the encoded form has a fixed width.
// A compound type is static iff every element is static.
func (t Type) Static() bool {
	switch t.Kind {
	case Bytes, String:
		return false
	case Array:
		return t.Length > 0 && t.Elem.Static()
	case Tuple:
		for i := range t.Fields {
			if !t.Fields[i].Static() {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Number of bytes the type occupies in its enclosing head
// region: the full inline encoding for a static type, one
// offset word otherwise.
func (t Type) HeadSize() int {
	if !t.Static() {
		return 32
	}
	switch t.Kind {
	case Array:
		return t.Length * t.Elem.HeadSize()
	case Tuple:
		var n int
		for i := range t.Fields {
			n += t.Fields[i].HeadSize()
		}
		return n
	default:
		return 32
	}
}

// Canonical Solidity rendering. Matches solc byte for byte,
// including explicit widths (uint256 not uint) and tuples as
// parenthesized component lists, so that it can be hashed
// into selectors and topics.
func (t Type) String() string {
	switch t.Kind {
	case Uint:
		return fmt.Sprintf("uint%d", t.Bits)
	case Int:
		return fmt.Sprintf("int%d", t.Bits)
	case Address:
		return "address"
	case Bool:
		return "bool"
	case FixedBytes:
		return fmt.Sprintf("bytes%d", t.Size)
	case Bytes:
		return "bytes"
	case String:
		return "string"
	case Array:
		if t.Length == 0 {
			return t.Elem.String() + "[]"
		}
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Length)
	case Tuple:
		var s strings.Builder
		s.WriteString("(")
		for i := range t.Fields {
			s.WriteString(t.Fields[i].String())
			if i+1 != len(t.Fields) {
				s.WriteString(",")
			}
		}
		s.WriteString(")")
		return s.String()
	case Hash:
		return "hash"
	default:
		return fmt.Sprintf("unknown-kind=%d", t.Kind)
	}
}

// field name of the i'th tuple component. empty unless the
// tuple came from json components
func (t Type) Name(i int) string {
	if t.Kind != Tuple || i < 0 || i >= len(t.Names) {
		return ""
	}
	return t.Names[i]
}
