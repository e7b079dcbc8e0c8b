package schema

import (
	"fmt"
	"strconv"
)

// Error describing where in the type string parsing stopped
// and what was expected there.
type ParseError struct {
	Pos int
	Msg string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parsing abi type: byte %d: %s", e.Pos, e.Msg)
}

// Parse reads a Solidity type signature. eg
//
//	uint256[3][]
//	(address,uint256)
//	tuple(bytes32,(string,bool))
//
// uint and int without a width read as uint256 and int256.
// Array suffixes apply left to right so uint8[2][] is a
// dynamic array of [2]uint8.
func Parse(s string) (Type, error) {
	p := &parser{s: s}
	t, err := p.parseType()
	if err != nil {
		return Type{}, err
	}
	p.space()
	if p.pos != len(p.s) {
		return Type{}, ParseError{p.pos, fmt.Sprintf("unexpected trailing input: %q", p.s[p.pos:])}
	}
	return t, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) space() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek(c byte) bool {
	return p.pos < len(p.s) && p.s[p.pos] == c
}

func (p *parser) parseType() (Type, error) {
	p.space()
	var (
		base Type
		err  error
	)
	switch {
	case p.peek('('):
		base, err = p.parseTuple()
	default:
		base, err = p.parseBase()
	}
	if err != nil {
		return Type{}, err
	}
	return p.parseSuffix(base)
}

func (p *parser) parseTuple() (Type, error) {
	p.pos++ // (
	p.space()
	if p.peek(')') {
		p.pos++
		return TupleOf(), nil
	}
	var fields []Type
	for {
		f, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		fields = append(fields, f)
		p.space()
		switch {
		case p.peek(','):
			p.pos++
		case p.peek(')'):
			p.pos++
			return TupleOf(fields...), nil
		default:
			return Type{}, ParseError{p.pos, "expected ',' or ')'"}
		}
	}
}

func (p *parser) parseBase() (Type, error) {
	var (
		start = p.pos
	)
	for p.pos < len(p.s) && p.s[p.pos] >= 'a' && p.s[p.pos] <= 'z' {
		p.pos++
	}
	var (
		word     = p.s[start:p.pos]
		numStart = p.pos
	)
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	num := p.s[numStart:p.pos]
	switch word {
	case "uint", "int":
		bits := 256
		if num != "" {
			n, err := strconv.Atoi(num)
			if err != nil || n < 8 || n > 256 || n%8 != 0 {
				return Type{}, ParseError{numStart, fmt.Sprintf("%s width must be a multiple of 8 in [8,256]. got: %s", word, num)}
			}
			bits = n
		}
		if word == "int" {
			return I(bits), nil
		}
		return U(bits), nil
	case "bytes":
		if num == "" {
			return Dynamic(), nil
		}
		n, err := strconv.Atoi(num)
		if err != nil || n < 1 || n > 32 {
			return Type{}, ParseError{numStart, fmt.Sprintf("fixed bytes size must be in [1,32]. got: %s", num)}
		}
		return BytesK(n), nil
	case "tuple":
		if num != "" {
			return Type{}, ParseError{start, fmt.Sprintf("unknown type: %q", word+num)}
		}
		p.space()
		if !p.peek('(') {
			return Type{}, ParseError{p.pos, "tuple requires a '(' component list"}
		}
		return p.parseTuple()
	case "address", "bool", "string":
		if num != "" {
			return Type{}, ParseError{start, fmt.Sprintf("unknown type: %q", word+num)}
		}
		switch word {
		case "address":
			return Addr(), nil
		case "bool":
			return Boolean(), nil
		default:
			return Str(), nil
		}
	case "":
		return Type{}, ParseError{start, "expected a type"}
	default:
		return Type{}, ParseError{start, fmt.Sprintf("unknown type: %q", word+num)}
	}
}

func (p *parser) parseSuffix(base Type) (Type, error) {
	for p.peek('[') {
		p.pos++ // [
		numStart := p.pos
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
		}
		num := p.s[numStart:p.pos]
		if !p.peek(']') {
			return Type{}, ParseError{p.pos, "expected ']'"}
		}
		p.pos++ // ]
		if num == "" {
			base = List(base)
			continue
		}
		k, err := strconv.Atoi(num)
		if err != nil || k < 1 {
			return Type{}, ParseError{numStart, fmt.Sprintf("array length must be a positive integer. got: %s", num)}
		}
		base = ListK(k, base)
	}
	return base, nil
}
