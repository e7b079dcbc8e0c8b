package abi

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/indexsupply/ethabi/abi/schema"
	"github.com/indexsupply/ethabi/eth"
	"github.com/indexsupply/ethabi/keccak"
)

var (
	ErrUnknownSelector = errors.New("abi: unknown selector")
	ErrUnknownTopic    = errors.New("abi: unknown topic")
)

// Malformed json ABI entry. Entry is the index into the
// json array.
type SchemaError struct {
	Entry int
	Msg   string
	Err   error
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("abi schema: entry %d: %s", e.Entry, e.Msg)
}

func (e SchemaError) Unwrap() error { return e.Err }

// One input or output in a json ABI entry. Tuple typed
// params describe their fields through Components rather
// than through the type string.
type Param struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Indexed    bool    `json:"indexed"`
	Components []Param `json:"components"`

	st *schema.Type
}

// Resolves the param's type string (and components, for
// tuples) into a schema type.
func (p Param) SchemaType() (schema.Type, error) {
	if p.st != nil {
		return *p.st, nil
	}
	return p.schemaType()
}

func (p Param) schemaType() (schema.Type, error) {
	if !strings.HasPrefix(p.Type, "tuple") {
		return schema.Parse(p.Type)
	}
	if len(p.Components) == 0 {
		return schema.Type{}, fmt.Errorf("tuple type %q missing components", p.Type)
	}
	var (
		names  = make([]string, len(p.Components))
		fields = make([]schema.Type, len(p.Components))
	)
	for i := range p.Components {
		f, err := p.Components[i].SchemaType()
		if err != nil {
			return schema.Type{}, fmt.Errorf("component %q: %w", p.Components[i].Name, err)
		}
		names[i], fields[i] = p.Components[i].Name, f
	}
	return arraySuffix(schema.NamedTuple(names, fields), strings.TrimPrefix(p.Type, "tuple"))
}

// applies [] and [k] suffixes from a json type string like
// tuple[2][] to an already built base type
func arraySuffix(t schema.Type, s string) (schema.Type, error) {
	for len(s) > 0 {
		i := strings.IndexByte(s, ']')
		if s[0] != '[' || i < 0 {
			return schema.Type{}, fmt.Errorf("malformed array suffix: %q", s)
		}
		num := s[1:i]
		s = s[i+1:]
		if num == "" {
			t = schema.List(t)
			continue
		}
		k, err := strconv.Atoi(num)
		if err != nil || k < 1 {
			return schema.Type{}, fmt.Errorf("array length must be a positive integer. got: %q", num)
		}
		t = schema.ListK(k, t)
	}
	return t, nil
}

func (p *Param) resolve() error {
	t, err := p.schemaType()
	if err != nil {
		return err
	}
	p.st = &t
	return nil
}

func resolveAll(ps []Param) error {
	for i := range ps {
		if err := ps[i].resolve(); err != nil {
			return fmt.Errorf("param %q: %w", ps[i].Name, err)
		}
	}
	return nil
}

func signature(name string, inputs []Param) string {
	var s strings.Builder
	s.WriteString(name)
	s.WriteString("(")
	for i := range inputs {
		t, err := inputs[i].SchemaType()
		if err != nil {
			s.WriteString(inputs[i].Type) // unresolvable, best effort
		} else {
			s.WriteString(t.String())
		}
		if i+1 != len(inputs) {
			s.WriteString(",")
		}
	}
	s.WriteString(")")
	return s.String()
}

// builds the head-tail region type for a param list,
// keeping field names for decoded values
func regionType(ps []Param) (schema.Type, error) {
	var (
		names  = make([]string, len(ps))
		fields = make([]schema.Type, len(ps))
	)
	for i := range ps {
		t, err := ps[i].SchemaType()
		if err != nil {
			return schema.Type{}, fmt.Errorf("param %q: %w", ps[i].Name, err)
		}
		names[i], fields[i] = ps[i].Name, t
	}
	return schema.NamedTuple(names, fields), nil
}

type Function struct {
	Name            string
	Inputs          []Param
	Outputs         []Param
	StateMutability string
}

// Canonical signature. eg createPool(address,address,uint24)
// Param names never contribute, only canonical type names.
func (f *Function) Signature() string {
	return signature(f.Name, f.Inputs)
}

// first 4 bytes of the keccak of the canonical signature
func (f *Function) Selector() [4]byte {
	return keccak.Sum4([]byte(f.Signature()))
}

type Event struct {
	Name      string
	Inputs    []Param
	Anonymous bool
}

func (e *Event) Signature() string {
	return signature(e.Name, e.Inputs)
}

// the full keccak of the canonical signature. topics[0] of
// a log record, unless the event is anonymous
func (e *Event) Topic0() [32]byte {
	return keccak.Sum32([]byte(e.Signature()))
}

type Constructor struct {
	Inputs          []Param
	StateMutability string
}

// Custom error definition. Selectable like a function.
type Error struct {
	Name   string
	Inputs []Param
}

func (e *Error) Signature() string {
	return signature(e.Name, e.Inputs)
}

func (e *Error) Selector() [4]byte {
	return keccak.Sum4([]byte(e.Signature()))
}

// Parsed json ABI document. Immutable once parsed and safe
// for concurrent readers; all lookups go through indexes
// built at parse time.
type Abi struct {
	Constructor *Constructor
	Functions   []Function
	Events      []Event
	Errors      []Error
	HasReceive  bool
	HasFallback bool

	bySelector map[[4]byte]*Function
	byTopic    map[[32]byte]*Event
}

type entry struct {
	Type            string  `json:"type"`
	Name            string  `json:"name"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs"`
	StateMutability string  `json:"stateMutability"`
	Anonymous       bool    `json:"anonymous"`
}

// Parse reads a json ABI document: an array of entries
// tagged by their "type" field. Entries with an unknown tag
// are skipped; see [ParseStrict]. Selector and topic
// collisions are resolved by document order, first entry
// wins.
func Parse(js []byte) (*Abi, error) {
	return parse(js, false)
}

// Like [Parse] but rejects unknown entry types.
func ParseStrict(js []byte) (*Abi, error) {
	return parse(js, true)
}

func ParseReader(r io.Reader) (*Abi, error) {
	js, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("abi: reading json: %w", err)
	}
	return Parse(js)
}

func parse(js []byte, strict bool) (*Abi, error) {
	var entries []entry
	if err := json.Unmarshal(js, &entries); err != nil {
		return nil, fmt.Errorf("abi: parsing json: %w", err)
	}
	a := &Abi{
		bySelector: make(map[[4]byte]*Function),
		byTopic:    make(map[[32]byte]*Event),
	}
	for i, e := range entries {
		switch e.Type {
		case "function":
			if e.Name == "" {
				return nil, SchemaError{Entry: i, Msg: "function entry missing name"}
			}
			if err := resolveAll(e.Inputs); err != nil {
				return nil, SchemaError{Entry: i, Msg: err.Error(), Err: err}
			}
			if err := resolveAll(e.Outputs); err != nil {
				return nil, SchemaError{Entry: i, Msg: err.Error(), Err: err}
			}
			a.Functions = append(a.Functions, Function{
				Name:            e.Name,
				Inputs:          e.Inputs,
				Outputs:         e.Outputs,
				StateMutability: e.StateMutability,
			})
		case "event":
			if e.Name == "" {
				return nil, SchemaError{Entry: i, Msg: "event entry missing name"}
			}
			if err := resolveAll(e.Inputs); err != nil {
				return nil, SchemaError{Entry: i, Msg: err.Error(), Err: err}
			}
			a.Events = append(a.Events, Event{
				Name:      e.Name,
				Inputs:    e.Inputs,
				Anonymous: e.Anonymous,
			})
		case "error":
			if e.Name == "" {
				return nil, SchemaError{Entry: i, Msg: "error entry missing name"}
			}
			if err := resolveAll(e.Inputs); err != nil {
				return nil, SchemaError{Entry: i, Msg: err.Error(), Err: err}
			}
			a.Errors = append(a.Errors, Error{Name: e.Name, Inputs: e.Inputs})
		case "constructor":
			if err := resolveAll(e.Inputs); err != nil {
				return nil, SchemaError{Entry: i, Msg: err.Error(), Err: err}
			}
			a.Constructor = &Constructor{
				Inputs:          e.Inputs,
				StateMutability: e.StateMutability,
			}
		case "receive":
			a.HasReceive = true
		case "fallback":
			a.HasFallback = true
		default:
			if strict {
				return nil, SchemaError{Entry: i, Msg: fmt.Sprintf("unknown entry type: %q", e.Type)}
			}
		}
	}
	for i := range a.Functions {
		sel := a.Functions[i].Selector()
		if _, ok := a.bySelector[sel]; !ok {
			a.bySelector[sel] = &a.Functions[i]
		}
	}
	for i := range a.Events {
		if a.Events[i].Anonymous {
			continue
		}
		topic := a.Events[i].Topic0()
		if _, ok := a.byTopic[topic]; !ok {
			a.byTopic[topic] = &a.Events[i]
		}
	}
	return a, nil
}

func (a *Abi) FunctionBySelector(sel [4]byte) (*Function, bool) {
	f, ok := a.bySelector[sel]
	return f, ok
}

func (a *Abi) EventByTopic(topic [32]byte) (*Event, bool) {
	e, ok := a.byTopic[topic]
	return e, ok
}

// first function with the given name
func (a *Abi) Function(name string) (*Function, bool) {
	for i := range a.Functions {
		if a.Functions[i].Name == name {
			return &a.Functions[i], true
		}
	}
	return nil, false
}

// first event with the given name. needed to decode logs of
// anonymous events, which no topic can resolve
func (a *Abi) Event(name string) (*Event, bool) {
	for i := range a.Events {
		if a.Events[i].Name == name {
			return &a.Events[i], true
		}
	}
	return nil, false
}

// A decoded value paired with its declared param name.
type DecodedParam struct {
	Name  string
	Value Value
}

// Resolves calldata to a function by its 4 byte selector
// and decodes the remainder against the function's inputs.
func (a *Abi) DecodeInput(calldata []byte) (*Function, []DecodedParam, error) {
	if len(calldata) < 4 {
		return nil, nil, DecodeError{0, fmt.Sprintf("calldata shorter than a 4 byte selector. got: %d", len(calldata))}
	}
	f, ok := a.bySelector[[4]byte(calldata[:4])]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %x", ErrUnknownSelector, calldata[:4])
	}
	ps, err := f.DecodeInput(calldata[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("abi: function %s: %w", f.Name, err)
	}
	return f, ps, nil
}

// [Abi.DecodeInput] over 0x hex calldata
func (a *Abi) DecodeInputHex(calldata string) (*Function, []DecodedParam, error) {
	b, err := eth.DecodeHex(calldata)
	if err != nil {
		return nil, nil, fmt.Errorf("abi: calldata: %w", err)
	}
	return a.DecodeInput(b)
}

func decodeParams(ps []Param, data []byte) ([]DecodedParam, error) {
	t, err := regionType(ps)
	if err != nil {
		return nil, err
	}
	v, err := Decode(data, t)
	if err != nil {
		return nil, err
	}
	res := make([]DecodedParam, len(ps))
	for i := range ps {
		res[i] = DecodedParam{Name: ps[i].Name, Value: v.At(i)}
	}
	return res, nil
}

func (f *Function) DecodeInput(data []byte) ([]DecodedParam, error) {
	return decodeParams(f.Inputs, data)
}

func (f *Function) DecodeOutput(data []byte) ([]DecodedParam, error) {
	return decodeParams(f.Outputs, data)
}

// selector || head-tail encoding of args against the
// function's input types
func (f *Function) EncodeInput(args ...Value) ([]byte, error) {
	t, err := regionType(f.Inputs)
	if err != nil {
		return nil, err
	}
	if len(args) != len(f.Inputs) {
		return nil, EncodeError{t, fmt.Sprintf("need %d args. got: %d", len(f.Inputs), len(args))}
	}
	b, err := EncodeFor(t, Tuple(args...))
	if err != nil {
		return nil, fmt.Errorf("abi: function %s: %w", f.Name, err)
	}
	sel := f.Selector()
	return append(sel[:], b...), nil
}

func (f *Function) EncodeInputHex(args ...Value) (string, error) {
	b, err := f.EncodeInput(args...)
	if err != nil {
		return "", err
	}
	return eth.EncodeHex(b), nil
}

// Resolves a log to an event by topics[0] and decodes its
// params. Logs of anonymous events cannot be resolved this
// way; use [Event.DecodeLog] with an event hint.
func (a *Abi) DecodeLog(topics [][32]byte, data []byte) (*Event, []DecodedParam, error) {
	if len(topics) == 0 {
		return nil, nil, fmt.Errorf("%w: log has no topics", ErrUnknownTopic)
	}
	e, ok := a.byTopic[topics[0]]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %x", ErrUnknownTopic, topics[0])
	}
	ps, err := e.DecodeLog(topics, data)
	if err != nil {
		return nil, nil, fmt.Errorf("abi: event %s: %w", e.Name, err)
	}
	return e, ps, nil
}

// types whose indexed encoding is the keccak of the value
// rather than the value itself
func hashedKind(t schema.Type) bool {
	switch t.Kind {
	case schema.Array, schema.Tuple, schema.Bytes, schema.String:
		return true
	default:
		return false
	}
}

// Decodes a log record against the event's inputs, in
// declaration order. Indexed inputs read from their topic
// slot: static kinds hold the value, everything else holds
// only the keccak of the value and decodes to a [Hashed]
// value. Non-indexed inputs read from the head-tail encoded
// data payload.
func (e *Event) DecodeLog(topics [][32]byte, data []byte) ([]DecodedParam, error) {
	if !e.Anonymous {
		if len(topics) == 0 {
			return nil, fmt.Errorf("log has no topics")
		}
		topics = topics[1:] // topics[0] is the signature hash
	}
	var nonIndexed []Param
	for i := range e.Inputs {
		if !e.Inputs[i].Indexed {
			nonIndexed = append(nonIndexed, e.Inputs[i])
		}
	}
	dps, err := decodeParams(nonIndexed, data)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	var (
		res    = make([]DecodedParam, len(e.Inputs))
		it, id int
	)
	for i := range e.Inputs {
		if !e.Inputs[i].Indexed {
			res[i] = dps[id]
			id++
			continue
		}
		if it >= len(topics) {
			return nil, fmt.Errorf("%d indexed inputs but %d topics", it+1, len(topics))
		}
		t, err := e.Inputs[i].SchemaType()
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", e.Inputs[i].Name, err)
		}
		var v Value
		switch {
		case hashedKind(t):
			v = Hashed(topics[it])
		default:
			v, err = Decode(topics[it][:], t)
			if err != nil {
				return nil, fmt.Errorf("topic %d: %w", it, err)
			}
		}
		res[i] = DecodedParam{Name: e.Inputs[i].Name, Value: v}
		it++
	}
	return res, nil
}
