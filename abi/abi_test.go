package abi

import (
	"errors"
	"sync"
	"testing"

	"github.com/indexsupply/ethabi/abi/schema"
	"github.com/indexsupply/ethabi/tc"
	"kr.dev/diff"
)

func TestSignature(t *testing.T) {
	f := Function{
		Name: "funname",
		Inputs: []Param{
			{Type: "address"},
			{Name: "x", Type: "uint56[5]"},
		},
	}
	if got := f.Signature(); got != "funname(address,uint56[5])" {
		t.Errorf("want: funname(address,uint56[5]) got: %s", got)
	}
	if got := f.Selector(); got != [4]byte{0xab, 0xa0, 0xe6, 0x3a} {
		t.Errorf("want: aba0e63a got: %x", got)
	}
}

func TestEventTopic(t *testing.T) {
	e := Event{
		Name: "Approve",
		Inputs: []Param{
			{Name: "x", Type: "uint56", Indexed: true},
			{Name: "y", Type: "string", Indexed: true},
		},
	}
	if got := e.Signature(); got != "Approve(uint56,string)" {
		t.Errorf("want: Approve(uint56,string) got: %s", got)
	}
	want := [32]byte(hb(t, "a61d695a23b25aa2db668e3216af77ef9a2409384ddff9e6a94bfd50a32c6eeb"))
	if got := e.Topic0(); got != want {
		t.Errorf("want: %x got: %x", want, got)
	}
}

// signatures hash canonical type names, so tuples render as
// parenthesized component lists and names never contribute
func TestTupleSignature(t *testing.T) {
	f := Function{
		Name: "submit",
		Inputs: []Param{
			{Name: "order", Type: "tuple[]", Components: []Param{
				{Name: "maker", Type: "address"},
				{Name: "amount", Type: "uint256"},
			}},
		},
	}
	if got := f.Signature(); got != "submit((address,uint256)[])" {
		t.Errorf("want: submit((address,uint256)[]) got: %s", got)
	}
}

func TestParse(t *testing.T) {
	js := `[
		{"inputs":[{"internalType":"address","name":"a","type":"address"}],"stateMutability":"nonpayable","type":"constructor"},
		{"anonymous":false,"inputs":[{"indexed":false,"internalType":"address","name":"x","type":"address"},{"indexed":false,"internalType":"uint256","name":"y","type":"uint256"}],"name":"E","type":"event"},
		{"inputs":[{"internalType":"uint256","name":"x","type":"uint256"}],"name":"f","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"n","type":"uint256"}],"name":"Insufficient","type":"error"},
		{"stateMutability":"payable","type":"receive"}
	]`
	a, err := Parse([]byte(js))
	tc.NoErr(t, err)
	if a.Constructor == nil {
		t.Fatal("want: constructor")
	}
	diff.Test(t, t.Errorf, len(a.Functions), 1)
	diff.Test(t, t.Errorf, a.Functions[0].Name, "f")
	diff.Test(t, t.Errorf, a.Functions[0].StateMutability, "nonpayable")
	diff.Test(t, t.Errorf, len(a.Events), 1)
	diff.Test(t, t.Errorf, a.Events[0].Name, "E")
	diff.Test(t, t.Errorf, len(a.Errors), 1)
	diff.Test(t, t.Errorf, a.Errors[0].Name, "Insufficient")
	diff.Test(t, t.Errorf, a.HasReceive, true)
	diff.Test(t, t.Errorf, a.HasFallback, false)

	f, ok := a.Function("f")
	if !ok {
		t.Fatal("want: function f")
	}
	if _, ok := a.FunctionBySelector(f.Selector()); !ok {
		t.Error("want: selector lookup to resolve f")
	}
}

func TestParseStrict(t *testing.T) {
	js := `[{"type":"frobnicate","name":"x"}]`
	_, err := Parse([]byte(js))
	tc.NoErr(t, err)
	_, err = ParseStrict([]byte(js))
	tc.WantErr(t, err)
	var se SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError. got: %T", err)
	}
	if se.Entry != 0 {
		t.Errorf("want: entry 0 got: %d", se.Entry)
	}
}

func TestParseSchemaErrors(t *testing.T) {
	cases := []struct {
		desc string
		js   string
	}{
		{
			desc: "tuple missing components",
			js:   `[{"type":"function","name":"f","inputs":[{"name":"a","type":"tuple"}]}]`,
		},
		{
			desc: "bad type string",
			js:   `[{"type":"function","name":"f","inputs":[{"name":"a","type":"uint7"}]}]`,
		},
		{
			desc: "function missing name",
			js:   `[{"type":"function","inputs":[]}]`,
		},
		{
			desc: "not an array",
			js:   `{"type":"function"}`,
		},
	}
	for _, c := range cases {
		_, err := Parse([]byte(c.js))
		if err == nil {
			t.Errorf("%s: expected error", c.desc)
		}
	}
}

// two differently named functions hashing to the same 4
// bytes. first entry in document order wins.
func TestSelectorCollision(t *testing.T) {
	js := `[
		{"type":"function","name":"collate_propagate_storage","inputs":[{"name":"x","type":"bytes16"}]},
		{"type":"function","name":"burn","inputs":[{"name":"n","type":"uint256"}]}
	]`
	a, err := Parse([]byte(js))
	tc.NoErr(t, err)
	if a.Functions[0].Selector() != a.Functions[1].Selector() {
		t.Fatal("expected colliding selectors")
	}
	f, ok := a.FunctionBySelector(a.Functions[1].Selector())
	if !ok {
		t.Fatal("want: selector lookup to resolve")
	}
	if f.Name != "collate_propagate_storage" {
		t.Errorf("want: first declared function got: %s", f.Name)
	}
}

// calldata from
// https://etherscan.io/tx/0x535e880ab0d966fbc7a354c322046fe6f01581e94b0d9b76a12683feefb98481
func TestDecodeInput(t *testing.T) {
	js := `[{"type":"function","name":"createPool","inputs":[
		{"name":"tokenA","type":"address"},
		{"name":"tokenB","type":"address"},
		{"name":"fee","type":"uint24"}
	]}]`
	a, err := Parse([]byte(js))
	tc.NoErr(t, err)
	const calldata = "0xa1671295000000000000000000000000a0b211418d87c9f5918e6213fec3b13290aa5f26000000000000000000000000c02aaa39b223fe8d0a0e5c4f27ead9083c756cc20000000000000000000000000000000000000000000000000000000000000bb8"
	f, params, err := a.DecodeInputHex(calldata)
	tc.NoErr(t, err)
	diff.Test(t, t.Errorf, f.Name, "createPool")
	diff.Test(t, t.Errorf, len(params), 3)
	diff.Test(t, t.Errorf, params[0].Name, "tokenA")
	wantA := [20]byte(hb(t, "a0b211418d87c9f5918e6213fec3b13290aa5f26"))
	diff.Test(t, t.Errorf, params[0].Value.Address(), wantA)
	wantB := [20]byte(hb(t, "c02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"))
	diff.Test(t, t.Errorf, params[1].Value.Address(), wantB)
	diff.Test(t, t.Errorf, params[2].Value.Uint64(), uint64(3000))

	_, _, err = a.DecodeInput(hb(t, "deadbeef"))
	if !errors.Is(err, ErrUnknownSelector) {
		t.Errorf("want: ErrUnknownSelector got: %v", err)
	}
	_, _, err = a.DecodeInput(hb(t, "ffff"))
	tc.WantErr(t, err)
}

func TestEncodeInput(t *testing.T) {
	js := `[{"type":"function","name":"foo","inputs":[
		{"name":"a","type":"uint256"},
		{"name":"b","type":"string"}
	]}]`
	a, err := Parse([]byte(js))
	tc.NoErr(t, err)
	f, _ := a.Function("foo")
	got, err := f.EncodeInput(Uint64(1), String("hi"))
	tc.NoErr(t, err)
	sel := f.Selector()
	want := append(sel[:], hb(t, `
		0000000000000000000000000000000000000000000000000000000000000001
		0000000000000000000000000000000000000000000000000000000000000040
		0000000000000000000000000000000000000000000000000000000000000002
		6869000000000000000000000000000000000000000000000000000000000000`)...)
	diff.Test(t, t.Errorf, got, want)

	// and back again through the facade
	fn, params, err := a.DecodeInput(got)
	tc.NoErr(t, err)
	diff.Test(t, t.Errorf, fn.Name, "foo")
	diff.Test(t, t.Errorf, params[0].Value.Uint64(), uint64(1))
	diff.Test(t, t.Errorf, params[1].Value.String(), "hi")

	_, err = f.EncodeInput(Uint64(1))
	tc.WantErr(t, err)
}

func TestTupleComponents(t *testing.T) {
	js := `[{"type":"function","name":"set","inputs":[
		{"name":"p","type":"tuple","components":[
			{"name":"a","type":"uint256"},
			{"name":"b","type":"bool"}
		]}
	]}]`
	a, err := Parse([]byte(js))
	tc.NoErr(t, err)
	f, _ := a.Function("set")

	st, err := f.Inputs[0].SchemaType()
	tc.NoErr(t, err)
	diff.Test(t, t.Errorf, st.Kind, schema.Tuple)
	diff.Test(t, t.Errorf, st.Fields[0].Kind, schema.Uint)
	diff.Test(t, t.Errorf, st.Fields[0].Bits, 256)
	diff.Test(t, t.Errorf, st.Fields[1].Kind, schema.Bool)
	diff.Test(t, t.Errorf, st.Name(0), "a")
	diff.Test(t, t.Errorf, st.Name(1), "b")

	calldata, err := f.EncodeInput(Tuple(Uint64(7), Bool(true)))
	tc.NoErr(t, err)
	params, err := f.DecodeInput(calldata[4:])
	tc.NoErr(t, err)
	diff.Test(t, t.Errorf, params[0].Name, "p")
	diff.Test(t, t.Errorf, params[0].Value.At(0).Uint64(), uint64(7))
	diff.Test(t, t.Errorf, params[0].Value.At(1).Bool(), true)
	diff.Test(t, t.Errorf, params[0].Value.Name(0), "a")
	diff.Test(t, t.Errorf, params[0].Value.Name(1), "b")
}

func TestDecodeLog(t *testing.T) {
	js := `[{"type":"event","name":"Test","inputs":[
		{"name":"x","type":"uint256"},
		{"name":"y","type":"uint256","indexed":true},
		{"name":"x1","type":"uint256"},
		{"name":"y1","type":"uint256","indexed":true},
		{"name":"s","type":"string"}
	]}]`
	a, err := Parse([]byte(js))
	tc.NoErr(t, err)
	ev, _ := a.Event("Test")
	topics := [][32]byte{
		ev.Topic0(),
		[32]byte(hb(t, "000000000000000000000000000000000000000000000000000000000000000a")),
		[32]byte(hb(t, "000000000000000000000000000000000000000000000000000000000000000b")),
	}
	data := hb(t, `
		0000000000000000000000000000000000000000000000000000000000000001
		0000000000000000000000000000000000000000000000000000000000000002
		0000000000000000000000000000000000000000000000000000000000000060
		0000000000000000000000000000000000000000000000000000000000000003
		6162630000000000000000000000000000000000000000000000000000000000`)
	got, params, err := a.DecodeLog(topics, data)
	tc.NoErr(t, err)
	diff.Test(t, t.Errorf, got.Name, "Test")
	diff.Test(t, t.Errorf, len(params), 5)
	want := []uint64{1, 10, 2, 11}
	for i := range want {
		diff.Test(t, t.Errorf, params[i].Value.Uint64(), want[i])
	}
	diff.Test(t, t.Errorf, params[4].Name, "s")
	diff.Test(t, t.Errorf, params[4].Value.String(), "abc")

	_, _, err = a.DecodeLog([][32]byte{{0x01}}, nil)
	if !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("want: ErrUnknownTopic got: %v", err)
	}
	_, _, err = a.DecodeLog(nil, nil)
	tc.WantErr(t, err)
}

// an indexed dynamic input is represented by its keccak
// only. the decoded value must be distinguishable from a
// recovered value.
func TestDecodeLogIndexedDynamic(t *testing.T) {
	js := `[{"type":"event","name":"Named","inputs":[
		{"name":"id","type":"uint256","indexed":true},
		{"name":"name","type":"string","indexed":true}
	]}]`
	a, err := Parse([]byte(js))
	tc.NoErr(t, err)
	ev, _ := a.Event("Named")
	nameHash := [32]byte(hb(t, "1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8")) // keccak("hello")
	topics := [][32]byte{
		ev.Topic0(),
		[32]byte(hb(t, "0000000000000000000000000000000000000000000000000000000000000001")),
		nameHash,
	}
	_, params, err := a.DecodeLog(topics, nil)
	tc.NoErr(t, err)

	diff.Test(t, t.Errorf, params[0].Value.Type().Kind, schema.Uint)
	diff.Test(t, t.Errorf, params[0].Value.Uint64(), uint64(1))

	diff.Test(t, t.Errorf, params[1].Value.Type().Kind, schema.Hash)
	diff.Test(t, t.Errorf, params[1].Value.Hash32(), nameHash)
	// the hash never reads as a real string
	diff.Test(t, t.Errorf, params[1].Value.Hash32() != [32]byte{}, true)
}

func TestDecodeLogAnonymous(t *testing.T) {
	js := `[{"type":"event","name":"Ping","anonymous":true,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"ok","type":"bool"}
	]}]`
	a, err := Parse([]byte(js))
	tc.NoErr(t, err)
	ev, ok := a.Event("Ping")
	if !ok {
		t.Fatal("want: event Ping")
	}
	// anonymous events are not in the topic index
	if _, ok := a.EventByTopic(ev.Topic0()); ok {
		t.Error("anonymous event must not resolve by topic")
	}

	var from [32]byte
	from[12] = 0xaa
	data := make([]byte, 32)
	data[31] = 1
	params, err := ev.DecodeLog([][32]byte{from}, data)
	tc.NoErr(t, err)
	addr := params[0].Value.Address()
	diff.Test(t, t.Errorf, addr[0], byte(0xaa))
	diff.Test(t, t.Errorf, params[1].Value.Bool(), true)

	// missing topic for the indexed input
	_, err = ev.DecodeLog(nil, data)
	tc.WantErr(t, err)
}

// the parsed Abi is read-only and shared without locks
func TestConcurrentReads(t *testing.T) {
	js := `[{"type":"function","name":"foo","inputs":[
		{"name":"a","type":"uint256"},
		{"name":"b","type":"string"}
	]}]`
	a, err := Parse([]byte(js))
	tc.NoErr(t, err)
	f, _ := a.Function("foo")
	calldata, err := f.EncodeInput(Uint64(42), String("hi"))
	tc.NoErr(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, params, err := a.DecodeInput(calldata)
				if err != nil || params[0].Value.Uint64() != 42 {
					t.Errorf("concurrent decode failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
