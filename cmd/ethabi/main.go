// Decodes EVM calldata or log records using a json ABI file.
//
//	ethabi -abi erc20.json -input 0xa9059cbb...
//	ethabi -abi erc20.json -topics 0xddf2...,0x0000... -data 0x00...
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/indexsupply/ethabi/abi"
	"github.com/indexsupply/ethabi/abi/schema"
	"github.com/indexsupply/ethabi/eth"
	"github.com/kr/pretty"
)

func check(err error) {
	if err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}
}

func main() {
	var (
		abiFile string
		input   string
		topics  string
		data    string
		event   string
		verbose bool
	)
	flag.StringVar(&abiFile, "abi", "", "json abi file")
	flag.StringVar(&input, "input", "", "hex calldata to decode")
	flag.StringVar(&topics, "topics", "", "comma separated hex log topics")
	flag.StringVar(&data, "data", "", "hex log data")
	flag.StringVar(&event, "event", "", "event name hint for anonymous events")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Parse()

	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelInfo)
	if verbose {
		logLevel.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	if abiFile == "" {
		check(fmt.Errorf("missing -abi file"))
	}
	f, err := os.Open(abiFile)
	check(err)
	defer f.Close()
	a, err := abi.ParseReader(f)
	check(err)
	slog.Debug("parsed abi",
		"functions", len(a.Functions),
		"events", len(a.Events),
	)

	switch {
	case input != "":
		fn, params, err := a.DecodeInputHex(input)
		check(err)
		fmt.Printf("function: %s\n", fn.Signature())
		printParams(params)
	case topics != "":
		var l eth.Log
		for _, s := range strings.Split(topics, ",") {
			b, err := eth.DecodeHex(strings.TrimSpace(s))
			check(err)
			if len(b) != 32 {
				check(fmt.Errorf("topic must be 32 bytes. got: %d", len(b)))
			}
			l.Topics = append(l.Topics, eth.Hash(b))
		}
		d, err := eth.DecodeHex(data)
		check(err)
		l.Data = d
		var (
			ev     *abi.Event
			params []abi.DecodedParam
		)
		switch {
		case event != "":
			hint, ok := a.Event(event)
			if !ok {
				check(fmt.Errorf("no event named %q in abi", event))
			}
			ev = hint
			params, err = hint.DecodeLog(l.Topics32(), l.Data)
		default:
			ev, params, err = a.DecodeLog(l.Topics32(), l.Data)
		}
		check(err)
		fmt.Printf("event: %s\n", ev.Signature())
		printParams(params)
	default:
		check(fmt.Errorf("supply -input or -topics/-data"))
	}
}

func printParams(params []abi.DecodedParam) {
	for _, p := range params {
		pretty.Printf("%s: %v\n", p.Name, param(p.Value))
	}
}

// renders a decoded value with its most natural Go type
func param(v abi.Value) any {
	switch v.Type().Kind {
	case schema.Uint, schema.Int:
		return v.BigInt().String()
	case schema.Address:
		a := v.Address()
		return eth.EncodeHex(a[:])
	case schema.Bool:
		return v.Bool()
	case schema.String:
		return v.String()
	case schema.Hash:
		h := v.Hash32()
		return "keccak:" + eth.EncodeHex(h[:])
	case schema.Array, schema.Tuple:
		var res []any
		for i := 0; i < v.Len(); i++ {
			res = append(res, param(v.At(i)))
		}
		return res
	default:
		return eth.EncodeHex(v.Bytes())
	}
}
