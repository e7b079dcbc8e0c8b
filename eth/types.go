package eth

import "fmt"

// 0x prefixed, hex encoded bytes in JSON
type Bytes []byte

func (hb *Bytes) Bytes() []byte {
	return []byte(*hb)
}

func (hb *Bytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("must be a json string")
	}
	b, err := DecodeHex(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*hb = b
	return nil
}

func (hb Bytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + EncodeHex(hb) + `"`), nil
}

// 32 byte topic word
type Hash [32]byte

func (h *Hash) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("must be a json string")
	}
	b, err := DecodeHex(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	if len(b) != 32 {
		return fmt.Errorf("hash must be 32 bytes. got: %d", len(b))
	}
	*h = Hash(b)
	return nil
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return []byte(`"` + EncodeHex(h[:]) + `"`), nil
}

// an EVM log record: topic words plus the abi encoded
// data payload for the non-indexed inputs
type Log struct {
	Topics []Hash `json:"topics"`
	Data   Bytes  `json:"data"`
}

func (l Log) Topics32() [][32]byte {
	res := make([][32]byte, len(l.Topics))
	for i := range l.Topics {
		res[i] = [32]byte(l.Topics[i])
	}
	return res
}
