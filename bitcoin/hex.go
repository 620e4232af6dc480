package bitcoin

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

var (
	ErrNotJSONString = errors.New("Not a JSON string")
)

// Hex is a byte slice that marshals as a hex string instead of the base64 that json defaults to
// for byte slices. The codec uses it for free form proof and commitment fields whose dumps are
// read next to txids and scripts, which are already hex.
type Hex []byte

func (b Hex) String() string {
	return hex.EncodeToString(b)
}

func (b Hex) MarshalJSON() ([]byte, error) {
	result := make([]byte, 0, hex.EncodedLen(len(b))+2)
	result = append(result, '"')
	result = hex.AppendEncode(result, b)
	return append(result, '"'), nil
}

func (b *Hex) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.Wrap(ErrNotJSONString, string(data))
	}

	return b.UnmarshalText(data[1 : len(data)-1])
}

func (b Hex) MarshalText() ([]byte, error) {
	return hex.AppendEncode(nil, b), nil
}

func (b *Hex) UnmarshalText(text []byte) error {
	d, err := hex.AppendDecode(nil, text)
	if err != nil {
		return err
	}

	*b = d
	return nil
}

func (b Hex) MarshalBinary() ([]byte, error) {
	return b, nil
}

func (b *Hex) UnmarshalBinary(data []byte) error {
	*b = data
	return nil
}
