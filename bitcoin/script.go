package bitcoin

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	ScriptItemTypeOpCode   = ScriptItemType(0x01)
	ScriptItemTypePushData = ScriptItemType(0x02)

	OP_FALSE = byte(0x00)
	OP_TRUE  = byte(0x51)

	OP_MAX_SINGLE_BYTE_PUSH_DATA = byte(0x4b)
	OP_PUSH_DATA_1               = byte(0x4c)
	OP_PUSH_DATA_2               = byte(0x4d)
	OP_PUSH_DATA_4               = byte(0x4e)

	OP_PUSH_DATA_1_MAX = uint64(255)
	OP_PUSH_DATA_2_MAX = uint64(65535)

	OP_1NEGATE = byte(0x4f)

	OP_0  = byte(0x00)
	OP_1  = byte(0x51)
	OP_2  = byte(0x52)
	OP_3  = byte(0x53)
	OP_4  = byte(0x54)
	OP_5  = byte(0x55)
	OP_6  = byte(0x56)
	OP_7  = byte(0x57)
	OP_8  = byte(0x58)
	OP_9  = byte(0x59)
	OP_10 = byte(0x5a)
	OP_11 = byte(0x5b)
	OP_12 = byte(0x5c)
	OP_13 = byte(0x5d)
	OP_14 = byte(0x5e)
	OP_15 = byte(0x5f)
	OP_16 = byte(0x60)

	OP_NOP    = byte(0x61)
	OP_IF     = byte(0x63)
	OP_NOTIF  = byte(0x64)
	OP_ELSE   = byte(0x67)
	OP_ENDIF  = byte(0x68)
	OP_VERIFY = byte(0x69)
	OP_RETURN = byte(0x6a)

	OP_TOALTSTACK   = byte(0x6b)
	OP_FROMALTSTACK = byte(0x6c)
	OP_DROP         = byte(0x75)
	OP_DUP          = byte(0x76)
	OP_SWAP         = byte(0x7c)

	OP_EQUAL       = byte(0x87)
	OP_EQUALVERIFY = byte(0x88)

	OP_RIPEMD160           = byte(0xa6)
	OP_SHA1                = byte(0xa7)
	OP_SHA256              = byte(0xa8)
	OP_HASH160             = byte(0xa9)
	OP_HASH256             = byte(0xaa)
	OP_CODESEPARATOR       = byte(0xab)
	OP_CHECKSIG            = byte(0xac)
	OP_CHECKSIGVERIFY      = byte(0xad)
	OP_CHECKMULTISIG       = byte(0xae)
	OP_CHECKMULTISIGVERIFY = byte(0xaf)

	OP_CHECKLOCKTIMEVERIFY = byte(0xb1)
	OP_CHECKSEQUENCEVERIFY = byte(0xb2)
)

var (
	ErrInvalidScript         = errors.New("Invalid Script")
	ErrInvalidScriptItemType = errors.New("Invalid Script Item Type")

	endian = binary.LittleEndian

	byteToNames = map[byte]string{
		OP_FALSE:               "OP_FALSE",
		OP_PUSH_DATA_1:         "OP_PUSHDATA1",
		OP_PUSH_DATA_2:         "OP_PUSHDATA2",
		OP_PUSH_DATA_4:         "OP_PUSHDATA4",
		OP_1NEGATE:             "OP_1NEGATE",
		OP_1:                   "OP_1",
		OP_2:                   "OP_2",
		OP_3:                   "OP_3",
		OP_4:                   "OP_4",
		OP_5:                   "OP_5",
		OP_6:                   "OP_6",
		OP_7:                   "OP_7",
		OP_8:                   "OP_8",
		OP_9:                   "OP_9",
		OP_10:                  "OP_10",
		OP_11:                  "OP_11",
		OP_12:                  "OP_12",
		OP_13:                  "OP_13",
		OP_14:                  "OP_14",
		OP_15:                  "OP_15",
		OP_16:                  "OP_16",
		OP_NOP:                 "OP_NOP",
		OP_IF:                  "OP_IF",
		OP_NOTIF:               "OP_NOTIF",
		OP_ELSE:                "OP_ELSE",
		OP_ENDIF:               "OP_ENDIF",
		OP_VERIFY:              "OP_VERIFY",
		OP_RETURN:              "OP_RETURN",
		OP_TOALTSTACK:          "OP_TOALTSTACK",
		OP_FROMALTSTACK:        "OP_FROMALTSTACK",
		OP_DROP:                "OP_DROP",
		OP_DUP:                 "OP_DUP",
		OP_SWAP:                "OP_SWAP",
		OP_EQUAL:               "OP_EQUAL",
		OP_EQUALVERIFY:         "OP_EQUALVERIFY",
		OP_RIPEMD160:           "OP_RIPEMD160",
		OP_SHA1:                "OP_SHA1",
		OP_SHA256:              "OP_SHA256",
		OP_HASH160:             "OP_HASH160",
		OP_HASH256:             "OP_HASH256",
		OP_CODESEPARATOR:       "OP_CODESEPARATOR",
		OP_CHECKSIG:            "OP_CHECKSIG",
		OP_CHECKSIGVERIFY:      "OP_CHECKSIGVERIFY",
		OP_CHECKMULTISIG:       "OP_CHECKMULTISIG",
		OP_CHECKMULTISIGVERIFY: "OP_CHECKMULTISIGVERIFY",
		OP_CHECKLOCKTIMEVERIFY: "OP_CHECKLOCKTIMEVERIFY",
		OP_CHECKSEQUENCEVERIFY: "OP_CHECKSEQUENCEVERIFY",
	}
)

type ScriptItemType uint8

type ScriptItem struct {
	Type   ScriptItemType
	OpCode byte
	Data   Hex
}

type ScriptItems []*ScriptItem

// Script is a raw bitcoin script.
type Script []byte

func NewScript(b []byte) Script {
	return Script(b)
}

func (item ScriptItem) String() string {
	if item.Type == ScriptItemTypePushData {
		return fmt.Sprintf("0x%s", hex.EncodeToString(item.Data))
	}

	name, exists := byteToNames[item.OpCode]
	if exists {
		return name
	}

	// Undefined op code
	return fmt.Sprintf("{0x%02x}", item.OpCode)
}

func NewOpCodeScriptItem(opCode byte) *ScriptItem {
	return &ScriptItem{
		Type:   ScriptItemTypeOpCode,
		OpCode: opCode,
	}
}

func NewPushDataScriptItem(b []byte) *ScriptItem {
	return &ScriptItem{
		Type: ScriptItemTypePushData,
		Data: b,
	}
}

// WritePushDataScript writes a push data bitcoin script including the encoded size preceding it.
func WritePushDataScript(w io.Writer, data []byte) error {
	size := uint64(len(data))
	var err error
	if size <= uint64(OP_MAX_SINGLE_BYTE_PUSH_DATA) {
		_, err = w.Write([]byte{byte(size)}) // Single byte push
	} else if size < OP_PUSH_DATA_1_MAX {
		_, err = w.Write([]byte{OP_PUSH_DATA_1, byte(size)})
	} else if size < OP_PUSH_DATA_2_MAX {
		_, err = w.Write([]byte{OP_PUSH_DATA_2})
		if err != nil {
			return err
		}
		err = binary.Write(w, endian, uint16(size))
	} else {
		_, err = w.Write([]byte{OP_PUSH_DATA_4})
		if err != nil {
			return err
		}
		err = binary.Write(w, endian, uint32(size))
	}
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

// ParseScript will parse the next item of a bitcoin script.
// A bytes.Reader object is needed to check the size against the remaining length before allocating
// the memory to store the push.
func ParseScript(buf *bytes.Reader) (*ScriptItem, error) {
	var opCode byte
	if err := binary.Read(buf, endian, &opCode); err != nil {
		return nil, err
	}

	isPushOp := false
	dataSize := 0
	if opCode == OP_FALSE {
		return NewOpCodeScriptItem(opCode), nil
	} else if opCode <= OP_MAX_SINGLE_BYTE_PUSH_DATA {
		isPushOp = true
		dataSize = int(opCode)
	} else {
		switch opCode {
		case OP_PUSH_DATA_1:
			var size uint8
			if err := binary.Read(buf, endian, &size); err != nil {
				return nil, err
			}
			isPushOp = true
			dataSize = int(size)
		case OP_PUSH_DATA_2:
			var size uint16
			if err := binary.Read(buf, endian, &size); err != nil {
				return nil, err
			}
			isPushOp = true
			dataSize = int(size)
		case OP_PUSH_DATA_4:
			var size uint32
			if err := binary.Read(buf, endian, &size); err != nil {
				return nil, err
			}
			isPushOp = true
			dataSize = int(size)
		}
	}

	if !isPushOp {
		return NewOpCodeScriptItem(opCode), nil
	}

	if dataSize == 0 {
		return &ScriptItem{
			Type:   ScriptItemTypePushData,
			OpCode: opCode,
			Data:   nil,
		}, nil
	}

	if dataSize > buf.Len() { // Check this to prevent trying to allocate a large amount.
		return nil, errors.Wrapf(ErrInvalidScript, "push data size past end of script : %d/%d",
			dataSize, buf.Len())
	}

	data := make([]byte, dataSize)
	if _, err := buf.Read(data); err != nil {
		return nil, err
	}

	return &ScriptItem{
		Type:   ScriptItemTypePushData,
		OpCode: opCode,
		Data:   data,
	}, nil
}

// ParseScriptItems parses the specified number of script items from the reader. A count of -1
// parses all items remaining.
func ParseScriptItems(buf *bytes.Reader, count int) (ScriptItems, error) {
	if count == -1 {
		// Read all
		var result ScriptItems
		i := 0
		for buf.Len() > 0 {
			item, err := ParseScript(buf)
			if err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}

			result = append(result, item)
			i++
		}

		return result, nil
	}

	result := make(ScriptItems, count)
	for i := range result {
		item, err := ParseScript(buf)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}

		result[i] = item
	}

	return result, nil
}

func (item ScriptItem) Write(w io.Writer) error {
	switch item.Type {
	case ScriptItemTypeOpCode:
		if _, err := w.Write([]byte{item.OpCode}); err != nil {
			return errors.Wrap(err, "op code")
		}

	case ScriptItemTypePushData:
		if err := WritePushDataScript(w, item.Data); err != nil {
			return errors.Wrap(err, "data")
		}

	default:
		return errors.Wrapf(ErrInvalidScriptItemType, "%d", item.Type)
	}

	return nil
}

func (items ScriptItems) Script() (Script, error) {
	buf := &bytes.Buffer{}
	for i, item := range items {
		if err := item.Write(buf); err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
	}

	return Script(buf.Bytes()), nil
}

// RemoveOpCode removes all occurrences of the specified op code from the script. Push data items
// whose first byte matches are not affected.
func (s Script) RemoveOpCode(opCode byte) (Script, error) {
	items, err := ParseScriptItems(bytes.NewReader(s), -1)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	result := make(ScriptItems, 0, len(items))
	for _, item := range items {
		if item.Type == ScriptItemTypeOpCode && item.OpCode == opCode {
			continue
		}
		result = append(result, item)
	}

	return result.Script()
}

func (s Script) Copy() Script {
	c := make(Script, len(s))
	copy(c, s)
	return c
}

func (s Script) Equal(r Script) bool {
	return bytes.Equal(s, r)
}

// String returns the script in asm text format.
func (s Script) String() string {
	items, err := ParseScriptItems(bytes.NewReader(s), -1)
	if err != nil {
		return hex.EncodeToString(s)
	}

	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}

	return strings.Join(parts, " ")
}

// MarshalText implements encoding.TextMarshaler for json and other text encoding packages.
func (s Script) MarshalText() ([]byte, error) {
	result := make([]byte, hex.EncodedLen(len(s)))
	hex.Encode(result, s)
	return result, nil
}

// UnmarshalText implements encoding.TextUnmarshaler for json and other text encoding packages.
func (s *Script) UnmarshalText(text []byte) error {
	d := make([]byte, hex.DecodedLen(len(text)))
	if _, err := hex.Decode(d, text); err != nil {
		return err
	}

	*s = d
	return nil
}
