package wire

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestVarInt(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		size  int
		hex   []byte
	}{
		{"single byte zero", 0, 1, []byte{0x00}},
		{"single byte max", 0xfc, 1, []byte{0xfc}},
		{"two byte min", 0xfd, 3, []byte{0xfd, 0xfd, 0x00}},
		{"two byte max", 0xffff, 3, []byte{0xfd, 0xff, 0xff}},
		{"four byte min", 0x10000, 5, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}},
		{"four byte max", 0xffffffff, 5, []byte{0xfe, 0xff, 0xff, 0xff, 0xff}},
		{"eight byte min", 0x100000000, 9,
			[]byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if size := VarIntSerializeSize(tt.value); size != tt.size {
				t.Fatalf("Wrong serialize size : got %d, want %d", size, tt.size)
			}

			w := NewWriter(tt.size)
			w.WriteVarInt(tt.value)
			if !bytes.Equal(w.Bytes(), tt.hex) {
				t.Fatalf("Wrong encoding : got %x, want %x", w.Bytes(), tt.hex)
			}

			r := NewReader(tt.hex)
			value, err := r.ReadVarInt()
			if err != nil {
				t.Fatalf("Failed to read varint : %s", err)
			}
			if value != tt.value {
				t.Fatalf("Wrong value : got %d, want %d", value, tt.value)
			}
			if r.Remaining() != 0 {
				t.Fatalf("Reader did not consume encoding : %d remaining", r.Remaining())
			}
		})
	}
}

func TestVarIntNonMinimal(t *testing.T) {
	// Non-minimal encodings are accepted by the codec. Enforcement belongs to a consensus
	// validator layer.
	r := NewReader([]byte{0xfd, 0x01, 0x00})
	value, err := r.ReadVarInt()
	if err != nil {
		t.Fatalf("Failed to read non-minimal varint : %s", err)
	}
	if value != 1 {
		t.Fatalf("Wrong value : got %d, want 1", value)
	}
}

func TestReaderTruncated(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		read func(r *Reader) error
	}{
		{"uint8 empty", nil, func(r *Reader) error {
			_, err := r.ReadUint8()
			return err
		}},
		{"uint32 short", []byte{0x01, 0x02}, func(r *Reader) error {
			_, err := r.ReadUint32()
			return err
		}},
		{"uint64 short", []byte{0x01}, func(r *Reader) error {
			_, err := r.ReadUint64()
			return err
		}},
		{"varint body short", []byte{0xfd, 0x01}, func(r *Reader) error {
			_, err := r.ReadVarInt()
			return err
		}},
		{"slice short", []byte{0x01, 0x02}, func(r *Reader) error {
			_, err := r.ReadSlice(3)
			return err
		}},
		{"var slice short", []byte{0x05, 0x01}, func(r *Reader) error {
			_, err := r.ReadVarSlice()
			return err
		}},
		{"hash short", make([]byte, 31), func(r *Reader) error {
			_, err := r.ReadHash32()
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewReader(tt.buf))
			if errors.Cause(err) != ErrTruncated {
				t.Fatalf("Wrong error : got %v, want %v", err, ErrTruncated)
			}
		})
	}
}

func TestReadVector(t *testing.T) {
	w := NewWriter(0)
	w.WriteVector([][]byte{{0xde}, {0xad, 0xbe}, nil})

	r := NewReader(w.Bytes())
	items, err := r.ReadVector()
	if err != nil {
		t.Fatalf("Failed to read vector : %s", err)
	}

	if len(items) != 3 {
		t.Fatalf("Wrong item count : got %d, want 3", len(items))
	}
	if !bytes.Equal(items[0], []byte{0xde}) || !bytes.Equal(items[1], []byte{0xad, 0xbe}) ||
		len(items[2]) != 0 {
		t.Fatalf("Wrong items : %x", items)
	}

	if size := VectorSerializeSize([][]byte{{0xde}, {0xad, 0xbe}, nil}); size != w.Len() {
		t.Fatalf("Wrong vector size : got %d, want %d", size, w.Len())
	}
}

func TestReadVectorCountOverMax(t *testing.T) {
	// A count over the element maximum must be rejected before allocating for it.
	w := NewWriter(9)
	w.WriteVarInt(uint64(1) << 32)

	r := NewReader(w.Bytes())
	if _, err := r.ReadVector(); errors.Cause(err) != ErrInvalidVarInt {
		t.Fatalf("Wrong error : got %v, want %v", err, ErrInvalidVarInt)
	}
}

func TestReadSliceOwned(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03}
	r := NewReader(buf)

	b, err := r.ReadSlice(3)
	if err != nil {
		t.Fatalf("Failed to read slice : %s", err)
	}

	buf[0] = 0xff
	if b[0] != 0x01 {
		t.Fatalf("Slice not owned by caller : %x", b)
	}
}
