// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"math"

	"github.com/SequentiaSEQ/sequentia-lib/bitcoin"

	"github.com/pkg/errors"
)

// maxElementCount bounds varint element counts (inputs, outputs, witness items) so a malformed
// count can't force an unbounded allocation. Counts up to the bound are not checked against the
// bytes remaining in the buffer.
const maxElementCount = uint64(1) << 24

var endian = binary.LittleEndian

// Reader is a cursor over a borrowed byte buffer. Reads advance the offset and fail with
// ErrTruncated when the buffer is exhausted. Slices returned by reads are copies owned by the
// caller.
type Reader struct {
	buf    []byte
	offset int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of bytes left in the buffer.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.offset
}

func (r *Reader) ReadUint8() (uint8, error) {
	if r.Remaining() < 1 {
		return 0, errors.Wrap(ErrTruncated, "uint8")
	}
	v := r.buf[r.offset]
	r.offset++
	return v, nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, errors.Wrap(ErrTruncated, "uint32")
	}
	v := endian.Uint32(r.buf[r.offset:])
	r.offset += 4
	return v, nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	if r.Remaining() < 8 {
		return 0, errors.Wrap(ErrTruncated, "uint64")
	}
	v := endian.Uint64(r.buf[r.offset:])
	r.offset += 8
	return v, nil
}

// ReadVarInt reads a bitcoin compact size integer. Non-minimal encodings are accepted; rejecting
// them is a consensus-validator concern, not a codec one.
func (r *Reader) ReadVarInt() (uint64, error) {
	discriminant, err := r.ReadUint8()
	if err != nil {
		return 0, err
	}

	switch discriminant {
	case 0xff:
		return r.ReadUint64()

	case 0xfe:
		v, err := r.ReadUint32()
		return uint64(v), err

	case 0xfd:
		if r.Remaining() < 2 {
			return 0, errors.Wrap(ErrTruncated, "varint16")
		}
		v := endian.Uint16(r.buf[r.offset:])
		r.offset += 2
		return uint64(v), nil

	default:
		return uint64(discriminant), nil
	}
}

// ReadSlice returns the next n bytes as a fresh copy.
func (r *Reader) ReadSlice(n uint64) ([]byte, error) {
	if uint64(r.Remaining()) < n {
		return nil, errors.Wrapf(ErrTruncated, "slice of %d", n)
	}

	b := make([]byte, n)
	copy(b, r.buf[r.offset:])
	r.offset += int(n)
	return b, nil
}

// ReadVarSlice reads a varint length followed by that many bytes.
func (r *Reader) ReadVarSlice() ([]byte, error) {
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}

	return r.ReadSlice(count)
}

// ReadVector reads a varint element count followed by that many var slices.
func (r *Reader) ReadVector() ([][]byte, error) {
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}

	if count > maxElementCount {
		return nil, errors.Wrapf(ErrInvalidVarInt, "vector count %d over max %d", count,
			maxElementCount)
	}

	result := make([][]byte, count)
	for i := range result {
		if result[i], err = r.ReadVarSlice(); err != nil {
			return nil, errors.Wrapf(err, "vector item %d", i)
		}
	}

	return result, nil
}

// ReadHash32 reads a 32 byte hash.
func (r *Reader) ReadHash32() (bitcoin.Hash32, error) {
	var result bitcoin.Hash32
	if r.Remaining() < bitcoin.Hash32Size {
		return result, errors.Wrap(ErrTruncated, "hash32")
	}

	copy(result[:], r.buf[r.offset:])
	r.offset += bitcoin.Hash32Size
	return result, nil
}

// Writer builds a byte buffer. Pre-size it with the serialized size so appends never reallocate.
type Writer struct {
	buf []byte
}

func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Bytes returns the written buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = endian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteUint64(v uint64) {
	w.buf = endian.AppendUint64(w.buf, v)
}

// WriteVarInt writes the minimal compact size encoding of the value.
func (w *Writer) WriteVarInt(v uint64) {
	if v < 0xfd {
		w.WriteUint8(uint8(v))
		return
	}

	if v <= math.MaxUint16 {
		w.WriteUint8(0xfd)
		w.buf = endian.AppendUint16(w.buf, uint16(v))
		return
	}

	if v <= math.MaxUint32 {
		w.WriteUint8(0xfe)
		w.WriteUint32(uint32(v))
		return
	}

	w.WriteUint8(0xff)
	w.WriteUint64(v)
}

func (w *Writer) WriteSlice(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteVarSlice writes a varint length followed by the bytes.
func (w *Writer) WriteVarSlice(b []byte) {
	w.WriteVarInt(uint64(len(b)))
	w.WriteSlice(b)
}

// WriteVector writes a varint element count followed by each element as a var slice.
func (w *Writer) WriteVector(v [][]byte) {
	w.WriteVarInt(uint64(len(v)))
	for _, b := range v {
		w.WriteVarSlice(b)
	}
}

func (w *Writer) WriteHash32(h bitcoin.Hash32) {
	w.buf = append(w.buf, h[:]...)
}

// VarIntSerializeSize returns the number of bytes it would take to serialize val as a variable
// length integer.
func VarIntSerializeSize(val uint64) int {
	// The value is small enough to be represented by itself, so it's just 1 byte.
	if val < 0xfd {
		return 1
	}

	// Discriminant 1 byte plus 2 bytes for the uint16.
	if val <= math.MaxUint16 {
		return 3
	}

	// Discriminant 1 byte plus 4 bytes for the uint32.
	if val <= math.MaxUint32 {
		return 5
	}

	// Discriminant 1 byte plus 8 bytes for the uint64.
	return 9
}

// VarSliceSerializeSize returns the byte count of a varint length prefix plus the bytes.
func VarSliceSerializeSize(b []byte) int {
	return VarIntSerializeSize(uint64(len(b))) + len(b)
}

// VectorSerializeSize returns the byte count of a varint element count plus each element as a var
// slice.
func VectorSerializeSize(v [][]byte) int {
	n := VarIntSerializeSize(uint64(len(v)))
	for _, b := range v {
		n += VarSliceSerializeSize(b)
	}
	return n
}
