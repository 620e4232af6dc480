// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/SequentiaSEQ/sequentia-lib/bitcoin"

	"github.com/pkg/errors"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion = 2

	// DefaultSequence is the default sequence number for a transaction input.
	DefaultSequence = uint32(0xffffffff)

	// MaxPrevOutIndex is the sentinel index of a coinbase previous outpoint. It is carried
	// through serialization unmasked.
	MaxPrevOutIndex = uint32(0xffffffff)

	// AdvancedTransactionFlag marks the extended serialization carrying the witness and proof
	// suffix after the transaction body.
	AdvancedTransactionFlag = uint8(0x01)

	// OutpointIssuanceFlag is set on the wire form of an outpoint index when the input carries an
	// asset issuance record.
	OutpointIssuanceFlag = uint32(0x80000000)

	// OutpointPeginFlag is set on the wire form of an outpoint index when the input spends a
	// peg-in deposit.
	OutpointPeginFlag = uint32(0x40000000)

	// OutpointIndexMask extracts the logical output index from the wire form.
	OutpointIndexMask = uint32(0x3fffffff)

	// WitnessScaleFactor weights base bytes against witness bytes.
	WitnessScaleFactor = 4

	// defaultTxInOutAlloc is the default size used for the backing array for transaction inputs
	// and outputs. The array will dynamically grow as needed, but this figure is intended to
	// provide enough space for the number of inputs and outputs in a typical transaction without
	// needing to grow the backing array multiple times.
	defaultTxInOutAlloc = 15
)

// OutPoint defines the previous transaction output spent by an input. Index is the logical output
// index; the issuance and peg-in flag bits packed into its top bits on the wire are represented by
// the input's Issuance and IsPegIn fields.
type OutPoint struct {
	Hash  bitcoin.Hash32 `json:"hash"`
	Index uint32         `json:"index"`
}

// NewOutPoint returns a new transaction outpoint with the provided hash and logical index.
func NewOutPoint(hash *bitcoin.Hash32, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  *hash,
		Index: index,
	}
}

// OutPointFromStr parses a string into an outpoint. The format is "<txid:index>".
func OutPointFromStr(s string) (*OutPoint, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return nil, errors.New("Invalid format: wrong colon count")
	}

	hash, err := bitcoin.NewHash32FromStr(parts[0])
	if err != nil {
		return nil, errors.Wrap(err, "invalid hash")
	}

	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, errors.Wrap(err, "invalid index")
	}

	return NewOutPoint(hash, uint32(index)), nil
}

// String returns the OutPoint in the human-readable form "hash:index".
func (op OutPoint) String() string {
	buf := make([]byte, 2*bitcoin.Hash32Size+1, 2*bitcoin.Hash32Size+1+10)
	copy(buf, op.Hash.String())
	buf[2*bitcoin.Hash32Size] = ':'
	buf = strconv.AppendUint(buf, uint64(op.Index), 10)
	return string(buf)
}

// Serialize encodes op to the wire encoding for an OutPoint. The logical index is written without
// flag bits; the transaction codec packs those when it writes an input.
func (op *OutPoint) Serialize(w io.Writer) error {
	if err := op.Hash.Serialize(w); err != nil {
		return err
	}

	var b [4]byte
	endian.PutUint32(b[:], op.Index)
	_, err := w.Write(b[:])
	return err
}

// TxIn defines a transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint       `json:"outpoint"`
	UnlockingScript  bitcoin.Script `json:"script"`
	Sequence         uint32         `json:"sequence"`

	// IsPegIn marks an input spending a federated peg-in deposit. It is packed into the second
	// highest bit of the outpoint index on the wire.
	IsPegIn bool `json:"is_pegin,omitempty"`

	// Issuance is the optional asset issuance record. Its presence drives the issuance flag bit
	// of the wire outpoint index; there is no separate flag field to get out of sync.
	Issuance *Issuance `json:"issuance,omitempty"`

	Witness      [][]byte `json:"witness,omitempty"`
	PeginWitness [][]byte `json:"pegin_witness,omitempty"`

	IssuanceRangeProof  bitcoin.Hex `json:"issuance_range_proof,omitempty"`
	InflationRangeProof bitcoin.Hex `json:"inflation_range_proof,omitempty"`
}

// NewTxIn returns a new transaction input with the provided previous outpoint and unlocking
// script with a default sequence of DefaultSequence.
func NewTxIn(prevOut *OutPoint, unlockingScript bitcoin.Script) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		UnlockingScript:  unlockingScript,
		Sequence:         DefaultSequence,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the transaction input,
// not including the witness suffix fields.
func (t *TxIn) SerializeSize() int {
	// Outpoint Hash 32 bytes + Outpoint Index 4 bytes + Sequence 4 bytes + serialized varint
	// size for the length of UnlockingScript + UnlockingScript bytes.
	n := 40 + VarSliceSerializeSize(t.UnlockingScript)

	if t.Issuance != nil && t.PreviousOutPoint.Index != MaxPrevOutIndex {
		n += t.Issuance.SerializeSize()
	}

	return n
}

// WitnessSerializeSize returns the number of bytes the input contributes to the witness and proof
// suffix of the extended serialization.
func (t *TxIn) WitnessSerializeSize() int {
	return VarSliceSerializeSize(t.IssuanceRangeProof) +
		VarSliceSerializeSize(t.InflationRangeProof) +
		VectorSerializeSize(t.Witness) +
		VectorSerializeSize(t.PeginWitness)
}

// TxOut defines a transaction output.
type TxOut struct {
	Asset         ConfidentialAsset `json:"asset"`
	Value         ConfidentialValue `json:"value"`
	Nonce         ConfidentialNonce `json:"nonce"`
	LockingScript bitcoin.Script    `json:"locking_script"`

	RangeProof      bitcoin.Hex `json:"range_proof,omitempty"`
	SurjectionProof bitcoin.Hex `json:"surjection_proof,omitempty"`
}

// NewTxOut returns a new transaction output with the provided asset, value and locking script and
// an absent nonce.
func NewTxOut(asset ConfidentialAsset, value ConfidentialValue,
	lockingScript bitcoin.Script) *TxOut {
	return &TxOut{
		Asset:         asset,
		Value:         value,
		Nonce:         NilNonce(),
		LockingScript: lockingScript,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the transaction output,
// not including the witness suffix fields.
func (t *TxOut) SerializeSize() int {
	return t.serializeSize(false)
}

func (t *TxOut) serializeSize(blankValue bool) int {
	n := confidentialFieldSize(t.Asset) + confidentialFieldSize(t.Nonce) +
		VarSliceSerializeSize(t.LockingScript)

	if blankValue {
		// Absent value marker plus a zero 64 bit amount.
		n += 9
	} else {
		n += confidentialFieldSize(t.Value)
	}

	return n
}

// WitnessSerializeSize returns the number of bytes the output contributes to the witness and
// proof suffix of the extended serialization.
func (t *TxOut) WitnessSerializeSize() int {
	return VarSliceSerializeSize(t.SurjectionProof) + VarSliceSerializeSize(t.RangeProof)
}

// HasWitness returns true when the output carries both of its proofs. An output with only one of
// the two populated does not trigger the extended serialization; this mirrors the reference
// behavior.
func (t *TxOut) HasWitness() bool {
	return len(t.RangeProof) > 0 && len(t.SurjectionProof) > 0
}

// MsgTx represents a confidential transaction.
//
// Use the AddTxIn and AddTxOut functions to build up the list of transaction inputs and outputs.
type MsgTx struct {
	Version  int32
	Flag     uint8
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new transaction with the provided version. The returned instance has no
// inputs or outputs and a lock time of zero.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// AddInput adds an input spending the output at a wire-form index. Flag bits packed into the top
// bits of the index are unpacked into the input fields; the issuance flag bit requires an
// issuance record.
func (msg *MsgTx) AddInput(prevHash bitcoin.Hash32, index uint32, sequence uint32,
	issuance *Issuance) (*TxIn, error) {

	ti := &TxIn{
		PreviousOutPoint: OutPoint{Hash: prevHash, Index: index},
		Sequence:         sequence,
	}

	if index != MaxPrevOutIndex {
		if index&OutpointIssuanceFlag != 0 {
			if issuance == nil {
				return nil, errors.Wrap(ErrMissingIssuance, ti.PreviousOutPoint.String())
			}
			ti.Issuance = issuance
		}

		ti.IsPegIn = index&OutpointPeginFlag != 0
		ti.PreviousOutPoint.Index = index & OutpointIndexMask
	}

	msg.AddTxIn(ti)
	return ti, nil
}

// HasWitnesses returns true when serializing the transaction requires the witness and proof
// suffix: the deserialized flag byte requested it, an input carries witness items, or an output
// carries both of its proofs.
func (msg *MsgTx) HasWitnesses() bool {
	if msg.Flag&AdvancedTransactionFlag != 0 {
		return true
	}

	for _, ti := range msg.TxIn {
		if len(ti.Witness) > 0 {
			return true
		}
	}

	for _, to := range msg.TxOut {
		if to.HasWitness() {
			return true
		}
	}

	return false
}

// IsCoinbase returns true when the transaction has exactly one input and that input's previous
// transaction hash is all zeroes. The previous output index is not checked.
func (msg *MsgTx) IsCoinbase() bool {
	return len(msg.TxIn) == 1 && msg.TxIn[0].PreviousOutPoint.Hash.IsZero()
}

// TxHash generates the id of the transaction: the double SHA256 of the serialization with the
// flag byte forced to zero and the witness suffix omitted. The hex form of the returned hash is
// byte reversed by Hash32.
func (msg *MsgTx) TxHash() *bitcoin.Hash32 {
	result, _ := bitcoin.NewHash32(bitcoin.DoubleSha256(msg.serialize(true, true, false)))
	return result
}

// WitnessHash generates the witness id of the transaction: the double SHA256 of the full
// extended serialization. The witness id of a coinbase transaction is defined to be all zeroes.
func (msg *MsgTx) WitnessHash() *bitcoin.Hash32 {
	if msg.IsCoinbase() {
		return &bitcoin.Hash32{}
	}

	result, _ := bitcoin.NewHash32(bitcoin.DoubleSha256(msg.serialize(true, false, false)))
	return result
}

// Copy creates a deep copy of a transaction so that the original does not get modified when the
// copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		Flag:     msg.Flag,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		newTxIn := TxIn{
			PreviousOutPoint: OutPoint{
				Hash:  oldTxIn.PreviousOutPoint.Hash.Copy(),
				Index: oldTxIn.PreviousOutPoint.Index,
			},
			UnlockingScript:     bitcoin.Script(copyBytes(oldTxIn.UnlockingScript)),
			Sequence:            oldTxIn.Sequence,
			IsPegIn:             oldTxIn.IsPegIn,
			Witness:             copyVector(oldTxIn.Witness),
			PeginWitness:        copyVector(oldTxIn.PeginWitness),
			IssuanceRangeProof:  copyBytes(oldTxIn.IssuanceRangeProof),
			InflationRangeProof: copyBytes(oldTxIn.InflationRangeProof),
		}

		if oldTxIn.Issuance != nil {
			newTxIn.Issuance = oldTxIn.Issuance.Copy()
		}

		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}

	for _, oldTxOut := range msg.TxOut {
		newTxOut := TxOut{
			Asset:           ConfidentialAsset(copyBytes(oldTxOut.Asset)),
			Value:           ConfidentialValue(copyBytes(oldTxOut.Value)),
			Nonce:           ConfidentialNonce(copyBytes(oldTxOut.Nonce)),
			LockingScript:   bitcoin.Script(copyBytes(oldTxOut.LockingScript)),
			RangeProof:      copyBytes(oldTxOut.RangeProof),
			SurjectionProof: copyBytes(oldTxOut.SurjectionProof),
		}

		newTx.TxOut = append(newTx.TxOut, &newTxOut)
	}

	return &newTx
}

func copyVector(v [][]byte) [][]byte {
	if v == nil {
		return nil
	}

	result := make([][]byte, len(v))
	for i, b := range v {
		result[i] = copyBytes(b)
	}
	return result
}

// DeserializeTx decodes a transaction from bytes, failing with ErrTrailingBytes when the buffer
// contains more than the transaction.
func DeserializeTx(b []byte) (*MsgTx, error) {
	return deserializeTx(b, false)
}

// DeserializeTxNonStrict decodes a transaction from the front of the buffer, ignoring any
// trailing bytes.
func DeserializeTxNonStrict(b []byte) (*MsgTx, error) {
	return deserializeTx(b, true)
}

func deserializeTx(b []byte, nonStrict bool) (*MsgTx, error) {
	r := NewReader(b)
	msg := &MsgTx{}

	var err error
	if msg.Version, err = r.ReadInt32(); err != nil {
		return nil, errors.Wrap(err, "version")
	}

	if msg.Flag, err = r.ReadUint8(); err != nil {
		return nil, errors.Wrap(err, "flag")
	}

	inputCount, err := r.ReadVarInt()
	if err != nil {
		return nil, errors.Wrap(err, "input count")
	}
	if inputCount > maxElementCount {
		return nil, errors.Wrapf(ErrInvalidVarInt, "input count %d over max %d", inputCount,
			maxElementCount)
	}

	txIns := make([]TxIn, inputCount)
	msg.TxIn = make([]*TxIn, inputCount)
	for i := range msg.TxIn {
		ti := &txIns[i]
		msg.TxIn[i] = ti
		if err := readTxIn(r, ti); err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
	}

	outputCount, err := r.ReadVarInt()
	if err != nil {
		return nil, errors.Wrap(err, "output count")
	}
	if outputCount > maxElementCount {
		return nil, errors.Wrapf(ErrInvalidVarInt, "output count %d over max %d", outputCount,
			maxElementCount)
	}

	txOuts := make([]TxOut, outputCount)
	msg.TxOut = make([]*TxOut, outputCount)
	for i := range msg.TxOut {
		to := &txOuts[i]
		msg.TxOut[i] = to
		if err := readTxOut(r, to); err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
	}

	if msg.LockTime, err = r.ReadUint32(); err != nil {
		return nil, errors.Wrap(err, "lock time")
	}

	if msg.Flag&AdvancedTransactionFlag != 0 {
		for i, ti := range msg.TxIn {
			if err := readTxInWitness(r, ti); err != nil {
				return nil, errors.Wrapf(err, "input witness %d", i)
			}
		}

		for i, to := range msg.TxOut {
			if err := readTxOutWitness(r, to); err != nil {
				return nil, errors.Wrapf(err, "output witness %d", i)
			}
		}
	}

	if !nonStrict && r.Remaining() != 0 {
		return nil, errors.Wrapf(ErrTrailingBytes, "%d bytes", r.Remaining())
	}

	return msg, nil
}

// readTxIn reads the next sequence of bytes from r as a transaction input (TxIn).
func readTxIn(r *Reader, ti *TxIn) error {
	var err error
	if ti.PreviousOutPoint.Hash, err = r.ReadHash32(); err != nil {
		return errors.Wrap(err, "prev hash")
	}

	index, err := r.ReadUint32()
	if err != nil {
		return errors.Wrap(err, "prev index")
	}

	script, err := r.ReadVarSlice()
	if err != nil {
		return errors.Wrap(err, "unlocking script")
	}
	ti.UnlockingScript = bitcoin.Script(script)

	if ti.Sequence, err = r.ReadUint32(); err != nil {
		return errors.Wrap(err, "sequence")
	}

	if index != MaxPrevOutIndex {
		if index&OutpointIssuanceFlag != 0 {
			if ti.Issuance, err = r.ReadIssuance(); err != nil {
				return errors.Wrap(err, "issuance")
			}
		}

		ti.IsPegIn = index&OutpointPeginFlag != 0
		index &= OutpointIndexMask
	}

	ti.PreviousOutPoint.Index = index
	return nil
}

// readTxOut reads the next sequence of bytes from r as a transaction output (TxOut).
func readTxOut(r *Reader, to *TxOut) error {
	var err error
	if to.Asset, err = r.ReadConfidentialAsset(); err != nil {
		return err
	}

	if to.Value, err = r.ReadConfidentialValue(); err != nil {
		return err
	}

	if to.Nonce, err = r.ReadConfidentialNonce(); err != nil {
		return err
	}

	script, err := r.ReadVarSlice()
	if err != nil {
		return errors.Wrap(err, "locking script")
	}
	to.LockingScript = bitcoin.Script(script)

	return nil
}

func readTxInWitness(r *Reader, ti *TxIn) error {
	var err error
	if ti.IssuanceRangeProof, err = r.ReadVarSlice(); err != nil {
		return errors.Wrap(err, "issuance range proof")
	}

	if ti.InflationRangeProof, err = r.ReadVarSlice(); err != nil {
		return errors.Wrap(err, "inflation range proof")
	}

	if ti.Witness, err = r.ReadVector(); err != nil {
		return errors.Wrap(err, "witness")
	}

	if ti.PeginWitness, err = r.ReadVector(); err != nil {
		return errors.Wrap(err, "pegin witness")
	}

	return nil
}

func readTxOutWitness(r *Reader, to *TxOut) error {
	var err error
	if to.SurjectionProof, err = r.ReadVarSlice(); err != nil {
		return errors.Wrap(err, "surjection proof")
	}

	if to.RangeProof, err = r.ReadVarSlice(); err != nil {
		return errors.Wrap(err, "range proof")
	}

	return nil
}

// serialize encodes the transaction with the requested modifiers.
//
//   - allowWitness false emits only the pre-extension body: no flag byte, no suffix.
//   - forceZeroFlag forces the flag byte to zero and omits the suffix even when witness data is
//     present. Used by the id computation.
//   - forSignature omits the flag byte and, when witness data is present, replaces each output
//     value with an absent marker followed by a zero 64 bit amount. Used by the legacy signature
//     hash.
func (msg *MsgTx) serialize(allowWitness, forceZeroFlag, forSignature bool) []byte {
	hasWitnesses := msg.HasWitnesses()
	emitWitness := allowWitness && !forceZeroFlag && hasWitnesses

	w := NewWriter(msg.serializeSize(allowWitness, forceZeroFlag, forSignature))

	w.WriteInt32(msg.Version)

	if allowWitness && !forSignature {
		if emitWitness {
			w.WriteUint8(AdvancedTransactionFlag)
		} else {
			w.WriteUint8(0x00)
		}
	}

	w.WriteVarInt(uint64(len(msg.TxIn)))
	for _, ti := range msg.TxIn {
		writeTxIn(w, ti)
	}

	blankValue := forSignature && hasWitnesses
	w.WriteVarInt(uint64(len(msg.TxOut)))
	for _, to := range msg.TxOut {
		writeTxOut(w, to, blankValue)
	}

	w.WriteUint32(msg.LockTime)

	if emitWitness {
		for _, ti := range msg.TxIn {
			w.WriteVarSlice(ti.IssuanceRangeProof)
			w.WriteVarSlice(ti.InflationRangeProof)
			w.WriteVector(ti.Witness)
			w.WriteVector(ti.PeginWitness)
		}

		for _, to := range msg.TxOut {
			w.WriteVarSlice(to.SurjectionProof)
			w.WriteVarSlice(to.RangeProof)
		}
	}

	return w.Bytes()
}

// writeTxIn encodes ti to the wire encoding of a transaction input, packing the issuance and
// peg-in flag bits into the outpoint index. The coinbase sentinel index is written unmasked.
func writeTxIn(w *Writer, ti *TxIn) {
	index := ti.PreviousOutPoint.Index
	hasIssuance := ti.Issuance != nil && index != MaxPrevOutIndex
	if index != MaxPrevOutIndex {
		if hasIssuance {
			index |= OutpointIssuanceFlag
		}
		if ti.IsPegIn {
			index |= OutpointPeginFlag
		}
	}

	w.WriteHash32(ti.PreviousOutPoint.Hash)
	w.WriteUint32(index)
	w.WriteVarSlice(ti.UnlockingScript)
	w.WriteUint32(ti.Sequence)

	if hasIssuance {
		w.WriteIssuance(ti.Issuance)
	}
}

// writeTxOut encodes to into the wire encoding of a transaction output.
func writeTxOut(w *Writer, to *TxOut, blankValue bool) {
	w.WriteConfidentialAsset(to.Asset)

	if blankValue {
		w.WriteUint8(0x00)
		w.WriteUint64(0)
	} else {
		w.WriteConfidentialValue(to.Value)
	}

	w.WriteConfidentialNonce(to.Nonce)
	w.WriteVarSlice(to.LockingScript)
}

func (msg *MsgTx) serializeSize(allowWitness, forceZeroFlag, forSignature bool) int {
	hasWitnesses := msg.HasWitnesses()

	// Version 4 bytes + LockTime 4 bytes + serialized varint size for the number of transaction
	// inputs and outputs.
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) +
		VarIntSerializeSize(uint64(len(msg.TxOut)))

	if allowWitness && !forSignature {
		n++ // flag byte
	}

	for _, ti := range msg.TxIn {
		n += ti.SerializeSize()
	}

	blankValue := forSignature && hasWitnesses
	for _, to := range msg.TxOut {
		n += to.serializeSize(blankValue)
	}

	if allowWitness && !forceZeroFlag && hasWitnesses {
		for _, ti := range msg.TxIn {
			n += ti.WitnessSerializeSize()
		}

		for _, to := range msg.TxOut {
			n += to.WitnessSerializeSize()
		}
	}

	return n
}

// SerializeSize returns the number of bytes it would take to serialize the transaction with its
// witness and proof suffix.
func (msg *MsgTx) SerializeSize() int {
	return msg.serializeSize(true, false, false)
}

// BaseSize returns the number of bytes it would take to serialize the transaction body without
// the flag byte or witness suffix.
func (msg *MsgTx) BaseSize() int {
	return msg.serializeSize(false, false, false)
}

// Weight returns the transaction weight: base bytes count WitnessScaleFactor times, witness
// bytes once.
func (msg *MsgTx) Weight() int {
	return msg.BaseSize()*(WitnessScaleFactor-1) + msg.SerializeSize()
}

// VirtualSize returns the weight expressed in scaled bytes, rounded up.
func (msg *MsgTx) VirtualSize() int {
	return (msg.Weight() + WitnessScaleFactor - 1) / WitnessScaleFactor
}

// Bytes returns the byte encoded form of the tx including the witness and proof suffix.
func (msg *MsgTx) Bytes() []byte {
	return msg.serialize(true, false, false)
}

// BytesNoWitness returns the byte encoded form of the transaction body only.
func (msg *MsgTx) BytesNoWitness() []byte {
	return msg.serialize(false, false, false)
}

// SignatureBytes returns the byte encoded form used by the legacy signature hash: no flag byte
// and, when witness data is present, blanked output values.
func (msg *MsgTx) SignatureBytes() []byte {
	return msg.serialize(false, false, true)
}

// Serialize encodes the transaction to w including the witness and proof suffix.
func (msg *MsgTx) Serialize(w io.Writer) error {
	_, err := w.Write(msg.Bytes())
	return err
}

// SerializeNoWitness encodes the transaction body to w.
func (msg *MsgTx) SerializeNoWitness(w io.Writer) error {
	_, err := w.Write(msg.BytesNoWitness())
	return err
}

// Deserialize decodes a transaction from r. The reader is consumed to its end and the content
// must contain exactly one transaction.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	tx, err := DeserializeTx(b)
	if err != nil {
		return err
	}

	*msg = *tx
	return nil
}

// MarshalText implements encoding.TextMarshaler for json and other text encoding packages.
func (msg MsgTx) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(msg.Bytes())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for json and other text encoding packages.
func (msg *MsgTx) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return errors.Wrap(err, "decode hex")
	}

	tx, err := DeserializeTx(b)
	if err != nil {
		return errors.Wrap(err, "deserialize tx")
	}

	*msg = *tx
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler for binary encoding packages.
func (msg MsgTx) MarshalBinary() ([]byte, error) {
	return msg.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for binary encoding packages.
func (msg *MsgTx) UnmarshalBinary(b []byte) error {
	tx, err := DeserializeTx(b)
	if err != nil {
		return errors.Wrap(err, "deserialize tx")
	}

	*msg = *tx
	return nil
}

func (msg *MsgTx) String() string {
	result := fmt.Sprintf("TxId: %s (%d bytes)\n", msg.TxHash(), msg.SerializeSize())
	result += fmt.Sprintf("  Version: %d\n", msg.Version)
	result += "  Inputs:\n\n"
	for _, input := range msg.TxIn {
		result += fmt.Sprintf("    Outpoint: %d - %s\n", input.PreviousOutPoint.Index,
			input.PreviousOutPoint.Hash.String())
		result += fmt.Sprintf("    Script: %s\n", input.UnlockingScript)
		result += fmt.Sprintf("    Sequence: %x\n", input.Sequence)
		if input.IsPegIn {
			result += "    PegIn\n"
		}
		if input.Issuance != nil {
			result += fmt.Sprintf("    Issuance Entropy: %s\n", input.Issuance.AssetEntropy)
			result += fmt.Sprintf("    Issuance Amount: %x\n", []byte(input.Issuance.AssetAmount))
			result += fmt.Sprintf("    Issuance Token: %x\n", []byte(input.Issuance.TokenAmount))
		}
		result += "\n"
	}
	result += "  Outputs:\n\n"
	for _, output := range msg.TxOut {
		result += fmt.Sprintf("    Asset: %x\n", []byte(output.Asset))
		if output.Value.IsExplicit() {
			result += fmt.Sprintf("    Value: %.08f\n", float64(output.Value.Amount())/100000000.0)
		} else {
			result += fmt.Sprintf("    Value: %x\n", []byte(output.Value))
		}
		result += fmt.Sprintf("    Script: %s\n\n", output.LockingScript)
	}
	result += fmt.Sprintf("  LockTime: %d\n", msg.LockTime)
	return result
}
