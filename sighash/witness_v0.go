package sighash

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/SequentiaSEQ/sequentia-lib/bitcoin"
	"github.com/SequentiaSEQ/sequentia-lib/wire"

	"github.com/pkg/errors"
)

// Cache holds previously calculated hash fragments used to calculate the v0 signature hash for
// signing transaction inputs. Reusing it across the inputs of one transaction reduces the hashing
// work from O(N^2) to O(N).
type Cache struct {
	hashPrevOuts  []byte
	hashSequence  []byte
	hashIssuances []byte
	hashOutputs   []byte
}

// Clear resets all the hashes. This should be used if anything in the transaction changes and the
// signatures need to be recalculated.
func (c *Cache) Clear() {
	c.hashPrevOuts = nil
	c.hashSequence = nil
	c.hashIssuances = nil
	c.hashOutputs = nil
}

// HashPrevOuts calculates a single hash of all the previous outputs (txid:index) referenced
// within the transaction.
func (c *Cache) HashPrevOuts(tx *wire.MsgTx) []byte {
	if c.hashPrevOuts != nil {
		return c.hashPrevOuts
	}

	var buf bytes.Buffer
	for _, ti := range tx.TxIn {
		ti.PreviousOutPoint.Serialize(&buf)
	}

	c.hashPrevOuts = bitcoin.DoubleSha256(buf.Bytes())
	return c.hashPrevOuts
}

// HashSequence computes an aggregated hash of each of the sequence numbers within the inputs of
// the transaction.
func (c *Cache) HashSequence(tx *wire.MsgTx) []byte {
	if c.hashSequence != nil {
		return c.hashSequence
	}

	var buf bytes.Buffer
	for _, ti := range tx.TxIn {
		binary.Write(&buf, binary.LittleEndian, ti.Sequence)
	}

	c.hashSequence = bitcoin.DoubleSha256(buf.Bytes())
	return c.hashSequence
}

// HashIssuances computes an aggregated hash of the issuance records within the inputs of the
// transaction. An input without an issuance contributes a single zero byte.
func (c *Cache) HashIssuances(tx *wire.MsgTx) []byte {
	if c.hashIssuances != nil {
		return c.hashIssuances
	}

	var buf bytes.Buffer
	for _, ti := range tx.TxIn {
		writeIssuanceOrNil(&buf, ti.Issuance)
	}

	c.hashIssuances = bitcoin.DoubleSha256(buf.Bytes())
	return c.hashIssuances
}

// HashOutputs computes a hash digest of all outputs created by the transaction encoded using the
// wire format.
func (c *Cache) HashOutputs(tx *wire.MsgTx) []byte {
	if c.hashOutputs != nil {
		return c.hashOutputs
	}

	var buf bytes.Buffer
	for _, to := range tx.TxOut {
		writeTxOut(&buf, to)
	}

	c.hashOutputs = bitcoin.DoubleSha256(buf.Bytes())
	return c.hashOutputs
}

// WitnessV0 computes the hash to be signed for a transaction input spending a v0 witness
// program, using the optimized digest construction with the amount commitment. The value is the
// serialized confidential value of the output being spent, covered verbatim.
func WitnessV0(tx *wire.MsgTx, index int, prevScript bitcoin.Script,
	value wire.ConfidentialValue, hashType Type, cache *Cache) (*bitcoin.Hash32, error) {

	s := sha256.New()
	if err := writeWitnessV0Preimage(s, tx, index, prevScript, value, hashType,
		cache); err != nil {
		return nil, errors.Wrap(err, "write sig hash bytes")
	}

	hash := bitcoin.Hash32(sha256.Sum256(s.Sum(nil)))
	return &hash, nil
}

// WitnessV0Preimage returns the bytes that are double hashed to produce the WitnessV0 digest.
func WitnessV0Preimage(tx *wire.MsgTx, index int, prevScript bitcoin.Script,
	value wire.ConfidentialValue, hashType Type, cache *Cache) ([]byte, error) {

	buf := &bytes.Buffer{}
	if err := writeWitnessV0Preimage(buf, tx, index, prevScript, value, hashType,
		cache); err != nil {
		return nil, errors.Wrap(err, "write sig hash bytes")
	}

	return buf.Bytes(), nil
}

func writeWitnessV0Preimage(w io.Writer, tx *wire.MsgTx, index int, prevScript bitcoin.Script,
	value wire.ConfidentialValue, hashType Type, cache *Cache) error {

	if index >= len(tx.TxIn) {
		return errors.Wrapf(wire.ErrOutOfRange, "index %d but %d txins", index, len(tx.TxIn))
	}

	binary.Write(w, binary.LittleEndian, tx.Version)

	// If anyone can pay is active only the signed input is committed to, so the aggregated input
	// hashes are zero.
	if hashType&AnyOneCanPay == 0 {
		w.Write(cache.HashPrevOuts(tx))
	} else {
		w.Write(ZeroHash[:])
	}

	if hashType&AnyOneCanPay == 0 && !isOutputType(hashType, Single) &&
		!isOutputType(hashType, None) {
		w.Write(cache.HashSequence(tx))
	} else {
		w.Write(ZeroHash[:])
	}

	if hashType&AnyOneCanPay == 0 {
		w.Write(cache.HashIssuances(tx))
	} else {
		w.Write(ZeroHash[:])
	}

	// The outpoint, locking script, value and sequence of the input being signed.
	ti := tx.TxIn[index]
	ti.PreviousOutPoint.Serialize(w)
	writeVarSlice(w, prevScript)
	w.Write(value)
	binary.Write(w, binary.LittleEndian, ti.Sequence)

	if ti.Issuance != nil {
		writeIssuance(w, ti.Issuance)
	}

	if !isOutputType(hashType, Single) && !isOutputType(hashType, None) {
		w.Write(cache.HashOutputs(tx))
	} else if isOutputType(hashType, Single) && index < len(tx.TxOut) {
		var buf bytes.Buffer
		writeTxOut(&buf, tx.TxOut[index])
		w.Write(bitcoin.DoubleSha256(buf.Bytes()))
	} else {
		w.Write(ZeroHash[:])
	}

	binary.Write(w, binary.LittleEndian, tx.LockTime)
	binary.Write(w, binary.LittleEndian, uint32(hashType))

	return nil
}

// writeVarSlice writes a varint length followed by the bytes.
func writeVarSlice(w io.Writer, b []byte) {
	writeVarInt(w, uint64(len(b)))
	w.Write(b)
}

func writeVarInt(w io.Writer, v uint64) {
	sized := wire.NewWriter(wire.VarIntSerializeSize(v))
	sized.WriteVarInt(v)
	w.Write(sized.Bytes())
}

// writeTxOut writes the wire encoding of an output: asset, value, nonce and locking script.
func writeTxOut(w io.Writer, to *wire.TxOut) {
	writeConfidentialField(w, to.Asset)
	writeConfidentialField(w, to.Value)
	writeConfidentialField(w, to.Nonce)
	writeVarSlice(w, to.LockingScript)
}

// writeConfidentialField writes the stored field bytes verbatim, or the absent marker when empty.
func writeConfidentialField(w io.Writer, b []byte) {
	if len(b) == 0 {
		w.Write([]byte{0x00})
		return
	}
	w.Write(b)
}

// writeIssuance writes the four issuance fields back to back.
func writeIssuance(w io.Writer, issue *wire.Issuance) {
	w.Write(issue.AssetBlindingNonce[:])
	w.Write(issue.AssetEntropy[:])
	writeConfidentialField(w, issue.AssetAmount)
	writeConfidentialField(w, issue.TokenAmount)
}

// writeIssuanceOrNil writes the issuance fields, or a single zero byte for an input without an
// issuance.
func writeIssuanceOrNil(w io.Writer, issue *wire.Issuance) {
	if issue == nil {
		w.Write([]byte{0x00})
		return
	}
	writeIssuance(w, issue)
}
