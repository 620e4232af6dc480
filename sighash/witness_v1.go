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

// taprootSighashTag domain-separates the taproot signature hash for this chain family.
const taprootSighashTag = "TapSighash/elements"

// SpentOutput carries the asset and value fields of a previous output being spent, both in their
// serialized confidential encodings.
type SpentOutput struct {
	Asset wire.ConfidentialAsset
	Value wire.ConfidentialValue
}

// WitnessV1 computes the tagged hash to be signed for a transaction input spending a taproot
// output. The previous output scripts and asset/value pairs of every input must be supplied. The
// leaf hash is present for script path spends and the annex when the witness carries one.
//
// The genesis block hash pins signatures to one chain.
func WitnessV1(tx *wire.MsgTx, index int, prevScripts []bitcoin.Script,
	spentOutputs []SpentOutput, hashType Type, genesisHash bitcoin.Hash32,
	leafHash *bitcoin.Hash32, annex []byte) (*bitcoin.Hash32, error) {

	preimage, err := WitnessV1Preimage(tx, index, prevScripts, spentOutputs, hashType,
		genesisHash, leafHash, annex)
	if err != nil {
		return nil, err
	}

	result, err := bitcoin.NewHash32(bitcoin.TaggedSha256(taprootSighashTag, preimage))
	if err != nil {
		return nil, err
	}

	return result, nil
}

// WitnessV1Preimage returns the bytes that are tag hashed to produce the WitnessV1 digest.
func WitnessV1Preimage(tx *wire.MsgTx, index int, prevScripts []bitcoin.Script,
	spentOutputs []SpentOutput, hashType Type, genesisHash bitcoin.Hash32,
	leafHash *bitcoin.Hash32, annex []byte) ([]byte, error) {

	if len(prevScripts) != len(tx.TxIn) {
		return nil, errors.Wrapf(ErrMismatchedPrevouts, "%d scripts but %d txins",
			len(prevScripts), len(tx.TxIn))
	}
	if len(spentOutputs) != len(tx.TxIn) {
		return nil, errors.Wrapf(ErrMismatchedPrevouts, "%d spent outputs but %d txins",
			len(spentOutputs), len(tx.TxIn))
	}
	if index >= len(tx.TxIn) {
		return nil, errors.Wrapf(wire.ErrOutOfRange, "index %d but %d txins", index,
			len(tx.TxIn))
	}

	outputType := All
	if hashType != Default {
		outputType = hashType & OutputMask
	}
	isAnyOneCanPay := hashType&InputMask == AnyOneCanPay
	isNone := outputType == None
	isSingle := outputType == Single

	if isSingle && index >= len(tx.TxOut) {
		return nil, errors.Wrapf(wire.ErrOutOfRange, "single index %d but %d txouts", index,
			len(tx.TxOut))
	}

	buf := &bytes.Buffer{}

	// Two copies pin the chain's genesis hash into every digest.
	buf.Write(genesisHash[:])
	buf.Write(genesisHash[:])

	buf.WriteByte(byte(hashType))
	binary.Write(buf, binary.LittleEndian, tx.Version)
	binary.Write(buf, binary.LittleEndian, tx.LockTime)

	if !isAnyOneCanPay {
		writeSha256(buf, func(w io.Writer) {
			for _, ti := range tx.TxIn {
				w.Write([]byte{outpointFlag(ti)})
			}
		})
		writeSha256(buf, func(w io.Writer) {
			for _, ti := range tx.TxIn {
				ti.PreviousOutPoint.Serialize(w)
			}
		})
		writeSha256(buf, func(w io.Writer) {
			for _, spent := range spentOutputs {
				writeConfidentialField(w, spent.Asset)
				writeConfidentialField(w, spent.Value)
			}
		})
		writeSha256(buf, func(w io.Writer) {
			for i := range tx.TxIn {
				writeVarSlice(w, prevScripts[i])
			}
		})
		writeSha256(buf, func(w io.Writer) {
			for _, ti := range tx.TxIn {
				binary.Write(w, binary.LittleEndian, ti.Sequence)
			}
		})
		writeSha256(buf, func(w io.Writer) {
			for _, ti := range tx.TxIn {
				writeIssuanceOrNil(w, ti.Issuance)
			}
		})
		writeSha256(buf, func(w io.Writer) {
			for _, ti := range tx.TxIn {
				writeVarSlice(w, ti.IssuanceRangeProof)
				writeVarSlice(w, ti.InflationRangeProof)
			}
		})
	}

	// The output hashes cover every output, or only the paired output in single mode. They are
	// written here for the all mode and again near the tail for single mode.
	var shaOutputs, shaOutputWitnesses []byte
	if !isNone && !isSingle {
		shaOutputs, shaOutputWitnesses = outputHashes(tx.TxOut)
		buf.Write(shaOutputs)
		buf.Write(shaOutputWitnesses)
	} else if isSingle {
		shaOutputs, shaOutputWitnesses = outputHashes(tx.TxOut[index : index+1])
	}

	spendType := byte(0)
	if leafHash != nil {
		spendType += 2
	}
	if annex != nil {
		spendType++
	}
	buf.WriteByte(spendType)

	if isAnyOneCanPay {
		ti := tx.TxIn[index]
		buf.WriteByte(outpointFlag(ti))
		ti.PreviousOutPoint.Serialize(buf)
		writeConfidentialField(buf, spentOutputs[index].Asset)
		writeConfidentialField(buf, spentOutputs[index].Value)
		writeVarSlice(buf, prevScripts[index])
		binary.Write(buf, binary.LittleEndian, ti.Sequence)

		if ti.Issuance != nil {
			writeIssuance(buf, ti.Issuance)

			proofs := &bytes.Buffer{}
			writeVarSlice(proofs, ti.IssuanceRangeProof)
			writeVarSlice(proofs, ti.InflationRangeProof)
			buf.Write(bitcoin.Sha256(proofs.Bytes()))
		} else {
			buf.WriteByte(0x00)
		}
	} else {
		binary.Write(buf, binary.LittleEndian, uint32(index))
	}

	if annex != nil {
		annexBuf := &bytes.Buffer{}
		writeVarSlice(annexBuf, annex)
		buf.Write(bitcoin.Sha256(annexBuf.Bytes()))
	}

	if isSingle {
		buf.Write(shaOutputs)
		buf.Write(shaOutputWitnesses)
	}

	if leafHash != nil {
		buf.Write(leafHash[:])
		buf.WriteByte(0x00)                                       // key version
		binary.Write(buf, binary.LittleEndian, uint32(0xffffffff)) // code separator position
	}

	return buf.Bytes(), nil
}

// outpointFlag packs the issuance and peg-in markers of an input into the byte covered by the
// outpoint flag hash.
func outpointFlag(ti *wire.TxIn) byte {
	var flag byte
	if ti.Issuance != nil {
		flag |= 1 << 7
	}
	if ti.IsPegIn {
		flag |= 1 << 6
	}
	return flag
}

// outputHashes computes the single sha256 of the outputs and of their proof fields.
func outputHashes(txOuts []*wire.TxOut) ([]byte, []byte) {
	outputs := &bytes.Buffer{}
	witnesses := &bytes.Buffer{}
	for _, to := range txOuts {
		writeTxOut(outputs, to)
		writeVarSlice(witnesses, to.SurjectionProof)
		writeVarSlice(witnesses, to.RangeProof)
	}

	return bitcoin.Sha256(outputs.Bytes()), bitcoin.Sha256(witnesses.Bytes())
}

// writeSha256 writes the single sha256 of the bytes produced by fill.
func writeSha256(w io.Writer, fill func(w io.Writer)) {
	hasher := sha256.New()
	fill(hasher)
	w.Write(hasher.Sum(nil))
}
