package sighash

import (
	"github.com/SequentiaSEQ/sequentia-lib/bitcoin"
	"github.com/SequentiaSEQ/sequentia-lib/wire"

	"github.com/pkg/errors"
)

// Legacy computes the original signature hash for the input at the given index. The previous
// output's locking script is substituted for the input's script after any OP_CODESEPARATOR
// opcodes are removed.
//
// An index past the inputs, or past the outputs in single mode, returns the defined one-value
// digest instead of an error; signatures over that digest can never be valid.
func Legacy(tx *wire.MsgTx, index int, prevScript bitcoin.Script,
	hashType Type) (*bitcoin.Hash32, error) {

	if index >= len(tx.TxIn) {
		result := OneHash.Copy()
		return &result, nil
	}

	cleanScript, err := prevScript.RemoveOpCode(bitcoin.OP_CODESEPARATOR)
	if err != nil {
		return nil, errors.Wrap(err, "clean script")
	}

	txCopy := tx.Copy()

	switch {
	case isOutputType(hashType, None):
		// Wildcard payee. None of the outputs are signed.
		txCopy.TxOut = nil

		for i, ti := range txCopy.TxIn {
			if i != index {
				ti.Sequence = 0
			}
		}

	case isOutputType(hashType, Single):
		// Only the output paired with the signed input is signed.
		if index >= len(tx.TxOut) {
			result := OneHash.Copy()
			return &result, nil
		}

		txCopy.TxOut = txCopy.TxOut[:index+1]
		for i := 0; i < index; i++ {
			txCopy.TxOut[i] = blankOutput()
		}

		for i, ti := range txCopy.TxIn {
			if i != index {
				ti.Sequence = 0
			}
		}
	}

	if hashType&AnyOneCanPay != 0 {
		// Only the signed input is committed to.
		txCopy.TxIn = txCopy.TxIn[index : index+1]
		txCopy.TxIn[0].UnlockingScript = cleanScript
	} else {
		for _, ti := range txCopy.TxIn {
			ti.UnlockingScript = nil
		}
		txCopy.TxIn[index].UnlockingScript = cleanScript
	}

	preimage := txCopy.SignatureBytes()
	preimage = append(preimage, byte(hashType), byte(hashType>>8), byte(hashType>>16),
		byte(hashType>>24))

	result, err := bitcoin.NewHash32(bitcoin.DoubleSha256(preimage))
	if err != nil {
		return nil, err
	}

	return result, nil
}
