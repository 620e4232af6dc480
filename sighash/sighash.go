// Package sighash computes the digests signed by transaction input witnesses across the three
// signature hash dialects: legacy, segwit v0, and taproot v1 with the confidential asset
// extensions.
package sighash

import (
	"github.com/SequentiaSEQ/sequentia-lib/bitcoin"
	"github.com/SequentiaSEQ/sequentia-lib/wire"

	"github.com/pkg/errors"
)

// Type represents hash type bits at the end of a signature.
type Type uint32

const (
	Default      Type = 0x00 // Taproot only: same digest selection as All
	All          Type = 0x01 // Sign all inputs, all outputs
	None         Type = 0x02 // Sign all inputs, no outputs
	Single       Type = 0x03 // Sign all inputs, only the output at the same index as the input
	AnyOneCanPay Type = 0x80 // When combined, only sign the contained input

	// OutputMask extracts the output selection bits of a taproot hash type.
	OutputMask Type = 0x03

	// InputMask extracts the input selection bit.
	InputMask Type = 0x80

	// legacyMask defines the bits of the hash type which identify which outputs are signed in
	// the legacy and v0 dialects.
	legacyMask Type = 0x1f
)

var (
	// ErrMismatchedPrevouts means the v1 hash received previous output companion slices whose
	// length doesn't match the transaction's input count.
	ErrMismatchedPrevouts = errors.New("Mismatched Prevouts")

	// OneHash is the defined result of the legacy hash when the input index is past the inputs,
	// or past the outputs in single mode. A historical quirk, not an error. The value one in the
	// little endian byte order of Hash32.
	OneHash = bitcoin.Hash32{0: 0x01}

	// ZeroHash substitutes for sub hashes excluded by the hash type.
	ZeroHash bitcoin.Hash32

	// MaxValue is the verbatim eight byte value of the blank outputs that pad the single mode
	// legacy hash.
	MaxValue = wire.ConfidentialValue{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

// blankOutput is the output substituted below the signed index in the single mode legacy hash.
// The asset and nonce are raw 32 byte zeroes and the value is the raw eight byte maximum, each
// emitted without a prefix byte.
func blankOutput() *wire.TxOut {
	return &wire.TxOut{
		Asset: make(wire.ConfidentialAsset, 32),
		Value: MaxValue.Copy(),
		Nonce: make(wire.ConfidentialNonce, 32),
	}
}

func isOutputType(hashType Type, outputType Type) bool {
	return hashType&legacyMask == outputType
}
