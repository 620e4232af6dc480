package wire

import (
	"encoding/binary"

	"github.com/SequentiaSEQ/sequentia-lib/bitcoin"

	"github.com/pkg/errors"
)

// Confidential field prefixes. The first byte of each field selects between an explicit value, a
// commitment, or an absent marker, and determines the field's width on the wire.
const (
	ConfidentialExplicitPrefix = uint8(0x01)

	ConfidentialValueCommitted0 = uint8(0x08)
	ConfidentialValueCommitted1 = uint8(0x09)

	ConfidentialAssetCommitted0 = uint8(0x0a)
	ConfidentialAssetCommitted1 = uint8(0x0b)

	ConfidentialNonceCommitted0 = uint8(0x02)
	ConfidentialNonceCommitted1 = uint8(0x03)

	// confidentialCommitmentSize is the width of a committed field including its prefix byte.
	confidentialCommitmentSize = 33

	// confidentialExplicitValueSize is the width of an explicit value: prefix byte plus a big
	// endian 64 bit amount.
	confidentialExplicitValueSize = 9
)

// ConfidentialAsset is an asset field including its prefix byte: an explicit asset id or an asset
// commitment. The commitment internals are opaque to the codec; serialization emits the stored
// bytes verbatim.
type ConfidentialAsset bitcoin.Hex

// ConfidentialValue is a value field including its prefix byte: an explicit big endian amount, a
// value commitment, or a single zero byte when absent.
type ConfidentialValue bitcoin.Hex

// ConfidentialNonce is a nonce field including its prefix byte, or a single zero byte when absent.
type ConfidentialNonce bitcoin.Hex

// NewExplicitAsset returns the explicit encoding of an asset id.
func NewExplicitAsset(assetID bitcoin.Hash32) ConfidentialAsset {
	result := make(ConfidentialAsset, 0, confidentialCommitmentSize)
	result = append(result, ConfidentialExplicitPrefix)
	return append(result, assetID[:]...)
}

// NewExplicitValue returns the explicit encoding of an amount. Explicit amounts are big endian,
// unlike every other integer in the transaction.
func NewExplicitValue(amount uint64) ConfidentialValue {
	result := make(ConfidentialValue, confidentialExplicitValueSize)
	result[0] = ConfidentialExplicitPrefix
	binary.BigEndian.PutUint64(result[1:], amount)
	return result
}

// NilValue is the single byte encoding of an absent value.
func NilValue() ConfidentialValue {
	return ConfidentialValue{0x00}
}

// NilNonce is the single byte encoding of an absent nonce.
func NilNonce() ConfidentialNonce {
	return ConfidentialNonce{0x00}
}

// IsExplicit returns true when the value carries a cleartext amount.
func (v ConfidentialValue) IsExplicit() bool {
	return len(v) == confidentialExplicitValueSize && v[0] == ConfidentialExplicitPrefix
}

// Amount returns the cleartext amount of an explicit value, or zero when the value is committed
// or absent.
func (v ConfidentialValue) Amount() uint64 {
	if !v.IsExplicit() {
		return 0
	}
	return binary.BigEndian.Uint64(v[1:])
}

// IsExplicit returns true when the asset carries a cleartext asset id.
func (a ConfidentialAsset) IsExplicit() bool {
	return len(a) == confidentialCommitmentSize && a[0] == ConfidentialExplicitPrefix
}

func (a ConfidentialAsset) Copy() ConfidentialAsset {
	return ConfidentialAsset(copyBytes(a))
}

func (v ConfidentialValue) Copy() ConfidentialValue {
	return ConfidentialValue(copyBytes(v))
}

func (n ConfidentialNonce) Copy() ConfidentialNonce {
	return ConfidentialNonce(copyBytes(n))
}

// Issuance is the per input record minting new asset units. It is carried inline when the top bit
// of the outpoint index is set on the wire.
type Issuance struct {
	AssetBlindingNonce bitcoin.Hash32    `json:"asset_blinding_nonce"`
	AssetEntropy       bitcoin.Hash32    `json:"asset_entropy"`
	AssetAmount        ConfidentialValue `json:"asset_amount"`
	TokenAmount        ConfidentialValue `json:"token_amount"`
}

// SerializeSize returns the number of bytes it would take to serialize the issuance record.
func (issue *Issuance) SerializeSize() int {
	return 2*bitcoin.Hash32Size + confidentialValueSize(issue.AssetAmount) +
		confidentialValueSize(issue.TokenAmount)
}

func (issue *Issuance) Copy() *Issuance {
	return &Issuance{
		AssetBlindingNonce: issue.AssetBlindingNonce.Copy(),
		AssetEntropy:       issue.AssetEntropy.Copy(),
		AssetAmount:        ConfidentialValue(copyBytes(issue.AssetAmount)),
		TokenAmount:        ConfidentialValue(copyBytes(issue.TokenAmount)),
	}
}

// ReadConfidentialAsset reads an asset field. A recognized prefix is followed by a 32 byte body;
// any other prefix is a single byte marker.
func (r *Reader) ReadConfidentialAsset() (ConfidentialAsset, error) {
	b, err := r.readConfidentialField(func(prefix uint8) int {
		switch prefix {
		case ConfidentialExplicitPrefix, ConfidentialAssetCommitted0, ConfidentialAssetCommitted1:
			return confidentialCommitmentSize
		default:
			return 1
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "asset")
	}
	return ConfidentialAsset(b), nil
}

// ReadConfidentialValue reads a value field. An explicit prefix is followed by an 8 byte amount, a
// commitment prefix by a 32 byte body, and any other prefix is a single byte marker.
func (r *Reader) ReadConfidentialValue() (ConfidentialValue, error) {
	b, err := r.readConfidentialField(func(prefix uint8) int {
		switch prefix {
		case ConfidentialExplicitPrefix:
			return confidentialExplicitValueSize
		case ConfidentialValueCommitted0, ConfidentialValueCommitted1:
			return confidentialCommitmentSize
		default:
			return 1
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "value")
	}
	return ConfidentialValue(b), nil
}

// ReadConfidentialNonce reads a nonce field. A commitment prefix is followed by a 32 byte body;
// any other prefix is a single byte marker.
func (r *Reader) ReadConfidentialNonce() (ConfidentialNonce, error) {
	b, err := r.readConfidentialField(func(prefix uint8) int {
		switch prefix {
		case ConfidentialNonceCommitted0, ConfidentialNonceCommitted1:
			return confidentialCommitmentSize
		default:
			return 1
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "nonce")
	}
	return ConfidentialNonce(b), nil
}

func (r *Reader) readConfidentialField(width func(prefix uint8) int) ([]byte, error) {
	prefix, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	result := make([]byte, 1, width(prefix))
	result[0] = prefix

	body, err := r.ReadSlice(uint64(cap(result) - 1))
	if err != nil {
		return nil, err
	}

	return append(result, body...), nil
}

// ReadIssuance reads an issuance record: the blinding nonce and entropy followed by the asset and
// token amounts. An absent amount is a single zero byte on the wire.
func (r *Reader) ReadIssuance() (*Issuance, error) {
	result := &Issuance{}
	var err error

	if result.AssetBlindingNonce, err = r.ReadHash32(); err != nil {
		return nil, errors.Wrap(err, "asset blinding nonce")
	}

	if result.AssetEntropy, err = r.ReadHash32(); err != nil {
		return nil, errors.Wrap(err, "asset entropy")
	}

	if result.AssetAmount, err = r.ReadConfidentialValue(); err != nil {
		return nil, errors.Wrap(err, "asset amount")
	}

	if result.TokenAmount, err = r.ReadConfidentialValue(); err != nil {
		return nil, errors.Wrap(err, "token amount")
	}

	return result, nil
}

// WriteConfidentialAsset writes the stored field bytes verbatim, or the absent marker when empty.
func (w *Writer) WriteConfidentialAsset(a ConfidentialAsset) {
	w.writeConfidentialField(a)
}

// WriteConfidentialValue writes the stored field bytes verbatim, or the absent marker when empty.
func (w *Writer) WriteConfidentialValue(v ConfidentialValue) {
	w.writeConfidentialField(v)
}

// WriteConfidentialNonce writes the stored field bytes verbatim, or the absent marker when empty.
func (w *Writer) WriteConfidentialNonce(n ConfidentialNonce) {
	w.writeConfidentialField(n)
}

func (w *Writer) writeConfidentialField(b []byte) {
	if len(b) == 0 {
		w.WriteUint8(0x00)
		return
	}
	w.WriteSlice(b)
}

// WriteIssuance writes an issuance record.
func (w *Writer) WriteIssuance(issue *Issuance) {
	w.WriteHash32(issue.AssetBlindingNonce)
	w.WriteHash32(issue.AssetEntropy)
	w.WriteConfidentialValue(issue.AssetAmount)
	w.WriteConfidentialValue(issue.TokenAmount)
}

func confidentialFieldSize(b []byte) int {
	if len(b) == 0 {
		return 1
	}
	return len(b)
}

func confidentialValueSize(v ConfidentialValue) int {
	return confidentialFieldSize(v)
}

func copyBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
