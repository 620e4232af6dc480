package wire

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/SequentiaSEQ/sequentia-lib/bitcoin"

	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

// Serialized transaction fixtures assembled field by field. The names in the comments follow the
// wire layout.
var (
	// explicitTxHex is a one input, one output transaction with explicit asset and value and no
	// witness data.
	explicitTxHex = "02000000" + // version
		"00" + // flag
		"01" + // input count
		strings.Repeat("aa", 32) + // prev hash
		"00000000" + // prev index
		"00" + // unlocking script
		"ffffffff" + // sequence
		"01" + // output count
		"01" + strings.Repeat("bb", 32) + // asset (explicit)
		"01" + "0000000005f5e100" + // value (explicit 1e8)
		"00" + // nonce (absent)
		"02" + "5187" + // locking script
		"00000000" // lock time

	// confidentialTxBodyHex is the body of a fully blinded transaction.
	confidentialTxBodyHex = "01" + // input count
		strings.Repeat("aa", 32) + // prev hash
		"00000000" + // prev index
		"00" + // unlocking script
		"ffffffff" + // sequence
		"01" + // output count
		"0a" + strings.Repeat("cc", 32) + // asset commitment
		"08" + strings.Repeat("dd", 32) + // value commitment
		"02" + strings.Repeat("ee", 32) + // nonce commitment
		"02" + "5187" + // locking script
		"00000000" // lock time

	// confidentialTxSuffixHex is the witness and proof suffix: per input the issuance range
	// proof, inflation range proof, witness items and pegin witness items, then per output the
	// surjection proof and range proof.
	confidentialTxSuffixHex = "00" + "00" +
		"02" + "01" + "de" + "02" + "adbe" +
		"00" +
		"03" + "010203" +
		"04" + "0a0b0c0d"

	confidentialTxHex = "02000000" + "01" + confidentialTxBodyHex + confidentialTxSuffixHex

	// issuanceTxHex carries an asset issuance on its only input. The wire index packs the
	// issuance flag bit over logical index 1.
	issuanceTxHex = "02000000" + // version
		"00" + // flag
		"01" + // input count
		strings.Repeat("aa", 32) + // prev hash
		"01000080" + // prev index: issuance flag | 1
		"00" + // unlocking script
		"ffffffff" + // sequence
		strings.Repeat("00", 32) + // asset blinding nonce
		strings.Repeat("11", 32) + // asset entropy
		"01" + "00000002540be400" + // asset amount (explicit 100e8)
		"00" + // token amount (absent)
		"01" + // output count
		"01" + strings.Repeat("bb", 32) + // asset
		"01" + "0000000005f5e100" + // value
		"00" + // nonce
		"01" + "6a" + // locking script
		"00000000" // lock time

	// peginTxHex spends a peg-in deposit. The wire index packs the peg-in flag bit over logical
	// index 2.
	peginTxHex = "02000000" + "00" + "01" +
		strings.Repeat("aa", 32) +
		"02000040" + // prev index: pegin flag | 2
		"00" + "ffffffff" +
		"01" +
		"01" + strings.Repeat("bb", 32) +
		"01" + "0000000005f5e100" +
		"00" + "02" + "5187" +
		"00000000"

	// coinbaseTxHex has the all zero previous hash and the unmasked sentinel index.
	coinbaseTxHex = "02000000" + "00" + "01" +
		strings.Repeat("00", 32) +
		"ffffffff" +
		"03" + "515253" +
		"ffffffff" +
		"01" +
		"01" + strings.Repeat("bb", 32) +
		"01" + "0000000005f5e100" +
		"00" + "02" + "5187" +
		"00000000"
)

func decodeTxHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("Failed to decode tx hex : %s", err)
	}
	return b
}

func TestDeserializeByteExact(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{"explicit", explicitTxHex},
		{"confidential", confidentialTxHex},
		{"issuance", issuanceTxHex},
		{"pegin", peginTxHex},
		{"coinbase", coinbaseTxHex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := decodeTxHex(t, tt.hex)

			tx, err := DeserializeTx(b)
			if err != nil {
				t.Fatalf("Failed to deserialize tx : %s", err)
			}

			if !bytes.Equal(tx.Bytes(), b) {
				t.Fatalf("Serialization not byte exact\ngot  %x\nwant %x", tx.Bytes(), b)
			}
		})
	}
}

func TestDeserializeFields(t *testing.T) {
	t.Run("issuance", func(t *testing.T) {
		tx, err := DeserializeTx(decodeTxHex(t, issuanceTxHex))
		if err != nil {
			t.Fatalf("Failed to deserialize tx : %s", err)
		}

		ti := tx.TxIn[0]
		if ti.PreviousOutPoint.Index != 1 {
			t.Fatalf("Wrong logical index : got %d, want 1", ti.PreviousOutPoint.Index)
		}
		if ti.IsPegIn {
			t.Fatalf("Input is not a pegin")
		}
		if ti.Issuance == nil {
			t.Fatalf("Missing issuance")
		}
		if !bytes.Equal(ti.Issuance.AssetEntropy[:], bytes.Repeat([]byte{0x11}, 32)) {
			t.Fatalf("Wrong entropy : %x", ti.Issuance.AssetEntropy[:])
		}
		if amount := ti.Issuance.AssetAmount.Amount(); amount != 10000000000 {
			t.Fatalf("Wrong issuance amount : got %d, want 10000000000", amount)
		}
	})

	t.Run("pegin", func(t *testing.T) {
		tx, err := DeserializeTx(decodeTxHex(t, peginTxHex))
		if err != nil {
			t.Fatalf("Failed to deserialize tx : %s", err)
		}

		ti := tx.TxIn[0]
		if !ti.IsPegIn {
			t.Fatalf("Missing pegin flag")
		}
		if ti.PreviousOutPoint.Index != 2 {
			t.Fatalf("Wrong logical index : got %d, want 2", ti.PreviousOutPoint.Index)
		}
		if ti.Issuance != nil {
			t.Fatalf("Unexpected issuance")
		}
	})

	t.Run("coinbase sentinel", func(t *testing.T) {
		tx, err := DeserializeTx(decodeTxHex(t, coinbaseTxHex))
		if err != nil {
			t.Fatalf("Failed to deserialize tx : %s", err)
		}

		ti := tx.TxIn[0]
		if ti.PreviousOutPoint.Index != MaxPrevOutIndex {
			t.Fatalf("Sentinel index masked : got %08x", ti.PreviousOutPoint.Index)
		}
		if ti.IsPegIn || ti.Issuance != nil {
			t.Fatalf("Flags derived from sentinel index")
		}
		if !tx.IsCoinbase() {
			t.Fatalf("Coinbase not recognized")
		}
	})

	t.Run("confidential witness", func(t *testing.T) {
		tx, err := DeserializeTx(decodeTxHex(t, confidentialTxHex))
		if err != nil {
			t.Fatalf("Failed to deserialize tx : %s", err)
		}

		ti := tx.TxIn[0]
		if len(ti.Witness) != 2 || !bytes.Equal(ti.Witness[1], []byte{0xad, 0xbe}) {
			t.Fatalf("Wrong witness : %x", ti.Witness)
		}

		to := tx.TxOut[0]
		if !bytes.Equal(to.SurjectionProof, []byte{0x01, 0x02, 0x03}) {
			t.Fatalf("Wrong surjection proof : %x", []byte(to.SurjectionProof))
		}
		if !bytes.Equal(to.RangeProof, []byte{0x0a, 0x0b, 0x0c, 0x0d}) {
			t.Fatalf("Wrong range proof : %x", []byte(to.RangeProof))
		}
		if !tx.HasWitnesses() {
			t.Fatalf("Witnesses not detected")
		}
	})
}

func TestSerializeSizes(t *testing.T) {
	for _, txHex := range []string{explicitTxHex, confidentialTxHex, issuanceTxHex, peginTxHex,
		coinbaseTxHex} {

		tx, err := DeserializeTx(decodeTxHex(t, txHex))
		if err != nil {
			t.Fatalf("Failed to deserialize tx : %s", err)
		}

		total := tx.Bytes()
		if len(total) != tx.SerializeSize() {
			t.Fatalf("Wrong witness size : got %d, want %d", tx.SerializeSize(), len(total))
		}

		base := tx.BytesNoWitness()
		if len(base) != tx.BaseSize() {
			t.Fatalf("Wrong base size : got %d, want %d", tx.BaseSize(), len(base))
		}

		weight := tx.BaseSize()*3 + tx.SerializeSize()
		if tx.Weight() != weight {
			t.Fatalf("Wrong weight : got %d, want %d", tx.Weight(), weight)
		}

		virtualSize := (weight + 3) / 4
		if tx.VirtualSize() != virtualSize {
			t.Fatalf("Wrong virtual size : got %d, want %d", tx.VirtualSize(), virtualSize)
		}

		sig := tx.SignatureBytes()
		if len(sig) != tx.serializeSize(false, false, true) {
			t.Fatalf("Wrong signature size : got %d, want %d",
				tx.serializeSize(false, false, true), len(sig))
		}
	}
}

func TestTxHash(t *testing.T) {
	t.Run("non witness", func(t *testing.T) {
		// With no witness data the id serialization is the full serialization.
		b := decodeTxHex(t, explicitTxHex)
		tx, err := DeserializeTx(b)
		if err != nil {
			t.Fatalf("Failed to deserialize tx : %s", err)
		}

		want := bitcoin.DoubleSha256(b)
		if !bytes.Equal(tx.TxHash().Bytes(), want) {
			t.Fatalf("Wrong txid : got %s, want %x", tx.TxHash(), want)
		}
		if !bytes.Equal(tx.WitnessHash().Bytes(), want) {
			t.Fatalf("Wrong wtxid : got %s, want %x", tx.WitnessHash(), want)
		}
	})

	t.Run("witness", func(t *testing.T) {
		b := decodeTxHex(t, confidentialTxHex)
		tx, err := DeserializeTx(b)
		if err != nil {
			t.Fatalf("Failed to deserialize tx : %s", err)
		}

		// The id covers the body with a forced zero flag byte and no suffix.
		idBytes := decodeTxHex(t, "02000000"+"00"+confidentialTxBodyHex)
		if !bytes.Equal(tx.TxHash().Bytes(), bitcoin.DoubleSha256(idBytes)) {
			t.Fatalf("Wrong txid : %s", tx.TxHash())
		}

		// The witness id covers the full serialization.
		if !bytes.Equal(tx.WitnessHash().Bytes(), bitcoin.DoubleSha256(b)) {
			t.Fatalf("Wrong wtxid : %s", tx.WitnessHash())
		}
	})

	t.Run("coinbase wtxid is zero", func(t *testing.T) {
		tx, err := DeserializeTx(decodeTxHex(t, coinbaseTxHex))
		if err != nil {
			t.Fatalf("Failed to deserialize tx : %s", err)
		}

		if !tx.WitnessHash().IsZero() {
			t.Fatalf("Wrong coinbase wtxid : %s", tx.WitnessHash())
		}
	})
}

func TestRoundTripStructural(t *testing.T) {
	for _, txHex := range []string{explicitTxHex, confidentialTxHex, issuanceTxHex, peginTxHex,
		coinbaseTxHex} {

		first, err := DeserializeTx(decodeTxHex(t, txHex))
		if err != nil {
			t.Fatalf("Failed to deserialize tx : %s", err)
		}

		second, err := DeserializeTx(first.Bytes())
		if err != nil {
			t.Fatalf("Failed to re-deserialize tx : %s", err)
		}

		if diff := deep.Equal(first, second); diff != nil {
			t.Fatalf("Round trip not structural : %v", diff)
		}
	}
}

func TestCopy(t *testing.T) {
	for _, txHex := range []string{explicitTxHex, confidentialTxHex, issuanceTxHex} {
		tx, err := DeserializeTx(decodeTxHex(t, txHex))
		if err != nil {
			t.Fatalf("Failed to deserialize tx : %s", err)
		}

		txCopy := tx.Copy()
		if !bytes.Equal(txCopy.Bytes(), tx.Bytes()) {
			t.Fatalf("Copy serialization differs")
		}
		if !bytes.Equal(txCopy.BytesNoWitness(), tx.BytesNoWitness()) {
			t.Fatalf("Copy base serialization differs")
		}

		// Mutating the copy must not touch the original.
		original := tx.Bytes()
		txCopy.TxIn[0].Sequence = 0
		txCopy.TxOut[0].LockingScript = bitcoin.Script{bitcoin.OP_RETURN}
		if txCopy.TxIn[0].Issuance != nil {
			txCopy.TxIn[0].Issuance.AssetEntropy[0] ^= 0xff
		}
		if !bytes.Equal(tx.Bytes(), original) {
			t.Fatalf("Copy shares state with original")
		}
	}
}

func TestStrictTrailingBytes(t *testing.T) {
	b := append(decodeTxHex(t, explicitTxHex), 0x00)

	if _, err := DeserializeTx(b); errors.Cause(err) != ErrTrailingBytes {
		t.Fatalf("Wrong error : got %v, want %v", err, ErrTrailingBytes)
	}

	tx, err := DeserializeTxNonStrict(b)
	if err != nil {
		t.Fatalf("Failed non-strict deserialize : %s", err)
	}
	if !bytes.Equal(tx.Bytes(), b[:len(b)-1]) {
		t.Fatalf("Non-strict parse wrong")
	}
}

func TestDeserializeTruncated(t *testing.T) {
	b := decodeTxHex(t, confidentialTxHex)

	for _, cut := range []int{1, 5, 40, len(b) / 2, len(b) - 1} {
		if _, err := DeserializeTx(b[:cut]); errors.Cause(err) != ErrTruncated {
			t.Fatalf("Wrong error at cut %d : got %v, want %v", cut, err, ErrTruncated)
		}
	}
}

func TestAddInput(t *testing.T) {
	prevHash, _ := bitcoin.NewHash32(bytes.Repeat([]byte{0xaa}, 32))

	t.Run("issuance flag requires record", func(t *testing.T) {
		tx := NewMsgTx(TxVersion)
		_, err := tx.AddInput(*prevHash, OutpointIssuanceFlag|1, DefaultSequence, nil)
		if errors.Cause(err) != ErrMissingIssuance {
			t.Fatalf("Wrong error : got %v, want %v", err, ErrMissingIssuance)
		}
	})

	t.Run("flags unpacked", func(t *testing.T) {
		tx := NewMsgTx(TxVersion)
		issue := &Issuance{
			AssetAmount: NewExplicitValue(1000),
			TokenAmount: NilValue(),
		}

		ti, err := tx.AddInput(*prevHash, OutpointIssuanceFlag|OutpointPeginFlag|7,
			DefaultSequence, issue)
		if err != nil {
			t.Fatalf("Failed to add input : %s", err)
		}

		if ti.PreviousOutPoint.Index != 7 {
			t.Fatalf("Wrong logical index : got %d, want 7", ti.PreviousOutPoint.Index)
		}
		if !ti.IsPegIn || ti.Issuance == nil {
			t.Fatalf("Flags not unpacked")
		}
	})

	t.Run("sentinel passes through", func(t *testing.T) {
		tx := NewMsgTx(TxVersion)
		ti, err := tx.AddInput(bitcoin.Hash32{}, MaxPrevOutIndex, DefaultSequence, nil)
		if err != nil {
			t.Fatalf("Failed to add input : %s", err)
		}
		if ti.PreviousOutPoint.Index != MaxPrevOutIndex {
			t.Fatalf("Sentinel masked : %08x", ti.PreviousOutPoint.Index)
		}
	})
}

func TestFlagBitRoundTrip(t *testing.T) {
	prevHash, _ := bitcoin.NewHash32(bytes.Repeat([]byte{0xaa}, 32))
	assetID, _ := bitcoin.NewHash32(bytes.Repeat([]byte{0xbb}, 32))

	issue := &Issuance{
		AssetAmount: NewExplicitValue(1000),
		TokenAmount: NilValue(),
	}

	tests := []struct {
		name     string
		issuance *Issuance
		isPegin  bool
	}{
		{"plain", nil, false},
		{"issuance", issue, false},
		{"pegin", nil, true},
		{"issuance pegin", issue, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := NewMsgTx(TxVersion)
			tx.AddTxIn(&TxIn{
				PreviousOutPoint: OutPoint{Hash: *prevHash, Index: 5},
				Sequence:         DefaultSequence,
				IsPegIn:          tt.isPegin,
				Issuance:         tt.issuance,
			})
			tx.AddTxOut(NewTxOut(NewExplicitAsset(*assetID), NewExplicitValue(100),
				bitcoin.Script{bitcoin.OP_TRUE}))

			parsed, err := DeserializeTx(tx.Bytes())
			if err != nil {
				t.Fatalf("Failed to deserialize tx : %s", err)
			}

			ti := parsed.TxIn[0]
			if ti.PreviousOutPoint.Index != 5 {
				t.Fatalf("Wrong logical index : got %d, want 5", ti.PreviousOutPoint.Index)
			}
			if ti.IsPegIn != tt.isPegin {
				t.Fatalf("Wrong pegin flag : got %t", ti.IsPegIn)
			}
			if (ti.Issuance != nil) != (tt.issuance != nil) {
				t.Fatalf("Wrong issuance presence")
			}
		})
	}
}

func TestHasWitnessesOutputHeuristic(t *testing.T) {
	assetID, _ := bitcoin.NewHash32(bytes.Repeat([]byte{0xbb}, 32))

	tx := NewMsgTx(TxVersion)
	tx.AddTxOut(NewTxOut(NewExplicitAsset(*assetID), NewExplicitValue(100),
		bitcoin.Script{bitcoin.OP_TRUE}))

	if tx.HasWitnesses() {
		t.Fatalf("Empty output treated as witnessed")
	}

	// An output counts as witnessed only when both proofs are populated.
	tx.TxOut[0].RangeProof = []byte{0x01}
	if tx.HasWitnesses() {
		t.Fatalf("Output with only a range proof treated as witnessed")
	}

	tx.TxOut[0].SurjectionProof = []byte{0x02}
	if !tx.HasWitnesses() {
		t.Fatalf("Output with both proofs not treated as witnessed")
	}
}

func TestMarshalers(t *testing.T) {
	tx, err := DeserializeTx(decodeTxHex(t, explicitTxHex))
	if err != nil {
		t.Fatalf("Failed to deserialize tx : %s", err)
	}

	text, err := tx.MarshalText()
	if err != nil {
		t.Fatalf("Failed to marshal text : %s", err)
	}
	if string(text) != explicitTxHex {
		t.Fatalf("Wrong marshaled text : %s", text)
	}

	var read MsgTx
	if err := read.UnmarshalText(text); err != nil {
		t.Fatalf("Failed to unmarshal text : %s", err)
	}
	if !bytes.Equal(read.Bytes(), tx.Bytes()) {
		t.Fatalf("Text round trip differs")
	}

	var readBinary MsgTx
	if err := readBinary.UnmarshalBinary(tx.Bytes()); err != nil {
		t.Fatalf("Failed to unmarshal binary : %s", err)
	}
	if !bytes.Equal(readBinary.Bytes(), tx.Bytes()) {
		t.Fatalf("Binary round trip differs")
	}
}
