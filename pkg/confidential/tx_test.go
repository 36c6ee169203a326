package confidential

import "testing"

func TestOutpointBytesLittleEndianIndex(t *testing.T) {
	o := Outpoint{Index: 0x01020304}
	b := o.Bytes()
	if len(b) != 36 {
		t.Fatalf("expected 36 bytes, got %d", len(b))
	}
	if b[32] != 0x04 || b[33] != 0x03 || b[34] != 0x02 || b[35] != 0x01 {
		t.Errorf("expected little-endian index encoding, got % x", b[32:])
	}
}

func TestIssuanceRecordIsNullAndIsReissuance(t *testing.T) {
	var rec IssuanceRecord
	if !rec.IsNull() {
		t.Errorf("expected the zero-value issuance record to be null")
	}
	if rec.IsReissuance() {
		t.Errorf("a null record is never a reissuance")
	}

	rec.Amount = ValueField{Kind: Explicit, Explicit: 5}
	if rec.IsNull() {
		t.Errorf("a non-null amount should make the record non-null")
	}

	rec.BlindingNonce[0] = 1
	if !rec.IsReissuance() {
		t.Errorf("a non-zero blinding nonce should mark a reissuance")
	}
}

func TestIsFee(t *testing.T) {
	fee := TxOut{Asset: AssetField{Kind: Explicit}, Value: ValueField{Kind: Explicit, Explicit: 10}}
	if !fee.IsFee() {
		t.Errorf("expected an empty-script explicit output to be a fee output")
	}

	withScript := fee
	withScript.Script = []byte{0x51}
	if withScript.IsFee() {
		t.Errorf("a non-empty script should disqualify a fee output")
	}

	committed := TxOut{Asset: AssetField{Kind: Commitment}, Value: ValueField{Kind: Explicit, Explicit: 10}}
	if committed.IsFee() {
		t.Errorf("a committed asset should disqualify a fee output")
	}
}

func TestUnspendableScript(t *testing.T) {
	if !UnspendableScript([]byte{0x6a, 0x00}) {
		t.Errorf("expected an OP_RETURN-prefixed script to be unspendable")
	}
	if UnspendableScript([]byte{0x51}) {
		t.Errorf("expected a non-OP_RETURN script to be spendable")
	}
	if UnspendableScript(nil) {
		t.Errorf("expected an empty script to be spendable")
	}
}

func TestWitnessSlotLookup(t *testing.T) {
	w := Witness{
		Inputs: []InputWitness{{IssuanceAmountRangeproof: []byte{1}}},
	}
	if _, ok := w.InputWitnessAt(0); !ok {
		t.Errorf("expected slot 0 to exist")
	}
	if _, ok := w.InputWitnessAt(1); ok {
		t.Errorf("expected slot 1 to not exist")
	}
	if _, ok := w.OutputWitnessAt(0); ok {
		t.Errorf("expected no output witness slots in this fixture")
	}
}

func TestNumIssuancePseudoInputs(t *testing.T) {
	tx := Transaction{
		Inputs: []TxIn{
			{Issuance: IssuanceRecord{}}, // null, contributes nothing
			{Issuance: IssuanceRecord{
				Amount:        ValueField{Kind: Explicit, Explicit: 1},
				InflationKeys: ValueField{Kind: Commitment},
			}},
		},
	}
	if got := tx.NumIssuancePseudoInputs(); got != 2 {
		t.Errorf("NumIssuancePseudoInputs() = %d, want 2", got)
	}
}
