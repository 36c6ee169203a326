package feecalc

import (
	"testing"

	"github.com/rawblock/confidential-verifier/pkg/confidential"
)

func explicitOut(assetID byte, value int64, script []byte) confidential.TxOut {
	return confidential.TxOut{
		Asset:  confidential.AssetField{Kind: confidential.Explicit, ID: confidential.AssetID{assetID}},
		Value:  confidential.ValueField{Kind: confidential.Explicit, Explicit: value},
		Script: script,
	}
}

func TestGetFeeMapSumsByAsset(t *testing.T) {
	tx := confidential.Transaction{
		Outputs: []confidential.TxOut{
			explicitOut(1, 100, nil),
			explicitOut(1, 50, nil),
			explicitOut(2, 10, nil),
			explicitOut(1, 999, []byte{0x51}), // not a fee output: has a script
		},
	}
	fees := GetFeeMap(tx)
	if fees[confidential.AssetID{1}] != 150 {
		t.Errorf("asset 1 fee = %d, want 150", fees[confidential.AssetID{1}])
	}
	if fees[confidential.AssetID{2}] != 10 {
		t.Errorf("asset 2 fee = %d, want 10", fees[confidential.AssetID{2}])
	}
}

func TestHasValidFeeRejectsZeroAmount(t *testing.T) {
	tx := confidential.Transaction{Outputs: []confidential.TxOut{explicitOut(1, 0, nil)}}
	if HasValidFee(tx) {
		t.Errorf("expected a zero-amount fee output to be rejected")
	}
}

func TestHasValidFeeRejectsOutOfRange(t *testing.T) {
	tx := confidential.Transaction{Outputs: []confidential.TxOut{explicitOut(1, confidential.MaxMoney+1, nil)}}
	if HasValidFee(tx) {
		t.Errorf("expected an out-of-range fee amount to be rejected")
	}
}

func TestHasValidFeeAcceptsValidFees(t *testing.T) {
	tx := confidential.Transaction{Outputs: []confidential.TxOut{
		explicitOut(1, 100, nil),
		explicitOut(1, 200, nil),
	}}
	if !HasValidFee(tx) {
		t.Errorf("expected valid fee outputs to pass")
	}
}

func TestVerifyCoinbaseAmountRejectsWitnessData(t *testing.T) {
	tx := confidential.Transaction{
		Outputs: []confidential.TxOut{explicitOut(1, 100, nil)},
		Witness: confidential.Witness{
			Outputs: []confidential.OutputWitness{{Rangeproof: []byte{1}}},
		},
	}
	ok, err := VerifyCoinbaseAmount(tx, FeeMap{confidential.AssetID{1}: 100})
	if err == nil || ok {
		t.Errorf("expected coinbase witness data to be rejected, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyCoinbaseAmountRejectsNonExplicitOutput(t *testing.T) {
	tx := confidential.Transaction{
		Outputs: []confidential.TxOut{{
			Asset: confidential.AssetField{Kind: confidential.Commitment},
			Value: confidential.ValueField{Kind: confidential.Explicit, Explicit: 100},
		}},
	}
	ok, err := VerifyCoinbaseAmount(tx, FeeMap{})
	if err == nil || ok {
		t.Errorf("expected a non-explicit coinbase output to be rejected")
	}
}

func TestVerifyCoinbaseAmountRejectsSpendableZeroValue(t *testing.T) {
	tx := confidential.Transaction{
		Outputs: []confidential.TxOut{explicitOut(1, 0, []byte{0x51})},
	}
	ok, err := VerifyCoinbaseAmount(tx, FeeMap{})
	if err == nil || ok {
		t.Errorf("expected a spendable zero-value coinbase output to be rejected")
	}
}

func TestVerifyCoinbaseAmountAllowsUnspendableZeroValue(t *testing.T) {
	tx := confidential.Transaction{
		Outputs: []confidential.TxOut{explicitOut(1, 0, []byte{0x6a, 0x00})},
	}
	ok, err := VerifyCoinbaseAmount(tx, FeeMap{confidential.AssetID{1}: 0})
	if err != nil || !ok {
		t.Errorf("expected an unspendable zero-value output to pass, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyCoinbaseAmountRejectsPremine(t *testing.T) {
	tx := confidential.Transaction{
		Outputs: []confidential.TxOut{explicitOut(1, 1000, nil)},
	}
	// Only 100 in fees were collected, but the coinbase pays out 1000.
	ok, err := VerifyCoinbaseAmount(tx, FeeMap{confidential.AssetID{1}: 100})
	if err == nil || ok {
		t.Errorf("expected a coinbase output exceeding collected fees to be rejected")
	}
}

func TestVerifyCoinbaseAmountAcceptsExactFees(t *testing.T) {
	tx := confidential.Transaction{
		Outputs: []confidential.TxOut{explicitOut(1, 100, []byte{0x51})},
	}
	ok, err := VerifyCoinbaseAmount(tx, FeeMap{confidential.AssetID{1}: 100})
	if err != nil || !ok {
		t.Errorf("expected a coinbase output exactly spending collected fees to pass, got ok=%v err=%v", ok, err)
	}
}

func TestDiscountedVirtualSizeSubtractsWitnessForConfidentialOutputs(t *testing.T) {
	tx := confidential.Transaction{
		SerializedNoWitnessSize: 200,
		SerializedSize:          250,
		Outputs: []confidential.TxOut{
			{
				Asset: confidential.AssetField{Kind: confidential.Commitment},
				Value: confidential.ValueField{Kind: confidential.Commitment},
			},
		},
		Witness: confidential.Witness{
			Outputs: []confidential.OutputWitness{{Rangeproof: make([]byte, 40)}},
		},
	}
	got, err := DiscountedVirtualSize(tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	weight := 200*3 + 250 - 40
	want := (int64(weight) + 3) / 4
	if got != want {
		t.Errorf("DiscountedVirtualSize() = %d, want %d", got, want)
	}
}

func TestDiscountedVirtualSizeErrorsOnMissingWitnessSlot(t *testing.T) {
	tx := confidential.Transaction{
		SerializedNoWitnessSize: 200,
		SerializedSize:          250,
		Outputs: []confidential.TxOut{
			{
				Asset: confidential.AssetField{Kind: confidential.Commitment},
				Value: confidential.ValueField{Kind: confidential.Commitment},
			},
		},
	}
	if _, err := DiscountedVirtualSize(tx); err == nil {
		t.Errorf("expected an error when a confidential output has no witness slot")
	}
}

func TestDiscountedVirtualSizeSkipsFeeOutputs(t *testing.T) {
	tx := confidential.Transaction{
		SerializedNoWitnessSize: 100,
		SerializedSize:          120,
		Outputs:                 []confidential.TxOut{explicitOut(1, 10, nil)},
	}
	got, err := DiscountedVirtualSize(tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	weight := 100*3 + 120
	want := (int64(weight) + 3) / 4
	if got != want {
		t.Errorf("DiscountedVirtualSize() = %d, want %d", got, want)
	}
}

func TestDiscountedVirtualSizeErrorsOnNonPositiveWeight(t *testing.T) {
	tx := confidential.Transaction{
		SerializedNoWitnessSize: 0,
		SerializedSize:          0,
	}
	if _, err := DiscountedVirtualSize(tx); err == nil {
		t.Errorf("expected an error for non-positive weight")
	}
}
