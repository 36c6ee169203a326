// Package feecalc aggregates per-asset transaction fees, validates coinbase
// outputs against a fee map, and computes the discounted virtual size used
// for confidential-transaction fee policy (spec §4.F). Grounded on
// confidential_validation.cpp's HasValidFee/GetFeeMap/VerifyCoinbaseAmount
// and policy/discount.h's GetDiscountedVirtualTransactionSize.
package feecalc

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/rawblock/confidential-verifier/pkg/confidential"
)

// witnessScaleFactor is the hosting chain's weight unit: four weight units
// per serialized byte outside the witness, one inside it.
const witnessScaleFactor = 4

// FeeMap is the per-asset sum of a transaction's explicit fee-output
// amounts.
type FeeMap map[confidential.AssetID]int64

// GetFeeMap sums every fee output's explicit amount, grouped by asset id
// (spec §4.F). Outputs that are not fee outputs are ignored.
func GetFeeMap(tx confidential.Transaction) FeeMap {
	fee := make(FeeMap)
	for _, out := range tx.Outputs {
		if !out.IsFee() {
			continue
		}
		fee[out.Asset.ID] += out.Value.Explicit
	}
	return fee
}

// HasValidFee reports whether every fee output is non-zero, in MoneyRange,
// and keeps its asset's running total in MoneyRange (spec §4.F).
func HasValidFee(tx confidential.Transaction) bool {
	total := make(FeeMap)
	for _, out := range tx.Outputs {
		if !out.IsFee() {
			continue
		}
		amount := out.Value.Explicit
		if amount == 0 || !confidential.MoneyRange(amount) {
			return false
		}
		total[out.Asset.ID] += amount
		if !confidential.MoneyRange(total[out.Asset.ID]) {
			return false
		}
	}
	return true
}

// VerifyCoinbaseAmount validates a coinbase transaction's outputs against a
// previously computed fee map: every output must be fully explicit, carry
// no witness data, land in MoneyRange, and the per-asset remainder
// (fees - outputs) must stay in MoneyRange (spec §4.F — no premine).
func VerifyCoinbaseAmount(tx confidential.Transaction, fees FeeMap) (bool, error) {
	for j, ow := range tx.Witness.Outputs {
		if len(ow.Rangeproof) != 0 || len(ow.SurjectionProof) != 0 {
			return false, fmt.Errorf("feecalc: coinbase output %d carries witness data", j)
		}
	}

	remaining := make(FeeMap, len(fees))
	for asset, amount := range fees {
		remaining[asset] = amount
	}

	for j, out := range tx.Outputs {
		if !out.Value.IsExplicit() || !out.Asset.IsExplicit() {
			return false, fmt.Errorf("feecalc: coinbase output %d is not fully explicit", j)
		}
		if !confidential.MoneyRange(out.Value.Explicit) {
			return false, fmt.Errorf("feecalc: coinbase output %d value out of money range", j)
		}
		if out.Value.Explicit == 0 && !confidential.UnspendableScript(out.Script) {
			return false, fmt.Errorf("feecalc: coinbase output %d is a spendable zero-value output", j)
		}
		remaining[out.Asset.ID] -= out.Value.Explicit
	}

	for asset, amount := range remaining {
		if !confidential.MoneyRange(amount) {
			return false, fmt.Errorf("feecalc: asset %x remainder %s out of money range", asset, btcutil.Amount(amount))
		}
	}
	return true, nil
}

// DiscountedVirtualSize computes the confidential-transaction discounted
// virtual size: the classical weight, minus the serialized witness size of
// every non-fee output whose asset and value are both committed, rounded up
// to whole vbytes (spec §4.F).
func DiscountedVirtualSize(tx confidential.Transaction) (int64, error) {
	weight := tx.SerializedNoWitnessSize*(witnessScaleFactor-1) + tx.SerializedSize

	for j, out := range tx.Outputs {
		if out.IsFee() {
			continue
		}
		if out.Asset.IsCommitment() && out.Value.IsCommitment() {
			ow, ok := tx.Witness.OutputWitnessAt(j)
			if !ok {
				return 0, fmt.Errorf("feecalc: output %d is confidential but has no witness slot", j)
			}
			weight -= ow.SerializedSize()
		}
	}

	if weight <= 0 {
		return 0, fmt.Errorf("feecalc: computed non-positive weight %d", weight)
	}

	return (weight + witnessScaleFactor - 1) / witnessScaleFactor, nil
}
