// Package verifier implements the confidential amount verifier: the state
// machine that walks a transaction's inputs (with synthesized issuance
// pseudo-inputs) and outputs, builds the Pedersen commitment vectors, and
// emits check tasks through the dispatcher (spec §4.E). Control flow and
// ordering invariants are grounded on confidential_validation.cpp's
// VerifyAmounts; the pointer-into-reserved-vector hazard that function
// carries is redesigned here as arena-plus-index (see DESIGN.md).
package verifier

import (
	"fmt"
	"log"
	"os"

	"github.com/rawblock/confidential-verifier/internal/checktask"
	"github.com/rawblock/confidential-verifier/internal/curve"
	"github.com/rawblock/confidential-verifier/internal/issuance"
	"github.com/rawblock/confidential-verifier/internal/proofcache"
	"github.com/rawblock/confidential-verifier/internal/txid"
	"github.com/rawblock/confidential-verifier/pkg/confidential"
)

// debugLog gates per-commitment trace logging behind VERIFIER_DEBUG_LOG so
// it never perturbs consensus-path timing by default (spec's Design Notes:
// "the source logs extensively... implementers should keep logging behind
// a debug flag").
var debugLog = os.Getenv("VERIFIER_DEBUG_LOG") == "1"

// traceCommitment reproduces the original's log_hex-style commitment
// tracing: a hex dump of a serialized commitment tagged with where in the
// walk it was produced. A no-op unless debugLog is set.
func traceCommitment(ctx *curve.Context, label string, p curve.Point) {
	if !debugLog {
		return
	}
	b := ctx.SerializeCommitment(p)
	log.Printf("[AmountVerifier] %s commitment=%x", label, b)
}

// Caches bundles the two proof memoizers the verifier consults while
// emitting range/surjection checks. Either field may be nil, in which case
// the corresponding check always misses the cache.
type Caches struct {
	Range      *proofcache.RangeCache
	Surjection *proofcache.SurjectionCache
}

// arena accumulates Pedersen commitments to their final length before any
// index into it is taken, and separately tracks which arena slots belong to
// the balance check's LHS (inputs plus issuance pseudo-inputs) and RHS
// (outputs). This is the redesign of the source's reserve-then-take-pointer
// pattern: no pointer into the backing slice is ever held across an append
// (spec §9, "arena-plus-index").
type arena struct {
	storage []curve.Point
	lhs     []int
	rhs     []int
}

func (a *arena) pushLHS(p curve.Point) {
	a.storage = append(a.storage, p)
	a.lhs = append(a.lhs, len(a.storage)-1)
}

func (a *arena) pushRHS(p curve.Point) {
	a.storage = append(a.storage, p)
	a.rhs = append(a.rhs, len(a.storage)-1)
}

// VerifyAmounts is the main consensus-critical entry point (spec §4.E). It
// rejects immediately, after any already-dispatched cheap checks, on the
// first structural or cryptographic failure it finds; deferred checks
// pushed to queue before that point remain queued for the caller to drain.
// prevouts must have exactly one entry per tx.Inputs — the previous outputs
// each input spends, needed because a confidential input's value/asset are
// properties of what it spends, not of the input itself.
func VerifyAmounts(ctx *curve.Context, caches Caches, prevouts []confidential.TxOut, tx confidential.Transaction, queue *checktask.Queue, storeResult bool) (bool, error) {
	if len(prevouts) != len(tx.Inputs) {
		return false, fmt.Errorf("verifier: prevout count %d does not match input count %d", len(prevouts), len(tx.Inputs))
	}

	wtxid := txid.WitnessTxID(tx.Serialized)

	a := &arena{
		storage: make([]curve.Point, 0, len(tx.Inputs)+len(tx.Outputs)+tx.NumIssuancePseudoInputs()),
	}

	// target_generators accumulates in strict consensus order: the spent
	// output's generator first, then (for inputs carrying issuance) the
	// issued-asset generator, then the reissuance-token generator (spec
	// §4.E step 3, §8 P7). Reordering any two appends changes which
	// surjection proofs verify.
	var targetGenerators [][33]byte

	for i, in := range tx.Inputs {
		spent := prevouts[i]
		if spent.Value.IsNull() || spent.Asset.IsNull() {
			return false, fmt.Errorf("verifier: input %d spends a null value or asset field", i)
		}

		gen, err := resolveGenerator(ctx, spent.Asset)
		if err != nil {
			return false, fmt.Errorf("verifier: input %d: %w", i, err)
		}
		targetGenerators = append(targetGenerators, ctx.SerializeGenerator(gen))

		commit, err := resolveInputCommitment(ctx, spent.Value, gen)
		if err != nil {
			return false, fmt.Errorf("verifier: input %d: %w", i, err)
		}
		traceCommitment(ctx, fmt.Sprintf("input %d", i), commit)
		a.pushLHS(commit)

		if in.Issuance.IsNull() {
			continue
		}

		id, err := issuance.Derive(ctx, in.PrevOut, in.Issuance, spent.Asset)
		if err != nil {
			return false, fmt.Errorf("verifier: input %d issuance: %w", i, err)
		}

		if !in.Issuance.Amount.IsNull() {
			iw, ok := tx.Witness.InputWitnessAt(i)
			if !ok {
				return false, fmt.Errorf("verifier: input %d: issuance amount present but no witness slot", i)
			}
			commit, gen, err := verifyIssuanceAmount(ctx, caches.Range, id.AssetID, in.Issuance.Amount, iw.IssuanceAmountRangeproof, queue, storeResult)
			if err != nil {
				return false, fmt.Errorf("verifier: input %d issued-asset pseudo-input: %w", i, err)
			}
			traceCommitment(ctx, fmt.Sprintf("input %d issued-asset pseudo-input", i), commit)
			targetGenerators = append(targetGenerators, ctx.SerializeGenerator(gen))
			a.pushLHS(commit)
		}

		if !in.Issuance.InflationKeys.IsNull() {
			if in.Issuance.IsReissuance() {
				return false, fmt.Errorf("verifier: input %d: reissuance must not declare inflation keys", i)
			}
			iw, ok := tx.Witness.InputWitnessAt(i)
			if !ok {
				return false, fmt.Errorf("verifier: input %d: inflation keys present but no witness slot", i)
			}
			commit, gen, err := verifyIssuanceAmount(ctx, caches.Range, id.TokenID, in.Issuance.InflationKeys, iw.InflationKeysRangeproof, queue, storeResult)
			if err != nil {
				return false, fmt.Errorf("verifier: input %d reissuance-token pseudo-input: %w", i, err)
			}
			traceCommitment(ctx, fmt.Sprintf("input %d reissuance-token pseudo-input", i), commit)
			targetGenerators = append(targetGenerators, ctx.SerializeGenerator(gen))
			a.pushLHS(commit)
		}
	}

	for j, out := range tx.Outputs {
		if !out.Asset.Valid() || !out.Value.Valid() || !out.Nonce.Valid() {
			return false, fmt.Errorf("verifier: output %d: invalid field tag", j)
		}

		gen, err := resolveGenerator(ctx, out.Asset)
		if err != nil {
			return false, fmt.Errorf("verifier: output %d: %w", j, err)
		}

		switch {
		case out.Value.IsExplicit():
			if !confidential.MoneyRange(out.Value.Explicit) {
				return false, fmt.Errorf("verifier: output %d: explicit value out of money range", j)
			}
			if out.Value.Explicit == 0 {
				if !confidential.UnspendableScript(out.Script) {
					return false, fmt.Errorf("verifier: output %d: spendable zero-value output", j)
				}
				continue // not added to RHS: spec §4.E step 5
			}
			commit, err := ctx.Commit(out.Value.Explicit, [32]byte{}, gen)
			if err != nil {
				return false, fmt.Errorf("verifier: output %d: committing explicit value: %w", j, err)
			}
			traceCommitment(ctx, fmt.Sprintf("output %d", j), commit)
			a.pushRHS(commit)
		case out.Value.IsCommitment():
			commit, err := ctx.ParseCommitment(out.Value.Commitment)
			if err != nil {
				return false, fmt.Errorf("verifier: output %d: parsing value commitment: %w", j, err)
			}
			traceCommitment(ctx, fmt.Sprintf("output %d", j), commit)
			a.pushRHS(commit)
		default:
			return false, fmt.Errorf("verifier: output %d: value field neither explicit nor commitment", j)
		}
	}

	if debugLog {
		log.Printf("[AmountVerifier] dispatching balance check: %d lhs terms, %d rhs terms", len(a.lhs), len(a.rhs))
	}
	balanceErr := checktask.Dispatch(queue, &checktask.BalanceCheck{
		Ctx:     ctx,
		Storage: a.storage,
		LHS:     a.lhs,
		RHS:     a.rhs,
	})
	if balanceErr != nil {
		return false, balanceErr
	}

	if err := emitRangeChecks(ctx, caches.Range, tx, queue, storeResult); err != nil {
		return false, err
	}

	if err := emitSurjectionChecks(ctx, caches.Surjection, tx, targetGenerators, wtxid, queue, storeResult); err != nil {
		return false, err
	}

	if debugLog {
		log.Printf("[AmountVerifier] verify_amounts accepted wtxid=%x", wtxid)
	}
	return true, nil
}

// resolveGenerator derives the asset generator for a (tagged) asset field:
// the unblinded generator for an explicit asset id, or the parsed point for
// a commitment (spec §4.E step 4/5).
func resolveGenerator(ctx *curve.Context, asset confidential.AssetField) (curve.Point, error) {
	switch {
	case asset.IsExplicit():
		return ctx.GenerateGenerator(asset.ID), nil
	case asset.IsCommitment():
		g, err := ctx.ParseGenerator(asset.Commitment)
		if err != nil {
			return curve.Point{}, fmt.Errorf("parsing asset generator: %w", err)
		}
		return g, nil
	default:
		return curve.Point{}, fmt.Errorf("asset field is neither explicit nor commitment")
	}
}

// resolveInputCommitment derives an input's value commitment: explicit
// values are committed with a zero blinding factor, commitments are parsed
// directly (spec §4.E step 4).
func resolveInputCommitment(ctx *curve.Context, val confidential.ValueField, gen curve.Point) (curve.Point, error) {
	switch {
	case val.IsExplicit():
		if !confidential.MoneyRange(val.Explicit) {
			return curve.Point{}, fmt.Errorf("explicit input value out of money range")
		}
		commit, err := ctx.Commit(val.Explicit, [32]byte{}, gen)
		if err != nil {
			return curve.Point{}, fmt.Errorf("committing explicit input value: %w", err)
		}
		return commit, nil
	case val.IsCommitment():
		commit, err := ctx.ParseCommitment(val.Commitment)
		if err != nil {
			return curve.Point{}, fmt.Errorf("parsing input value commitment: %w", err)
		}
		return commit, nil
	default:
		return curve.Point{}, fmt.Errorf("value field is neither explicit nor commitment")
	}
}

// verifyIssuanceAmount derives the commitment and generator for one
// issuance pseudo-input, emitting a range check when the amount is
// confidential (spec §4.E.1).
func verifyIssuanceAmount(ctx *curve.Context, cache *proofcache.RangeCache, assetID confidential.AssetID, amount confidential.ValueField, rangeproof []byte, queue *checktask.Queue, storeResult bool) (curve.Point, curve.Point, error) {
	gen := ctx.GenerateGenerator(assetID)

	switch {
	case amount.IsExplicit():
		if amount.Explicit == 0 || !confidential.MoneyRange(amount.Explicit) {
			return curve.Point{}, curve.Point{}, fmt.Errorf("issuance amount out of range or zero")
		}
		if len(rangeproof) != 0 {
			return curve.Point{}, curve.Point{}, fmt.Errorf("explicit issuance amount carries a non-empty rangeproof")
		}
		commit, err := ctx.Commit(amount.Explicit, [32]byte{}, gen)
		if err != nil {
			return curve.Point{}, curve.Point{}, fmt.Errorf("committing explicit issuance amount: %w", err)
		}
		return commit, gen, nil
	case amount.IsCommitment():
		assetCommitment := ctx.SerializeGenerator(gen)
		err := checktask.Dispatch(queue, &checktask.RangeCheck{
			Ctx:             ctx,
			Cache:           cache,
			Proof:           rangeproof,
			Commitment:      amount.Commitment,
			AssetCommitment: assetCommitment,
			Script:          nil,
			StoreResult:     storeResult,
		})
		if err != nil {
			return curve.Point{}, curve.Point{}, err
		}
		commit, err := ctx.ParseCommitment(amount.Commitment)
		if err != nil {
			return curve.Point{}, curve.Point{}, fmt.Errorf("parsing issuance amount commitment: %w", err)
		}
		return commit, gen, nil
	default:
		return curve.Point{}, curve.Point{}, fmt.Errorf("issuance amount field is neither explicit nor commitment")
	}
}

// emitRangeChecks walks outputs a second time, emitting one range check per
// committed-value output (spec §4.E step 7).
func emitRangeChecks(ctx *curve.Context, cache *proofcache.RangeCache, tx confidential.Transaction, queue *checktask.Queue, storeResult bool) error {
	for j, out := range tx.Outputs {
		ow, hasWitness := tx.Witness.OutputWitnessAt(j)

		if out.Value.IsExplicit() {
			if hasWitness && len(ow.Rangeproof) != 0 {
				return fmt.Errorf("verifier: output %d: explicit value carries a non-empty rangeproof", j)
			}
			continue
		}

		assetCommitment := out.Asset.Commitment
		if out.Asset.IsExplicit() {
			gen := ctx.GenerateGenerator(out.Asset.ID)
			assetCommitment = ctx.SerializeGenerator(gen)
		}

		if !hasWitness {
			return fmt.Errorf("verifier: output %d: committed value requires a witness slot", j)
		}

		err := checktask.Dispatch(queue, &checktask.RangeCheck{
			Ctx:             ctx,
			Cache:           cache,
			Proof:           ow.Rangeproof,
			Commitment:      out.Value.Commitment,
			AssetCommitment: assetCommitment,
			Script:          out.Script,
			StoreResult:     storeResult,
		})
		if err != nil {
			return fmt.Errorf("verifier: output %d: %w", j, err)
		}
	}
	return nil
}

// emitSurjectionChecks walks outputs a third time, emitting one surjection
// check per committed-asset output against the accumulated target
// generators (spec §4.E step 8).
func emitSurjectionChecks(ctx *curve.Context, cache *proofcache.SurjectionCache, tx confidential.Transaction, targetGenerators [][33]byte, wtxid [32]byte, queue *checktask.Queue, storeResult bool) error {
	for j, out := range tx.Outputs {
		ow, hasWitness := tx.Witness.OutputWitnessAt(j)

		if out.Asset.IsExplicit() {
			if hasWitness && len(ow.SurjectionProof) != 0 {
				return fmt.Errorf("verifier: output %d: explicit asset carries a non-empty surjection proof", j)
			}
			continue
		}

		if !hasWitness {
			return fmt.Errorf("verifier: output %d: committed asset requires a witness slot", j)
		}

		// Parsing the output generator up front matches the source's
		// behavior of rejecting unparseable generators before looking at
		// the surjection proof at all.
		if _, err := ctx.ParseGenerator(out.Asset.Commitment); err != nil {
			return fmt.Errorf("verifier: output %d: parsing output generator: %w", j, err)
		}

		err := checktask.Dispatch(queue, &checktask.SurjectionCheck{
			Ctx:              ctx,
			Cache:            cache,
			Proof:            ow.SurjectionProof,
			TargetGenerators: targetGenerators,
			OutputGenerator:  out.Asset.Commitment,
			WitnessTxID:      wtxid,
			StoreResult:      storeResult,
		})
		if err != nil {
			return fmt.Errorf("verifier: output %d: %w", j, err)
		}
	}
	return nil
}
