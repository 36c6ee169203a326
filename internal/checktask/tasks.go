package checktask

import (
	"github.com/rawblock/confidential-verifier/internal/curve"
	"github.com/rawblock/confidential-verifier/internal/proofcache"
)

// RangeCheck verifies a range proof bound to a value commitment, an asset
// commitment and a spending script. script is the empty script when
// checking an issuance rangeproof (spec §4.D).
type RangeCheck struct {
	Ctx             *curve.Context
	Cache           *proofcache.RangeCache
	Proof           []byte
	Commitment      [33]byte
	AssetCommitment [33]byte
	Script          []byte
	StoreResult     bool
}

func (t *RangeCheck) Run() error {
	key := proofcache.RangeKey(t.Proof, t.Commitment, t.AssetCommitment, t.Script)
	if t.Cache != nil && t.Cache.Has(key) {
		return nil
	}
	if !t.Ctx.VerifyRange(t.Proof, t.Commitment, t.AssetCommitment, t.Script) {
		return NewScriptError(KindRangeProof)
	}
	if t.Cache != nil && t.StoreResult {
		t.Cache.Store(key)
	}
	return nil
}

// BalanceCheck verifies the Pedersen tally over the input (plus issuance
// pseudo-input) commitment vector against the output commitment vector.
// LHS/RHS are index vectors into Storage rather than raw pointers — the
// arena-plus-index redesign from DESIGN.md / spec §9 — so Storage can be
// built to its final length before any index is taken.
type BalanceCheck struct {
	Ctx     *curve.Context
	Storage []curve.Point
	LHS     []int
	RHS     []int
}

func (t *BalanceCheck) Run() error {
	in := make([]curve.Point, len(t.LHS))
	for i, idx := range t.LHS {
		in[i] = t.Storage[idx]
	}
	out := make([]curve.Point, len(t.RHS))
	for i, idx := range t.RHS {
		out[i] = t.Storage[idx]
	}
	if !t.Ctx.Tally(in, out) {
		return NewScriptError(KindPedersenTally)
	}
	return nil
}

// SurjectionCheck verifies that an output's asset generator is a
// re-randomization of one of the accumulated target generators.
type SurjectionCheck struct {
	Ctx              *curve.Context
	Cache            *proofcache.SurjectionCache
	Proof            []byte
	TargetGenerators [][33]byte
	OutputGenerator  [33]byte
	WitnessTxID      [32]byte
	StoreResult      bool
}

func (t *SurjectionCheck) Run() error {
	key := proofcache.SurjectionKey(t.Proof, t.TargetGenerators, t.OutputGenerator, t.WitnessTxID)
	if t.Cache != nil && t.Cache.Has(key) {
		return nil
	}
	if !t.Ctx.VerifySurjection(t.Proof, t.TargetGenerators, t.OutputGenerator, t.WitnessTxID) {
		return NewScriptError(KindSurjectionProof)
	}
	if t.Cache != nil && t.StoreResult {
		t.Cache.Store(key)
	}
	return nil
}
