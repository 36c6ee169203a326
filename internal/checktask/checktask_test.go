package checktask

import (
	"errors"
	"testing"

	"github.com/rawblock/confidential-verifier/internal/curve"
	"github.com/rawblock/confidential-verifier/internal/proofcache"
)

func newTestContext() *curve.Context {
	return curve.NewContext(
		curve.WithRangeVerifier(curve.RefVerifier{}),
		curve.WithSurjectionVerifier(curve.RefVerifier{}),
	)
}

func TestRangeCheckRunSuccessAndCache(t *testing.T) {
	ctx := newTestContext()
	cache := proofcache.NewRangeCache(0)

	commitment := [33]byte{1}
	assetCommitment := [33]byte{2}
	script := []byte{0x51}
	proof := (curve.RefProver{}).RangeTag(commitment, assetCommitment, script)

	task := &RangeCheck{
		Ctx:             ctx,
		Cache:           cache,
		Proof:           proof,
		Commitment:      commitment,
		AssetCommitment: assetCommitment,
		Script:          script,
		StoreResult:     true,
	}

	if err := task.Run(); err != nil {
		t.Fatalf("expected a valid range proof to pass, got %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("expected the positive result to be cached")
	}

	// Re-running against a context with no range verifier (which rejects
	// every proof) still passes because the result is memoized.
	task.Ctx = curve.NewContext()
	if err := task.Run(); err != nil {
		t.Errorf("expected a cache hit to bypass re-verification, got %v", err)
	}
}

func TestRangeCheckRunFailure(t *testing.T) {
	ctx := newTestContext()
	task := &RangeCheck{
		Ctx:        ctx,
		Proof:      []byte("wrong"),
		Commitment: [33]byte{1},
	}

	err := task.Run()
	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("expected a *ScriptError, got %v", err)
	}
	if scriptErr.Kind != KindRangeProof {
		t.Errorf("expected KindRangeProof, got %v", scriptErr.Kind)
	}
}

func TestBalanceCheckArenaIndexing(t *testing.T) {
	ctx := curve.NewContext()
	gen := ctx.GenerateGenerator([32]byte{9})

	var zero [32]byte
	in1, _ := ctx.Commit(60, zero, gen)
	in2, _ := ctx.Commit(40, zero, gen)
	out, _ := ctx.Commit(100, zero, gen)

	storage := []curve.Point{in1, in2, out}
	task := &BalanceCheck{
		Ctx:     ctx,
		Storage: storage,
		LHS:     []int{0, 1},
		RHS:     []int{2},
	}

	if err := task.Run(); err != nil {
		t.Errorf("expected a balanced tally to pass, got %v", err)
	}
}

func TestBalanceCheckImbalance(t *testing.T) {
	ctx := curve.NewContext()
	gen := ctx.GenerateGenerator([32]byte{9})

	var zero [32]byte
	in, _ := ctx.Commit(60, zero, gen)
	out, _ := ctx.Commit(61, zero, gen)

	task := &BalanceCheck{
		Ctx:     ctx,
		Storage: []curve.Point{in, out},
		LHS:     []int{0},
		RHS:     []int{1},
	}

	err := task.Run()
	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) || scriptErr.Kind != KindPedersenTally {
		t.Errorf("expected KindPedersenTally error, got %v", err)
	}
}

func TestSurjectionCheckRun(t *testing.T) {
	ctx := newTestContext()
	targets := [][33]byte{{1}, {2}}
	outputGen := [33]byte{2}
	wtxid := [32]byte{3}
	proof := (curve.RefProver{}).SurjectionTag(targets, outputGen, wtxid)

	task := &SurjectionCheck{
		Ctx:              ctx,
		Proof:            proof,
		TargetGenerators: targets,
		OutputGenerator:  outputGen,
		WitnessTxID:      wtxid,
	}
	if err := task.Run(); err != nil {
		t.Errorf("expected a valid surjection proof to pass, got %v", err)
	}
}
