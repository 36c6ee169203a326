package issuance

import (
	"testing"

	"github.com/rawblock/confidential-verifier/internal/curve"
	"github.com/rawblock/confidential-verifier/pkg/confidential"
)

func TestDeriveInitialIssuanceIsDeterministicAndDistinct(t *testing.T) {
	ctx := curve.NewContext()
	op := confidential.Outpoint{Hash: [32]byte{1}, Index: 0}
	rec := confidential.IssuanceRecord{
		Amount:       confidential.ValueField{Kind: confidential.Explicit, Explicit: 100},
		AssetEntropy: [32]byte{7},
	}

	a, err := Derive(ctx, op, rec, confidential.AssetField{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Derive(ctx, op, rec, confidential.AssetField{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.AssetID != b.AssetID || a.TokenID != b.TokenID {
		t.Errorf("expected deterministic derivation for identical inputs")
	}
	if a.AssetID == a.TokenID {
		t.Errorf("asset id and token id must not collide")
	}

	other := op
	other.Index = 1
	c, err := Derive(ctx, other, rec, confidential.AssetField{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.AssetID == a.AssetID {
		t.Errorf("different outpoints must derive different asset ids")
	}
}

func TestDeriveTokenIDReflectsConfidentialAmountFlag(t *testing.T) {
	ctx := curve.NewContext()
	op := confidential.Outpoint{Hash: [32]byte{2}, Index: 0}

	explicit := confidential.IssuanceRecord{
		Amount:       confidential.ValueField{Kind: confidential.Explicit, Explicit: 50},
		AssetEntropy: [32]byte{9},
	}
	confidentialRec := explicit
	confidentialRec.Amount = confidential.ValueField{Kind: confidential.Commitment}

	a, err := Derive(ctx, op, explicit, confidential.AssetField{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Derive(ctx, op, confidentialRec, confidential.AssetField{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.AssetID != b.AssetID {
		t.Errorf("asset id must not depend on the amount's confidentiality")
	}
	if a.TokenID == b.TokenID {
		t.Errorf("token id must depend on the amount's confidentiality")
	}
}

func TestDeriveReissuanceUsesEntropyDirectly(t *testing.T) {
	ctx := curve.NewContext()
	op := confidential.Outpoint{Hash: [32]byte{3}, Index: 0}
	rec := confidential.IssuanceRecord{
		Amount:        confidential.ValueField{Kind: confidential.Explicit, Explicit: 10},
		AssetEntropy:  [32]byte{42},
		BlindingNonce: [32]byte{1},
	}

	tok := tokenID(rec.AssetEntropy, false)
	blinded, err := ctx.BlindedGenerator(tok, rec.BlindingNonce)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	commitment := ctx.SerializeGenerator(blinded)

	spent := confidential.AssetField{Kind: confidential.Commitment, Commitment: commitment}
	id, err := Derive(ctx, op, rec, spent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.AssetID != assetID(rec.AssetEntropy) {
		t.Errorf("reissuance asset id must be derived from AssetEntropy directly, not re-hashed from the outpoint")
	}
}

func TestDeriveReissuanceRejectsNonCommitmentSpentAsset(t *testing.T) {
	ctx := curve.NewContext()
	op := confidential.Outpoint{Hash: [32]byte{4}, Index: 0}
	rec := confidential.IssuanceRecord{
		Amount:        confidential.ValueField{Kind: confidential.Explicit, Explicit: 10},
		AssetEntropy:  [32]byte{5},
		BlindingNonce: [32]byte{1},
	}

	_, err := Derive(ctx, op, rec, confidential.AssetField{Kind: confidential.Explicit})
	if err == nil {
		t.Errorf("expected an error when the spent asset field is not a commitment")
	}
}

func TestDeriveReissuanceRejectsMismatchedCommitment(t *testing.T) {
	ctx := curve.NewContext()
	op := confidential.Outpoint{Hash: [32]byte{6}, Index: 0}
	rec := confidential.IssuanceRecord{
		Amount:        confidential.ValueField{Kind: confidential.Explicit, Explicit: 10},
		AssetEntropy:  [32]byte{8},
		BlindingNonce: [32]byte{1},
	}

	wrong := confidential.AssetField{Kind: confidential.Commitment, Commitment: [33]byte{0xff}}
	_, err := Derive(ctx, op, rec, wrong)
	if err == nil {
		t.Errorf("expected a byte-exact mismatch to be rejected")
	}
}
