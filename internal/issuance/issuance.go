// Package issuance computes asset ids and reissuance-token ids from an
// issuance record and the spending outpoint, and derives the blinded
// generator a reissuance input must match (spec §4.C).
package issuance

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/rawblock/confidential-verifier/internal/curve"
	"github.com/rawblock/confidential-verifier/internal/txid"
	"github.com/rawblock/confidential-verifier/pkg/confidential"
)

// debugLog gates entropy/identity trace logging behind VERIFIER_DEBUG_LOG,
// same toggle and bracketed-tag convention as internal/verifier's debugLog.
var debugLog = os.Getenv("VERIFIER_DEBUG_LOG") == "1"

// Identity is the derived (asset id, reissuance-token id) pair for one
// issuance input.
type Identity struct {
	AssetID confidential.AssetID
	TokenID confidential.AssetID
}

// entropy computes the per-issuance entropy leaf: for initial issuance it is
// derived from the spending outpoint and the record's AssetEntropy field;
// for reissuance the record's AssetEntropy field *is* the entropy (spec
// §4.C).
func entropy(outpoint confidential.Outpoint, rec confidential.IssuanceRecord) [32]byte {
	if rec.IsReissuance() {
		return rec.AssetEntropy
	}
	return txid.TaggedHash("confidential-verifier/issuance-entropy/v1", outpoint.Bytes(), rec.AssetEntropy[:])
}

func assetID(ent [32]byte) confidential.AssetID {
	return confidential.AssetID(txid.TaggedHash("confidential-verifier/asset-id/v1", ent[:]))
}

func tokenID(ent [32]byte, confidentialAmount bool) confidential.AssetID {
	suffix := byte(0)
	if confidentialAmount {
		suffix = 1
	}
	return confidential.AssetID(txid.TaggedHash("confidential-verifier/token-id/v1", ent[:], []byte{suffix}))
}

// Derive computes the issuance identity for the input at outpoint carrying
// rec. For reissuance inputs it additionally checks that spentAssetCommitment
// — the asset commitment of the output the input spends — equals the
// blinded generator of the derived token id under rec.BlindingNonce, byte
// for byte (spec §3 invariant 4; no parsing-equivalence shortcut is allowed,
// per the Design Notes).
func Derive(ctx *curve.Context, outpoint confidential.Outpoint, rec confidential.IssuanceRecord, spentAsset confidential.AssetField) (Identity, error) {
	isConfidentialAmount := rec.Amount.IsCommitment()
	ent := entropy(outpoint, rec)

	id := Identity{
		AssetID: assetID(ent),
		TokenID: tokenID(ent, isConfidentialAmount),
	}
	if debugLog {
		log.Printf("[IssuanceDeriver] outpoint=%x entropy=%x asset_id=%x token_id=%x", outpoint.Bytes(), ent, id.AssetID, id.TokenID)
	}

	if !rec.IsReissuance() {
		return id, nil
	}

	blinded, err := ctx.BlindedGenerator(id.TokenID, rec.BlindingNonce)
	if err != nil {
		return Identity{}, fmt.Errorf("issuance: deriving blinded token generator: %w", err)
	}
	derived := ctx.SerializeGenerator(blinded)

	if !spentAsset.IsCommitment() {
		return Identity{}, fmt.Errorf("issuance: reissuance input's spent asset field is not a commitment")
	}
	// Belt-and-suspenders size check ahead of the byte compare, mirroring
	// the original's explicit length guard before memcmp.
	if len(spentAsset.Commitment) != len(derived) {
		return Identity{}, fmt.Errorf("issuance: reissuance asset commitment size mismatch")
	}
	if !bytes.Equal(spentAsset.Commitment[:], derived[:]) {
		if debugLog {
			log.Printf("[IssuanceDeriver] reissuance commitment mismatch: spent=%x derived=%x", spentAsset.Commitment, derived)
		}
		return Identity{}, fmt.Errorf("issuance: reissuance input's asset commitment does not match the blinded token generator")
	}

	return id, nil
}
