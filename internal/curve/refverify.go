package curve

import (
	"bytes"
	"crypto/sha256"
)

// RefProver/RefVerifier implement a minimal, self-consistent stand-in for
// the real rangeproof/surjection-proof libraries: "proof" is a tag a prover
// can only produce by knowing the material being proven about. They exist so
// the verifier pipeline (internal/verifier, internal/checktask) has a real
// RangeVerifier/SurjectionVerifier to exercise in tests without vendoring a
// bulletproof implementation absent from the example corpus (DESIGN.md).
//
// Not a cryptographic commitment to range membership — callers wiring a
// production deployment must supply their own RangeVerifier/SurjectionVerifier
// backed by an actual proof system.
type RefProver struct{}

// RangeTag produces the reference range "proof" for a given commitment/asset
// commitment/script triple.
func (RefProver) RangeTag(commitment, assetCommitment [33]byte, script []byte) []byte {
	h := sha256.New()
	h.Write([]byte("range/v1"))
	h.Write(commitment[:])
	h.Write(assetCommitment[:])
	h.Write(script)
	return h.Sum(nil)
}

// SurjectionTag produces the reference surjection "proof" for an output
// generator drawn from the given target set, bound to a witness txid.
func (RefProver) SurjectionTag(targets [][33]byte, outputGen [33]byte, witnessTxID [32]byte) []byte {
	h := sha256.New()
	h.Write([]byte("surjection/v1"))
	for _, t := range targets {
		h.Write(t[:])
	}
	h.Write(outputGen[:])
	h.Write(witnessTxID[:])
	return h.Sum(nil)
}

// RefVerifier checks proofs produced by RefProver.
type RefVerifier struct{}

func (RefVerifier) VerifyRange(proof []byte, commitment, assetCommitment [33]byte, script []byte) bool {
	want := (RefProver{}).RangeTag(commitment, assetCommitment, script)
	return len(proof) > 0 && bytes.Equal(proof, want)
}

func (RefVerifier) VerifySurjection(proof []byte, targets [][33]byte, outputGen [33]byte, witnessTxID [32]byte) bool {
	want := (RefProver{}).SurjectionTag(targets, outputGen, witnessTxID)
	return len(proof) > 0 && bytes.Equal(proof, want)
}
