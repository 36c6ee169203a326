package curve

import (
	"crypto/elliptic"

	"github.com/rawblock/confidential-verifier/pkg/confidential"
)

// RangeVerifier checks a range proof binding a value commitment to an asset
// commitment and a spending script. The real implementation is a bulletproof
// (or Borromean rangeproof) verifier; this package only defines the contract
// (spec §6), since no such proof library exists anywhere in the example
// corpus to vendor (see DESIGN.md).
type RangeVerifier interface {
	VerifyRange(proof []byte, commitment, assetCommitment [33]byte, script []byte) bool
}

// SurjectionVerifier checks a surjection proof binding an output generator
// to one of a declared set of target generators.
type SurjectionVerifier interface {
	VerifySurjection(proof []byte, targets [][33]byte, outputGenerator [33]byte, witnessTxID [32]byte) bool
}

// Context is the process-wide curve handle: created once at startup,
// immutable thereafter, safe for concurrent read-only use — the Go analogue
// of the source's single secp256k1_ctx_verify_amounts (spec §5).
type Context struct {
	curve elliptic.Curve
	h     Point

	rangeVerifier      RangeVerifier
	surjectionVerifier SurjectionVerifier
}

// Option configures a Context at construction time.
type Option func(*Context)

// WithRangeVerifier overrides the range-proof verification predicate.
func WithRangeVerifier(v RangeVerifier) Option {
	return func(c *Context) { c.rangeVerifier = v }
}

// WithSurjectionVerifier overrides the surjection-proof verification predicate.
func WithSurjectionVerifier(v SurjectionVerifier) Option {
	return func(c *Context) { c.surjectionVerifier = v }
}

// NewContext builds the process-wide curve context. Call once at program
// start and keep the result for the process lifetime (spec §5).
func NewContext(opts ...Option) *Context {
	c := s256()
	ctx := &Context{
		curve: c,
		h:     hashToCurve(c, []byte("confidential-verifier/blinding-generator/v1")),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}

// GenerateGenerator derives the unblinded asset generator for assetID.
// Infallible: hashToCurve only fails if maxAttempts is exhausted, which does
// not happen for well-formed 32-byte inputs (spec §4.A).
func (c *Context) GenerateGenerator(assetID confidential.AssetID) Point {
	seed := make([]byte, 0, 48+32)
	seed = append(seed, "confidential-verifier/asset-generator/v1:"...)
	seed = append(seed, assetID[:]...)
	return hashToCurve(c.curve, seed)
}

// ParseGenerator decodes a 33-byte serialized generator.
func (c *Context) ParseGenerator(b [33]byte) (Point, error) {
	return ParsePoint(c.curve, b)
}

// SerializeGenerator encodes a generator as 33 bytes.
func (c *Context) SerializeGenerator(g Point) [33]byte {
	return SerializePoint(g)
}

// ParseCommitment decodes a 33-byte serialized Pedersen commitment.
func (c *Context) ParseCommitment(b [33]byte) (Point, error) {
	return ParsePoint(c.curve, b)
}

// SerializeCommitment encodes a commitment as 33 bytes.
func (c *Context) SerializeCommitment(p Point) [33]byte {
	return SerializePoint(p)
}

// BlindedGenerator derives the reissuance-token generator tweaked by the
// input's blinding nonce: base generator for tokenID shifted by nonce*G.
// This is a from-scratch analog of secp256k1_generator_generate_blinded —
// internally consistent, not bit-identical to the upstream C routine (the
// real proof/generator library is out-of-pack; see DESIGN.md).
func (c *Context) BlindedGenerator(tokenID confidential.AssetID, nonce [32]byte) (Point, error) {
	base := c.GenerateGenerator(tokenID)
	tweakX, tweakY := c.curve.ScalarBaseMult(nonce[:])
	if tweakX.Sign() == 0 && tweakY.Sign() == 0 {
		return base, nil
	}
	x, y := c.curve.Add(base.X, base.Y, tweakX, tweakY)
	return Point{X: x, Y: y}, nil
}

// Commit computes value*gen + blinding*G. Fails only when value == 0 with an
// all-zero blinding factor, matching the source contract (spec §4.A).
func (c *Context) Commit(value int64, blinding [32]byte, gen Point) (Point, error) {
	if value == 0 && blinding == [32]byte{} {
		return Point{}, ErrCommitZero
	}

	var valueBytes [32]byte
	putUint64BE(valueBytes[24:], uint64(value))

	vx, vy := c.curve.ScalarMult(gen.X, gen.Y, valueBytes[:])
	bx, by := c.curve.ScalarBaseMult(blinding[:])

	switch {
	case vx.Sign() == 0 && vy.Sign() == 0:
		return Point{X: bx, Y: by}, nil
	case bx.Sign() == 0 && by.Sign() == 0:
		return Point{X: vx, Y: vy}, nil
	default:
		x, y := c.curve.Add(vx, vy, bx, by)
		return Point{X: x, Y: y}, nil
	}
}

// Tally reports whether the sum of input commitments equals the sum of
// output commitments, i.e. the transaction balances to the zero scalar on
// every asset (spec §3 invariant 5).
func (c *Context) Tally(inputs, outputs []Point) bool {
	sumIn := c.sum(inputs)
	sumOut := c.sum(outputs)
	return sumIn.Equal(sumOut)
}

func (c *Context) sum(points []Point) Point {
	acc := infinity
	for _, p := range points {
		if p.IsInfinity() {
			continue
		}
		if acc.IsInfinity() {
			acc = p
			continue
		}
		x, y := c.curve.Add(acc.X, acc.Y, p.X, p.Y)
		acc = Point{X: x, Y: y}
	}
	return acc
}

// VerifyRange delegates to the configured RangeVerifier. Returns false if
// none was configured (a Context built without WithRangeVerifier rejects
// every range proof, fail-closed).
func (c *Context) VerifyRange(proof []byte, commitment, assetCommitment [33]byte, script []byte) bool {
	if c.rangeVerifier == nil {
		return false
	}
	return c.rangeVerifier.VerifyRange(proof, commitment, assetCommitment, script)
}

// VerifySurjection delegates to the configured SurjectionVerifier.
func (c *Context) VerifySurjection(proof []byte, targets [][33]byte, outputGen [33]byte, witnessTxID [32]byte) bool {
	if c.surjectionVerifier == nil {
		return false
	}
	return c.surjectionVerifier.VerifySurjection(proof, targets, outputGen, witnessTxID)
}

func putUint64BE(b []byte, v uint64) {
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
}
