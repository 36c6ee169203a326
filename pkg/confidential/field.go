// Package confidential defines the wire-independent data model for
// confidential-asset transactions: tagged value/asset fields, outputs,
// issuance records and witness bundles (see SPEC_FULL.md §3).
package confidential

import "fmt"

// FieldKind tags which of the three confidential-field cases a Value/Asset
// field holds. Kept as an explicit enum rather than encoded implicitly by a
// leading byte — byte-level encoding belongs to the serialization layer that
// sits outside this module.
type FieldKind uint8

const (
	// Null marks an absent field. Only valid where the caller's context
	// permits it (e.g. a null nonce); inputs/outputs never permit a null
	// value or asset.
	Null FieldKind = iota
	// Explicit marks a cleartext payload.
	Explicit
	// Commitment marks a 33-byte serialized curve point.
	Commitment
)

func (k FieldKind) String() string {
	switch k {
	case Null:
		return "null"
	case Explicit:
		return "explicit"
	case Commitment:
		return "commitment"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// AssetID is a 32-byte opaque tag identifying an asset class.
type AssetID [32]byte

// MaxMoney is the monetary cap inherited from the hosting chain (21,000,000
// BTC expressed in satoshis). Consensus-visible per spec §6.
const MaxMoney int64 = 21_000_000 * 100_000_000

// MoneyRange reports whether v satisfies 0 <= v <= MaxMoney.
func MoneyRange(v int64) bool {
	return v >= 0 && v <= MaxMoney
}

// ValueField is a confidential amount: null, an explicit satoshi count, or a
// 33-byte Pedersen commitment.
type ValueField struct {
	Kind       FieldKind
	Explicit   int64
	Commitment [33]byte
}

// IsNull, IsExplicit and IsCommitment report the field's tag.
func (v ValueField) IsNull() bool       { return v.Kind == Null }
func (v ValueField) IsExplicit() bool   { return v.Kind == Explicit }
func (v ValueField) IsCommitment() bool { return v.Kind == Commitment }

// Valid reports whether the field's tag is one of the three recognized
// cases. Every ValueField constructed through this package satisfies it
// trivially; the check exists for values arriving from an external decoder.
func (v ValueField) Valid() bool {
	return v.Kind == Null || v.Kind == Explicit || v.Kind == Commitment
}

// AssetField is a confidential asset tag: null, an explicit 32-byte asset
// id, or a 33-byte generator commitment.
type AssetField struct {
	Kind       FieldKind
	ID         AssetID
	Commitment [33]byte
}

func (a AssetField) IsNull() bool       { return a.Kind == Null }
func (a AssetField) IsExplicit() bool   { return a.Kind == Explicit }
func (a AssetField) IsCommitment() bool { return a.Kind == Commitment }

func (a AssetField) Valid() bool {
	return a.Kind == Null || a.Kind == Explicit || a.Kind == Commitment
}

// NonceField carries the (optional) ECDH nonce published alongside an
// output's commitments. Its payload is opaque to the verifier: only its tag
// validity is checked.
type NonceField struct {
	Kind       FieldKind
	Commitment [33]byte
}

func (n NonceField) Valid() bool {
	return n.Kind == Null || n.Kind == Explicit || n.Kind == Commitment
}
