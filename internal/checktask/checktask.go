// Package checktask implements the deferrable check-task sum type and the
// dispatcher that decides, in exactly one place, whether a task runs inline
// or is queued for batched execution (spec §4.D, §4.G). Modeled as a sum
// type with a uniform Run method rather than an abstract base class with
// ownership transfer, per the Design Notes.
package checktask

import "fmt"

// ErrKind enumerates the classified consensus-level rejection reasons a
// Task can surface. Structural errors (bad field tags, size mismatches,
// missing witnesses) are reported as plain errors with no ErrKind — the
// consensus caller never branches on those (spec §7).
type ErrKind int

const (
	KindOK ErrKind = iota
	KindRangeProof
	KindPedersenTally
	KindSurjectionProof
)

func (k ErrKind) String() string {
	switch k {
	case KindOK:
		return "OK"
	case KindRangeProof:
		return "RANGEPROOF"
	case KindPedersenTally:
		return "PEDERSEN_TALLY"
	case KindSurjectionProof:
		return "SURJECTIONPROOF"
	default:
		return "UNKNOWN"
	}
}

// ScriptError wraps an ErrKind so callers that care (logging, metrics) can
// recover the classified reason; the boolean top-level predicates never
// need to inspect it.
type ScriptError struct {
	Kind ErrKind
}

func (e *ScriptError) Error() string { return fmt.Sprintf("script error: %s", e.Kind) }

// NewScriptError constructs a ScriptError of the given kind.
func NewScriptError(kind ErrKind) *ScriptError { return &ScriptError{Kind: kind} }

// Task is a deferrable unit of cryptographic verification work.
type Task interface {
	// Run executes the check. A nil return means the check passed.
	Run() error
}
