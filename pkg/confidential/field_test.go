package confidential

import "testing"

func TestMoneyRange(t *testing.T) {
	tests := []struct {
		name string
		v    int64
		want bool
	}{
		{"zero", 0, true},
		{"negative", -1, false},
		{"max", MaxMoney, true},
		{"over max", MaxMoney + 1, false},
		{"mid range", 1_000_000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoneyRange(tt.v); got != tt.want {
				t.Errorf("MoneyRange(%d) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestValueFieldKindPredicates(t *testing.T) {
	null := ValueField{Kind: Null}
	explicit := ValueField{Kind: Explicit, Explicit: 100}
	commitment := ValueField{Kind: Commitment}

	if !null.IsNull() || null.IsExplicit() || null.IsCommitment() {
		t.Errorf("null field kind predicates incorrect")
	}
	if !explicit.IsExplicit() || explicit.IsNull() || explicit.IsCommitment() {
		t.Errorf("explicit field kind predicates incorrect")
	}
	if !commitment.IsCommitment() || commitment.IsNull() || commitment.IsExplicit() {
		t.Errorf("commitment field kind predicates incorrect")
	}
	if !null.Valid() || !explicit.Valid() || !commitment.Valid() {
		t.Errorf("all three recognized kinds should be valid")
	}
}

func TestFieldKindString(t *testing.T) {
	tests := map[FieldKind]string{
		Null:       "null",
		Explicit:   "explicit",
		Commitment: "commitment",
		FieldKind(99): "unknown(99)",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("FieldKind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
