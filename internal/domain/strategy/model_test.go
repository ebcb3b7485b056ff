package strategy

import "testing"

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestSegmentMatches(t *testing.T) {
	seg := &Segment{AgeMin: intPtr(18), AgeMax: intPtr(30), RiskMin: floatPtr(0.3)}

	cases := []struct {
		name string
		age  int
		risk float64
		want bool
	}{
		{"inside all bounds", 25, 0.5, true},
		{"age below", 17, 0.5, false},
		{"age above", 31, 0.5, false},
		{"risk below", 25, 0.2, false},
		{"at lower age bound", 18, 0.3, true},
		{"at upper age bound", 30, 0.9, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := seg.Matches(tc.age, tc.risk); got != tc.want {
				t.Fatalf("Matches(%d, %v) = %v, want %v", tc.age, tc.risk, got, tc.want)
			}
		})
	}
}

func TestNilSegmentMatchesEverything(t *testing.T) {
	var seg *Segment
	if !seg.Matches(5, 0.01) || !seg.Matches(99, 0.99) {
		t.Fatal("nil segment must match every appointment")
	}
}

func TestVariantFor(t *testing.T) {
	ab := ABConfig{
		A: VariantConfig{Kind: CommSMS, DaysOfAction: []int{-1}},
		B: VariantConfig{Kind: CommCall, DaysOfAction: []int{0}},
	}
	if ab.VariantFor(VariantB).Kind != CommCall {
		t.Fatal("B label must select the B arm")
	}
	if ab.VariantFor(VariantA).Kind != CommSMS {
		t.Fatal("A label must select the A arm")
	}
	if ab.VariantFor("").Kind != CommSMS {
		t.Fatal("unassigned label must fall back to A")
	}
}

func TestMaxOffsetMagnitude(t *testing.T) {
	ab := ABConfig{
		A: VariantConfig{Kind: CommSMS, DaysOfAction: []int{-3, 0}},
		B: VariantConfig{Kind: CommCall, DaysOfAction: []int{-1, 2}},
	}
	if got := ab.MaxOffsetMagnitude(); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := (ABConfig{}).MaxOffsetMagnitude(); got != 0 {
		t.Fatalf("expected 0 for empty arms, got %d", got)
	}
}

func TestStrategyValidate(t *testing.T) {
	valid := Strategy{
		Name: "Outreach",
		AB: ABConfig{
			Split: 0.5,
			A:     VariantConfig{Kind: CommSMS, DaysOfAction: []int{-1}},
			B:     VariantConfig{Kind: CommCall, DaysOfAction: []int{-1}},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid strategy rejected: %v", err)
	}

	noName := valid
	noName.Name = ""
	if err := noName.Validate(); err == nil {
		t.Fatal("missing name must be rejected")
	}

	badSplit := valid
	badSplit.AB.Split = 1.5
	if err := badSplit.Validate(); err == nil {
		t.Fatal("split outside [0,1] must be rejected")
	}

	badKind := valid
	badKind.AB.A.Kind = "fax"
	if err := badKind.Validate(); err == nil {
		t.Fatal("unknown communication kind must be rejected")
	}
}
