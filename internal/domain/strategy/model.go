package strategy

import (
	"fmt"
)

// CommKind is the communication channel a strategy variant uses.
type CommKind string

const (
	CommSMS  CommKind = "sms"
	CommCall CommKind = "call"
)

func (k CommKind) Valid() bool {
	return k == CommSMS || k == CommCall
}

// Variant labels for the A/B split.
const (
	VariantA = "A"
	VariantB = "B"
)

// VariantConfig is one arm of a strategy's A/B test: which channel to use
// and on which day offsets (relative to the appointment's day, negative =
// before, 0 = same day) to fire it.
type VariantConfig struct {
	Kind         CommKind `json:"type"`
	DaysOfAction []int    `json:"days_of_action"`
}

func (v VariantConfig) Validate() error {
	if !v.Kind.Valid() {
		return fmt.Errorf("communication type must be %q or %q, got %q", CommSMS, CommCall, v.Kind)
	}
	return nil
}

// ABConfig is a strategy's split probability and the two variant arms.
type ABConfig struct {
	Split float64       `json:"split"`
	A     VariantConfig `json:"A"`
	B     VariantConfig `json:"B"`
}

// VariantFor returns the arm for an assigned variant label. An empty or
// unrecognized label falls back to A, mirroring how unassigned
// appointments are treated.
func (ab ABConfig) VariantFor(label string) VariantConfig {
	if label == VariantB {
		return ab.B
	}
	return ab.A
}

// MaxOffsetMagnitude is the widest |offset| across both arms, i.e. how
// many days of lead time the strategy needs before the target day.
func (ab ABConfig) MaxOffsetMagnitude() int {
	max := 0
	for _, offsets := range [][]int{ab.A.DaysOfAction, ab.B.DaysOfAction} {
		for _, o := range offsets {
			if o < 0 {
				o = -o
			}
			if o > max {
				max = o
			}
		}
	}
	return max
}

func (ab ABConfig) Validate() error {
	if ab.Split < 0 || ab.Split > 1 {
		return fmt.Errorf("split must be in [0,1], got %v", ab.Split)
	}
	if err := ab.A.Validate(); err != nil {
		return fmt.Errorf("variant A: %w", err)
	}
	if err := ab.B.Validate(); err != nil {
		return fmt.Errorf("variant B: %w", err)
	}
	return nil
}

// Segment is an optional targeting predicate over patient age and static
// risk. Each bound is optional; a nil Segment matches every appointment.
type Segment struct {
	AgeMin  *int     `json:"age_min,omitempty"`
	AgeMax  *int     `json:"age_max,omitempty"`
	RiskMin *float64 `json:"risk_min,omitempty"`
	RiskMax *float64 `json:"risk_max,omitempty"`
}

// Matches evaluates the predicate against an appointment's age and
// static risk. Matching always uses the static risk, not the live one, so
// segment membership is stable over the appointment's life.
func (s *Segment) Matches(age int, staticRisk float64) bool {
	if s == nil {
		return true
	}
	if s.AgeMin != nil && age < *s.AgeMin {
		return false
	}
	if s.AgeMax != nil && age > *s.AgeMax {
		return false
	}
	if s.RiskMin != nil && staticRisk < *s.RiskMin {
		return false
	}
	if s.RiskMax != nil && staticRisk > *s.RiskMax {
		return false
	}
	return true
}

// Strategy is an outreach plan: an optional segment predicate plus an A/B
// configuration. At most one strategy in a deployment should be the
// default safety net.
type Strategy struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	IsDefault bool     `json:"is_default"`
	Segment   *Segment `json:"segment"`
	AB        ABConfig `json:"ab"`
}

func (s *Strategy) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.AB.Validate()
}
