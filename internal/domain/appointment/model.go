package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/attendsim/attendsim/internal/platform/risk"
)

// Outcome is the settled attendance result of an appointment. It leaves
// "unknown" exactly once and never changes afterwards.
type Outcome string

const (
	OutcomeUnknown  Outcome = "unknown"
	OutcomeAttended Outcome = "attended"
	OutcomeNoShow   Outcome = "no_show"
)

// Predicted outcome labels derived from risk.
const (
	PredictedAttend = "attend"
	PredictedNoShow = "no_show"
)

// PredThreshold is the risk above which an appointment is predicted a
// no-show.
const PredThreshold = 0.50

// Patient is the demographic descriptor attached to an appointment.
type Patient struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// CommRecord is one entry in an appointment's communications history.
type CommRecord struct {
	TS      time.Time `json:"ts"`
	Type    string    `json:"type"`
	Variant string    `json:"variant,omitempty"`
	Note    string    `json:"note"`
}

// Appointment is the central entity of the simulation. StaticRisk is
// computed once at creation and never rewritten; LiveRisk starts equal to
// it and is revised by the communications pipeline, always clamped to
// [0.01, 0.99].
type Appointment struct {
	ID          uuid.UUID      `json:"id"`
	Patient     Patient        `json:"patient"`
	ScheduledAt time.Time      `json:"datetime"`
	DayIndex    int            `json:"dayIndex"`
	Features    map[string]any `json:"features"`

	StaticRisk      float64 `json:"static_risk"`
	LiveRisk        float64 `json:"live_adjusted_risk"`
	PredictedStatic string  `json:"predicted_outcome_static"`
	PredictedLive   string  `json:"predicted_outcome_live"`

	Variant            string       `json:"strategy_variant"`
	AppliedStrategyIDs []string     `json:"strategy_applied_ids"`
	CommsHistory       []CommRecord `json:"comms_history"`
	Outcome            Outcome      `json:"outcome"`

	// AdjustedDay records the last simulated day the live-risk adjustment
	// ran for this appointment; -1 until the first run. It is the
	// per-day idempotence guard.
	AdjustedDay int `json:"live_adjusted_day"`
}

// New builds an appointment with its risk fields initialized from the
// static score.
func New(patient Patient, scheduledAt time.Time, dayIndex int, features map[string]any, staticRisk float64) *Appointment {
	staticRisk = risk.Round3(risk.Clamp(staticRisk))
	return &Appointment{
		ID:                 uuid.New(),
		Patient:            patient,
		ScheduledAt:        scheduledAt,
		DayIndex:           dayIndex,
		Features:           features,
		StaticRisk:         staticRisk,
		LiveRisk:           staticRisk,
		PredictedStatic:    PredictedFromRisk(staticRisk),
		PredictedLive:      PredictedFromRisk(staticRisk),
		AppliedStrategyIDs: []string{},
		CommsHistory:       []CommRecord{},
		Outcome:            OutcomeUnknown,
		AdjustedDay:        -1,
	}
}

// PredictedFromRisk thresholds a risk into a predicted outcome label.
func PredictedFromRisk(p float64) string {
	if p >= PredThreshold {
		return PredictedNoShow
	}
	return PredictedAttend
}

// SetLiveRisk clamps, rounds and stores a new live risk, keeping the
// derived prediction in sync.
func (a *Appointment) SetLiveRisk(p float64) {
	a.LiveRisk = risk.Round3(risk.Clamp(p))
	a.PredictedLive = PredictedFromRisk(a.LiveRisk)
}

// ApplyCommFactor multiplies the live risk by a communication effect
// factor.
func (a *Appointment) ApplyCommFactor(factor float64) {
	a.SetLiveRisk(a.LiveRisk * factor)
}

// RecordComm appends to the communications history.
func (a *Appointment) RecordComm(kind, note string, at time.Time) {
	a.CommsHistory = append(a.CommsHistory, CommRecord{TS: at, Type: kind, Variant: a.Variant, Note: note})
}

// ApplyStrategy records a strategy id (once) and the assigned variant.
func (a *Appointment) ApplyStrategy(strategyID, variant string) {
	a.Variant = variant
	for _, id := range a.AppliedStrategyIDs {
		if id == strategyID {
			return
		}
	}
	a.AppliedStrategyIDs = append(a.AppliedStrategyIDs, strategyID)
}

// Settle records the final outcome. It reports whether the transition
// happened; a settled appointment is never re-settled.
func (a *Appointment) Settle(outcome Outcome) bool {
	if a.Outcome != OutcomeUnknown {
		return false
	}
	a.Outcome = outcome
	return true
}

// NeedsAdjustment reports whether the live-risk adjustment has not yet
// run for the given day.
func (a *Appointment) NeedsAdjustment(day int) bool {
	return a.AdjustedDay != day
}

// MarkAdjusted sets the per-day idempotence guard.
func (a *Appointment) MarkAdjusted(day int) {
	a.AdjustedDay = day
}

// Summary is the list-endpoint row for an appointment.
type Summary struct {
	ID            uuid.UUID `json:"id"`
	Patient       Patient   `json:"patient"`
	Time          string    `json:"time"`
	LiveRisk      float64   `json:"live_adjusted_risk"`
	PredictedLive string    `json:"predicted_outcome_live"`
	Outcome       Outcome   `json:"outcome"`
	Variant       string    `json:"strategy_variant"`
}

// Summarize projects the appointment into its list row. Time is the
// scheduled HH:MM in UTC.
func (a *Appointment) Summarize() Summary {
	return Summary{
		ID:            a.ID,
		Patient:       a.Patient,
		Time:          a.ScheduledAt.UTC().Format("15:04"),
		LiveRisk:      a.LiveRisk,
		PredictedLive: a.PredictedLive,
		Outcome:       a.Outcome,
		Variant:       a.Variant,
	}
}
