// Package seed loads the demo cohort: three outreach strategies and a
// day of appointments to run them against.
package seed

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/attendsim/attendsim/internal/domain/appointment"
	"github.com/attendsim/attendsim/internal/domain/strategy"
	"github.com/attendsim/attendsim/internal/platform/risk"
	"github.com/attendsim/attendsim/internal/platform/rng"
)

// Clock maps a simulated day and hour to an instant.
type Clock interface {
	TimeForDayHour(day, hour int) time.Time
}

var firstNames = []string{"Alex", "Sam", "Chris", "Taylor", "Jordan", "Morgan", "Jamie", "Charlie", "Casey", "Riley", "Rowan", "Harper", "Avery"}

var lastNames = []string{"Smith", "Jones", "Brown", "Taylor", "Wilson", "Evans", "Thompson", "Johnson", "Walker", "Wright", "Hughes", "Green"}

const (
	demoDay       = 2
	demoCohort    = 10
	demoPhone     = "+44 7000 000000"
	maxDistanceKM = 20.0
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// Strategies installs the three demo strategies: two segmented outreach
// plans and a default safety net.
func Strategies(ctx context.Context, repo strategy.Repository) error {
	strategies := []*strategy.Strategy{
		{
			ID:      "strat-1",
			Name:    "High Risk Outreach",
			Segment: &strategy.Segment{AgeMin: intPtr(18), AgeMax: intPtr(80), RiskMin: floatPtr(0.5), RiskMax: floatPtr(1.0)},
			AB: strategy.ABConfig{
				Split: 0.5,
				A:     strategy.VariantConfig{Kind: strategy.CommSMS, DaysOfAction: []int{-1}},
				B:     strategy.VariantConfig{Kind: strategy.CommCall, DaysOfAction: []int{-1}},
			},
		},
		{
			ID:      "strat-2",
			Name:    "Young Cohort SMS",
			Segment: &strategy.Segment{AgeMin: intPtr(18), AgeMax: intPtr(30), RiskMin: floatPtr(0.3), RiskMax: floatPtr(1.0)},
			AB: strategy.ABConfig{
				Split: 0.5,
				A:     strategy.VariantConfig{Kind: strategy.CommSMS, DaysOfAction: []int{-1}},
				B:     strategy.VariantConfig{Kind: strategy.CommSMS, DaysOfAction: []int{-1}},
			},
		},
		{
			ID:        "strat-default",
			Name:      "Default Safety Net",
			IsDefault: true,
			AB: strategy.ABConfig{
				Split: 1.0,
				A:     strategy.VariantConfig{Kind: strategy.CommSMS, DaysOfAction: []int{-1}},
				B:     strategy.VariantConfig{Kind: strategy.CommSMS, DaysOfAction: []int{-1}},
			},
		},
	}
	for _, s := range strategies {
		if err := repo.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Appointments seeds the demo cohort on day 2, slotted hourly from 09:00.
func Appointments(ctx context.Context, repo appointment.Repository, clock Clock, provider risk.Provider, src rng.Source) error {
	for i := 0; i < demoCohort; i++ {
		hour := 9 + (i % 9)
		scheduledAt := clock.TimeForDayHour(demoDay, hour)
		name := randName(src)
		age := 18 + src.IntN(68)
		features := map[string]any{
			"age":           age,
			"prev_no_shows": src.IntN(3),
			"distance_km":   math.Round(src.Float64()*maxDistanceKM*10) / 10,
			"slot_hour":     hour,
			"new_patient":   src.IntN(2) == 1,
			"weekday":       mondayIndexed(scheduledAt.Weekday()),
		}
		static, err := provider.Predict(ctx, features)
		if err != nil {
			return err
		}
		patient := appointment.Patient{
			Name:  name,
			Age:   age,
			Phone: demoPhone,
			Email: fmt.Sprintf("%s@example.com", strings.ToLower(strings.Fields(name)[0])),
		}
		if err := repo.Create(ctx, appointment.New(patient, scheduledAt, demoDay, features, static)); err != nil {
			return err
		}
	}
	return nil
}

// Demo seeds both strategies and the appointment cohort.
func Demo(ctx context.Context, appts appointment.Repository, strategies strategy.Repository, clock Clock, provider risk.Provider, src rng.Source, logger zerolog.Logger) error {
	if err := Strategies(ctx, strategies); err != nil {
		return err
	}
	if err := Appointments(ctx, appts, clock, provider, src); err != nil {
		return err
	}
	logger.Info().Int("appointments", demoCohort).Int("day_index", demoDay).Msg("seeded demo data")
	return nil
}

func randName(src rng.Source) string {
	return firstNames[src.IntN(len(firstNames))] + " " + lastNames[src.IntN(len(lastNames))]
}

// mondayIndexed converts Go's Sunday-first weekday to Monday=0.
func mondayIndexed(w time.Weekday) int {
	return (int(w) + 6) % 7
}
