package deployment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/attendsim/attendsim/internal/domain/appointment"
	"github.com/attendsim/attendsim/internal/domain/strategy"
)

type stubClock struct{ today int }

func (c stubClock) Today() int { return c.today }

func (c stubClock) DayIndexForDate(dateISO string) (int, error) {
	t, err := time.Parse("2006-01-02", dateISO)
	if err != nil {
		return 0, err
	}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(start).Hours() / 24), nil
}

// stubRNG returns a fixed sequence of draws, then zeros.
type stubRNG struct {
	floats []float64
	idx    int
}

func (s *stubRNG) Float64() float64 {
	if s.idx >= len(s.floats) {
		return 0
	}
	v := s.floats[s.idx]
	s.idx++
	return v
}

func (s *stubRNG) IntN(n int) int { return 0 }

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func newAppt(t *testing.T, repo appointment.Repository, day, age int, staticRisk float64) *appointment.Appointment {
	t.Helper()
	a := appointment.New(
		appointment.Patient{Name: "Alex Smith", Age: age},
		time.Date(2026, 3, 1+day, 10, 0, 0, 0, time.UTC),
		day,
		map[string]any{},
		staticRisk,
	)
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return a
}

func newStrategy(t *testing.T, repo strategy.Repository, id string, isDefault bool, seg *strategy.Segment, offsets []int) *strategy.Strategy {
	t.Helper()
	s := &strategy.Strategy{
		ID:        id,
		Name:      id,
		IsDefault: isDefault,
		Segment:   seg,
		AB: strategy.ABConfig{
			Split: 0.5,
			A:     strategy.VariantConfig{Kind: strategy.CommSMS, DaysOfAction: offsets},
			B:     strategy.VariantConfig{Kind: strategy.CommCall, DaysOfAction: offsets},
		},
	}
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("create strategy: %v", err)
	}
	return s
}

func newService(clock Clock, src *stubRNG, appts appointment.Repository, strats strategy.Repository) *Service {
	return NewService(NewMemRepo(), appts, strats, clock, src, zerolog.Nop())
}

func TestDeployFirstMatchWins(t *testing.T) {
	appts := appointment.NewMemRepo()
	strats := strategy.NewMemRepo()
	// Both segments match the appointment; the first listed must claim it.
	newStrategy(t, strats, "strat-1", false, &strategy.Segment{RiskMin: floatPtr(0.4)}, []int{-1})
	newStrategy(t, strats, "strat-2", false, &strategy.Segment{AgeMin: intPtr(18)}, []int{-1})
	a := newAppt(t, appts, 2, 25, 0.6)

	svc := newService(stubClock{today: 0}, &stubRNG{}, appts, strats)
	if _, err := svc.Deploy(context.Background(), 2, []string{"strat-1", "strat-2"}); err != nil {
		t.Fatalf("deploy: %v", err)
	}

	got, err := appts.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.AppliedStrategyIDs) != 1 || got.AppliedStrategyIDs[0] != "strat-1" {
		t.Fatalf("expected only strat-1 applied, got %v", got.AppliedStrategyIDs)
	}
}

func TestDeployDefaultSweepsUnmatched(t *testing.T) {
	appts := appointment.NewMemRepo()
	strats := strategy.NewMemRepo()
	newStrategy(t, strats, "strat-1", false, &strategy.Segment{RiskMin: floatPtr(0.9)}, []int{-1})
	newStrategy(t, strats, "strat-default", true, nil, []int{-1})
	low := newAppt(t, appts, 2, 25, 0.2)
	high := newAppt(t, appts, 2, 25, 0.95)

	svc := newService(stubClock{today: 0}, &stubRNG{}, appts, strats)
	if _, err := svc.Deploy(context.Background(), 2, []string{"strat-1", "strat-default"}); err != nil {
		t.Fatalf("deploy: %v", err)
	}

	gotLow, _ := appts.GetByID(context.Background(), low.ID)
	if len(gotLow.AppliedStrategyIDs) != 1 || gotLow.AppliedStrategyIDs[0] != "strat-default" {
		t.Fatalf("unmatched appointment should get the default, got %v", gotLow.AppliedStrategyIDs)
	}
	gotHigh, _ := appts.GetByID(context.Background(), high.ID)
	if len(gotHigh.AppliedStrategyIDs) != 1 || gotHigh.AppliedStrategyIDs[0] != "strat-1" {
		t.Fatalf("matched appointment must not get the default, got %v", gotHigh.AppliedStrategyIDs)
	}
}

func TestDeployVariantSplit(t *testing.T) {
	appts := appointment.NewMemRepo()
	strats := strategy.NewMemRepo()
	newStrategy(t, strats, "strat-1", false, nil, []int{-1})
	a := newAppt(t, appts, 2, 25, 0.6)
	b := newAppt(t, appts, 2, 30, 0.6)

	// First draw below the split picks A, second above picks B.
	src := &stubRNG{floats: []float64{0.1, 0.9}}
	svc := newService(stubClock{today: 0}, src, appts, strats)
	if _, err := svc.Deploy(context.Background(), 2, []string{"strat-1"}); err != nil {
		t.Fatalf("deploy: %v", err)
	}

	gotA, _ := appts.GetByID(context.Background(), a.ID)
	gotB, _ := appts.GetByID(context.Background(), b.ID)
	variants := map[string]bool{gotA.Variant: true, gotB.Variant: true}
	if !variants[strategy.VariantA] || !variants[strategy.VariantB] {
		t.Fatalf("expected one A and one B assignment, got %q and %q", gotA.Variant, gotB.Variant)
	}
}

func TestDeployWindowTooNarrow(t *testing.T) {
	appts := appointment.NewMemRepo()
	strats := strategy.NewMemRepo()
	newStrategy(t, strats, "strat-1", false, nil, []int{-3})

	svc := newService(stubClock{today: 0}, &stubRNG{}, appts, strats)
	_, err := svc.Deploy(context.Background(), 2, []string{"strat-1"})
	var we *WindowError
	if !errors.As(err, &we) {
		t.Fatalf("expected WindowError, got %v", err)
	}
	if we.MaxWindow != 3 || we.Available != 2 {
		t.Fatalf("unexpected window error: %+v", we)
	}
}

func TestDeploySkipsUnknownIDs(t *testing.T) {
	appts := appointment.NewMemRepo()
	strats := strategy.NewMemRepo()
	newStrategy(t, strats, "strat-1", false, nil, []int{-1})
	newAppt(t, appts, 2, 25, 0.6)

	svc := newService(stubClock{today: 0}, &stubRNG{}, appts, strats)
	dep, err := svc.Deploy(context.Background(), 2, []string{"strat-ghost", "strat-1"})
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if len(dep.StrategyIDs) != 1 || dep.StrategyIDs[0] != "strat-1" {
		t.Fatalf("unknown ids must be dropped, got %v", dep.StrategyIDs)
	}
}

func TestDeployRepeatedStrategyIsIdempotent(t *testing.T) {
	appts := appointment.NewMemRepo()
	strats := strategy.NewMemRepo()
	newStrategy(t, strats, "strat-1", false, nil, []int{-1})
	a := newAppt(t, appts, 2, 25, 0.6)

	svc := newService(stubClock{today: 0}, &stubRNG{}, appts, strats)
	for i := 0; i < 2; i++ {
		if _, err := svc.Deploy(context.Background(), 2, []string{"strat-1"}); err != nil {
			t.Fatalf("deploy %d: %v", i, err)
		}
	}
	got, _ := appts.GetByID(context.Background(), a.ID)
	if len(got.AppliedStrategyIDs) != 1 {
		t.Fatalf("re-deploying must not duplicate applied ids: %v", got.AppliedStrategyIDs)
	}
}
