package deployment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/attendsim/attendsim/internal/domain/appointment"
	"github.com/attendsim/attendsim/internal/domain/strategy"
	"github.com/attendsim/attendsim/internal/platform/rng"
)

// Clock is the slice of the simulation engine deployment needs.
type Clock interface {
	Today() int
	DayIndexForDate(dateISO string) (int, error)
}

// WindowError rejects a deployment whose widest strategy offset does not
// fit between today and the target day.
type WindowError struct {
	MaxWindow int
	Available int
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("strategy window exceeds available days (need %d, have %d)", e.MaxWindow, e.Available)
}

// Service assigns strategies to a target day's appointments and records
// the deployment.
type Service struct {
	repo       Repository
	appts      appointment.Repository
	strategies strategy.Repository
	clock      Clock
	rng        rng.Source
	logger     zerolog.Logger
}

func NewService(repo Repository, appts appointment.Repository, strategies strategy.Repository, clock Clock, src rng.Source, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		appts:      appts,
		strategies: strategies,
		clock:      clock,
		rng:        src,
		logger:     logger.With().Str("component", "deployment").Logger(),
	}
}

// pickVariant draws the A/B arm for one appointment.
func (s *Service) pickVariant(split float64) string {
	if s.rng.Float64() < split {
		return strategy.VariantA
	}
	return strategy.VariantB
}

// Deploy resolves the given strategy ids, checks their lead-time window
// against the target day, and assigns them to that day's appointments.
// Non-default strategies are tried in the given order and the first whose
// segment matches an appointment claims it; a default strategy, if
// included, sweeps up whatever is left. Unknown ids are skipped.
func (s *Service) Deploy(ctx context.Context, targetDay int, strategyIDs []string) (*Deployment, error) {
	var chosen []*strategy.Strategy
	for _, sid := range strategyIDs {
		strat, err := s.strategies.GetByID(ctx, sid)
		if err != nil {
			continue
		}
		chosen = append(chosen, strat)
	}

	maxWindow := 0
	for _, strat := range chosen {
		if w := strat.AB.MaxOffsetMagnitude(); w > maxWindow {
			maxWindow = w
		}
	}
	available := targetDay - s.clock.Today()
	if maxWindow > available {
		return nil, &WindowError{MaxWindow: maxWindow, Available: available}
	}

	appts, err := s.appts.ListByDay(ctx, targetDay)
	if err != nil {
		return nil, err
	}

	matched := make(map[uuid.UUID]bool)
	for _, strat := range chosen {
		if strat.IsDefault {
			continue
		}
		for _, a := range appts {
			if matched[a.ID] || !strat.Segment.Matches(a.Patient.Age, a.StaticRisk) {
				continue
			}
			a.ApplyStrategy(strat.ID, s.pickVariant(strat.AB.Split))
			matched[a.ID] = true
			if err := s.appts.Update(ctx, a); err != nil {
				return nil, err
			}
		}
	}
	for _, strat := range chosen {
		if !strat.IsDefault {
			continue
		}
		for _, a := range appts {
			if matched[a.ID] {
				continue
			}
			a.ApplyStrategy(strat.ID, s.pickVariant(strat.AB.Split))
			if err := s.appts.Update(ctx, a); err != nil {
				return nil, err
			}
		}
		break
	}

	dep := &Deployment{ID: "dep-" + uuid.New().String(), TargetDay: targetDay, StrategyIDs: make([]string, 0, len(chosen))}
	for _, strat := range chosen {
		dep.StrategyIDs = append(dep.StrategyIDs, strat.ID)
	}
	if err := s.repo.Create(ctx, dep); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("deployment_id", dep.ID).
		Int("target_day", targetDay).
		Strs("strategy_ids", dep.StrategyIDs).
		Int("appointments", len(appts)).
		Msg("deployed strategies")

	return dep, nil
}
