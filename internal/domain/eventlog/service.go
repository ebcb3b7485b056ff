package eventlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service exposes read access to the event log for API handlers. Writes
// go through the simulation engine, which appends directly to the
// repository while holding its own lock.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "eventlog").Logger()}
}

// ListForDay returns every entry whose appointment falls on the given day.
func (s *Service) ListForDay(ctx context.Context, dayIndex int) ([]*Entry, error) {
	return s.repo.ListByAppointmentDay(ctx, dayIndex)
}

// ListForAppointment returns the full history for one appointment.
func (s *Service) ListForAppointment(ctx context.Context, id uuid.UUID) ([]*Entry, error) {
	return s.repo.ListByAppointment(ctx, id)
}
