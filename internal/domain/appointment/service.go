package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListDay returns the summary rows for a day, ordered by scheduled time.
func (s *Service) ListDay(ctx context.Context, dayIndex int) ([]Summary, error) {
	appts, err := s.repo.ListByDay(ctx, dayIndex)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(appts))
	for _, a := range appts {
		out = append(out, a.Summarize())
	}
	return out, nil
}
