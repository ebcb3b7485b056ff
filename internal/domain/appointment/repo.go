package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// ListByDay returns the day's appointments ordered by scheduled time.
	ListByDay(ctx context.Context, dayIndex int) ([]*Appointment, error)
	ListAll(ctx context.Context) ([]*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
}
