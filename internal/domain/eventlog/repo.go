package eventlog

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the append-only store for event entries. Queries return
// entries in emission order.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	ListByAppointmentDay(ctx context.Context, dayIndex int) ([]*Entry, error)
	ListBySendDay(ctx context.Context, dayIndex int) ([]*Entry, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Entry, error)
}
