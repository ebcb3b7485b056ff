package eventlog

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemRepo is an in-memory append-only Repository. Entries keep their
// insertion order, which is also timestamp order since the writer is
// serialized.
type MemRepo struct {
	mu      sync.RWMutex
	entries []*Entry
}

func NewMemRepo() *MemRepo {
	return &MemRepo{}
}

func (r *MemRepo) Append(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *MemRepo) ListByAppointmentDay(_ context.Context, dayIndex int) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Entry
	for _, e := range r.entries {
		if e.AppointmentDayIndex == dayIndex {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *MemRepo) ListBySendDay(_ context.Context, dayIndex int) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Entry
	for _, e := range r.entries {
		if e.SendDayIndex == dayIndex {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *MemRepo) ListByAppointment(_ context.Context, appointmentID uuid.UUID) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Entry
	for _, e := range r.entries {
		if e.AppointmentID == appointmentID {
			out = append(out, e)
		}
	}
	return out, nil
}
