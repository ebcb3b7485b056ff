package appointment

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemRepo is the in-memory appointment store. The simulation keeps all
// state in process; there is no persistence across restarts.
type MemRepo struct {
	mu    sync.RWMutex
	appts map[uuid.UUID]*Appointment
}

func NewMemRepo() *MemRepo {
	return &MemRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (r *MemRepo) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if _, ok := r.appts[a.ID]; ok {
		return fmt.Errorf("appointment %s already exists", a.ID)
	}
	r.appts[a.ID] = a
	return nil
}

func (r *MemRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, fmt.Errorf("appointment %s not found", id)
	}
	return a, nil
}

func (r *MemRepo) ListByDay(_ context.Context, dayIndex int) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Appointment
	for _, a := range r.appts {
		if a.DayIndex == dayIndex {
			out = append(out, a)
		}
	}
	sortByTime(out)
	return out, nil
}

func (r *MemRepo) ListAll(_ context.Context) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Appointment, 0, len(r.appts))
	for _, a := range r.appts {
		out = append(out, a)
	}
	sortByTime(out)
	return out, nil
}

func (r *MemRepo) Update(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appts[a.ID]; !ok {
		return fmt.Errorf("appointment %s not found", a.ID)
	}
	r.appts[a.ID] = a
	return nil
}

func sortByTime(appts []*Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].ScheduledAt.Equal(appts[j].ScheduledAt) {
			return appts[i].ID.String() < appts[j].ID.String()
		}
		return appts[i].ScheduledAt.Before(appts[j].ScheduledAt)
	})
}
