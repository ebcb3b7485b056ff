package strategy

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemRepo is the in-memory strategy store.
type MemRepo struct {
	mu     sync.RWMutex
	strats map[string]*Strategy
}

func NewMemRepo() *MemRepo {
	return &MemRepo{strats: make(map[string]*Strategy)}
}

func (r *MemRepo) Create(_ context.Context, s *Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strats[s.ID]; ok {
		return fmt.Errorf("strategy %s already exists", s.ID)
	}
	r.strats[s.ID] = s
	return nil
}

func (r *MemRepo) GetByID(_ context.Context, id string) (*Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strats[id]
	if !ok {
		return nil, fmt.Errorf("strategy %s not found", id)
	}
	return s, nil
}

func (r *MemRepo) Update(_ context.Context, s *Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strats[s.ID]; !ok {
		return fmt.Errorf("strategy %s not found", s.ID)
	}
	r.strats[s.ID] = s
	return nil
}

func (r *MemRepo) List(_ context.Context) ([]*Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Strategy, 0, len(r.strats))
	for _, s := range r.strats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
