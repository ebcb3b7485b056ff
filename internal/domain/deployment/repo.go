package deployment

import (
	"context"
	"sync"
)

type Repository interface {
	Create(ctx context.Context, d *Deployment) error
	List(ctx context.Context) ([]*Deployment, error)
}

// MemRepo keeps deployments in memory, in creation order.
type MemRepo struct {
	mu   sync.RWMutex
	deps []*Deployment
}

func NewMemRepo() *MemRepo {
	return &MemRepo{}
}

func (r *MemRepo) Create(_ context.Context, d *Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deps = append(r.deps, d)
	return nil
}

func (r *MemRepo) List(_ context.Context) ([]*Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Deployment, len(r.deps))
	copy(out, r.deps)
	return out, nil
}
