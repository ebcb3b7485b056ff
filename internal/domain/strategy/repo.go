package strategy

import "context"

type Repository interface {
	Create(ctx context.Context, s *Strategy) error
	GetByID(ctx context.Context, id string) (*Strategy, error)
	Update(ctx context.Context, s *Strategy) error
	// List returns all strategies ordered by id.
	List(ctx context.Context) ([]*Strategy, error)
}
