package abilities

import "context"

type Repository interface {
	Create(ctx context.Context, a Ability) error
	GetByID(ctx context.Context, id string) (Ability, error)
	List(ctx context.Context) ([]Ability, error)
}
