package roster

import "context"

// Repository: GetByID devuelve ErrNotFound si no existe; Create devuelve ErrAlreadyExists si el id está tomado.
type Repository interface {
	Create(ctx context.Context, m Member) error
	GetByID(ctx context.Context, id string) (Member, error)
	List(ctx context.Context) ([]Member, error)
}
