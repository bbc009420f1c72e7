package resources

import "context"

// Repository es el único punto de mutación del ledger fuera del motor de grants.
// ApplyDelta hace read-modify-write bajo lock de la fila; Get devuelve ErrNotFound.
type Repository interface {
	Get(ctx context.Context, holderID string) (State, error)
	Put(ctx context.Context, s State) (State, error)
	ApplyDelta(ctx context.Context, holderID string, f Field, delta int, clampMax bool) (State, error)
}
