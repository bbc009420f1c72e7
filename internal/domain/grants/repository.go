package grants

import (
	"context"

	"campaign-grants/internal/domain/abilities"
	"campaign-grants/internal/domain/resources"
)

// Store es la unidad de trabajo del motor. WithinTx confirma solo si fn devuelve nil;
// cualquier error revierte todo lo escrito vía tx.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	GetByID(ctx context.Context, id string) (AbilityGrant, error)
	ListByHolder(ctx context.Context, holderID string) ([]AbilityGrant, error)
	ListUsage(ctx context.Context, grantID string) ([]UsageLogEntry, error)
}

// Tx opera dentro de una transacción con las filas tomadas bajo lock.
//
// GetGrantForUpdate devuelve ErrNotFound si no existe. UpdateGrant compara
// g.Version con la versión guardada (ErrConflict si difiere) y la incrementa.
// LockResources devuelve resources.ErrNotFound si el holder no tiene fila.
// SetResourceFields escribe solo los campos del patch y devuelve la fila resultante.
type Tx interface {
	GetGrantForUpdate(ctx context.Context, id string) (AbilityGrant, error)
	InsertGrant(ctx context.Context, g AbilityGrant) error
	UpdateGrant(ctx context.Context, g AbilityGrant) error
	AppendUsage(ctx context.Context, e UsageLogEntry) error

	LockResources(ctx context.Context, holderID string) (resources.State, error)
	SetResourceFields(ctx context.Context, holderID string, p resources.Patch) (resources.State, error)
}

// Directory lo implementa roster.Service.
type Directory interface {
	IsAuthority(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Catalog lo implementa abilities.Service; Get devuelve abilities.ErrNotFound.
type Catalog interface {
	Get(ctx context.Context, id string) (abilities.Ability, error)
}
