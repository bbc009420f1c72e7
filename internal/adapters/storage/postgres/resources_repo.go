package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campaign-grants/internal/domain/resources"
)

const resourceColumns = `holder_id, health, vitality, max_vitality, travel, max_travel, reserve, max_reserve, progress, version, updated_at`

// querier lo cumplen *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ResourcesRepo struct {
	db *sql.DB
}

func NewResourcesRepo(db *sql.DB) *ResourcesRepo {
	return &ResourcesRepo{db: db}
}

func (r *ResourcesRepo) Get(ctx context.Context, holderID string) (resources.State, error) {
	return selectResources(ctx, r.db, strings.TrimSpace(holderID), false)
}

func (r *ResourcesRepo) Put(ctx context.Context, s resources.State) (resources.State, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO character_resources (`+resourceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,1,$10)
		ON CONFLICT (holder_id) DO UPDATE SET
			health = EXCLUDED.health,
			vitality = EXCLUDED.vitality,
			max_vitality = EXCLUDED.max_vitality,
			travel = EXCLUDED.travel,
			max_travel = EXCLUDED.max_travel,
			reserve = EXCLUDED.reserve,
			max_reserve = EXCLUDED.max_reserve,
			progress = EXCLUDED.progress,
			version = character_resources.version + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING `+resourceColumns,
		s.HolderID,
		s.Health,
		s.Vitality,
		s.MaxVitality,
		s.Travel,
		s.MaxTravel,
		s.Reserve,
		s.MaxReserve,
		s.Progress,
		time.Now().UTC(),
	)
	out, err := scanResources(row)
	if isRetryable(err) {
		return resources.State{}, resources.ErrConflict
	}
	return out, err
}

// ApplyDelta hace read-modify-write con la fila tomada con FOR UPDATE.
func (r *ResourcesRepo) ApplyDelta(ctx context.Context, holderID string, f resources.Field, delta int, clampMax bool) (resources.State, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return resources.State{}, err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := selectResources(ctx, tx, strings.TrimSpace(holderID), true)
	if err != nil {
		return resources.State{}, err
	}
	next := cur.ApplyDelta(f, delta, clampMax)

	out, err := updateResourceFields(ctx, tx, cur.HolderID, resources.Diff(cur, next))
	if err != nil {
		return resources.State{}, err
	}
	if err := tx.Commit(); err != nil {
		return resources.State{}, resourceWriteError(err)
	}
	return out, nil
}

func selectResources(ctx context.Context, q querier, holderID string, forUpdate bool) (resources.State, error) {
	if holderID == "" {
		return resources.State{}, resources.ErrNotFound
	}
	query := `SELECT ` + resourceColumns + ` FROM character_resources WHERE holder_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	st, err := scanResources(q.QueryRowContext(ctx, query, holderID))
	if errors.Is(err, sql.ErrNoRows) {
		return resources.State{}, resources.ErrNotFound
	}
	return st, err
}

// updateResourceFields escribe solo las columnas del patch. Los nombres de
// columna salen de resources.Fields, nunca del input.
func updateResourceFields(ctx context.Context, q querier, holderID string, p resources.Patch) (resources.State, error) {
	if len(p) == 0 {
		return selectResources(ctx, q, holderID, false)
	}

	sets := make([]string, 0, len(p)+2)
	args := []any{holderID}
	for _, f := range resources.Fields {
		v, ok := p[f]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", string(f), len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)), "version = version + 1")

	row := q.QueryRowContext(ctx, `
		UPDATE character_resources
		SET `+strings.Join(sets, ", ")+`
		WHERE holder_id = $1
		RETURNING `+resourceColumns, args...)

	st, err := scanResources(row)
	if err != nil {
		return resources.State{}, resourceWriteError(err)
	}
	return st, nil
}

// resourceWriteError conserva el *pgconn.PgError junto a ErrConflict: dentro
// de un grantsTx, WithinTx lo sigue viendo como reintentable.
func resourceWriteError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return resources.ErrNotFound
	case isRetryable(err):
		return fmt.Errorf("%w: %w", resources.ErrConflict, err)
	}
	return err
}

func scanResources(s scanner) (resources.State, error) {
	var st resources.State
	err := s.Scan(
		&st.HolderID,
		&st.Health,
		&st.Vitality,
		&st.MaxVitality,
		&st.Travel,
		&st.MaxTravel,
		&st.Reserve,
		&st.MaxReserve,
		&st.Progress,
		&st.Version,
		&st.UpdatedAt,
	)
	return st, err
}
