package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"campaign-grants/internal/domain/abilities"
)

type AbilitiesRepo struct {
	db *sql.DB
}

func NewAbilitiesRepo(db *sql.DB) *AbilitiesRepo {
	return &AbilitiesRepo{db: db}
}

func (r *AbilitiesRepo) Create(ctx context.Context, a abilities.Ability) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO abilities (id, name, description, base_cost, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		a.ID,
		a.Name,
		a.Description,
		a.BaseCost,
		a.CreatedAt,
	)
	return err
}

func (r *AbilitiesRepo) GetByID(ctx context.Context, id string) (abilities.Ability, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return abilities.Ability{}, abilities.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, base_cost, created_at
		FROM abilities
		WHERE id = $1
	`, id)

	var a abilities.Ability
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.BaseCost, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return abilities.Ability{}, abilities.ErrNotFound
		}
		return abilities.Ability{}, err
	}
	return a, nil
}

func (r *AbilitiesRepo) List(ctx context.Context) ([]abilities.Ability, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, base_cost, created_at
		FROM abilities
		ORDER BY lower(name) ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]abilities.Ability, 0)
	for rows.Next() {
		var a abilities.Ability
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.BaseCost, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
