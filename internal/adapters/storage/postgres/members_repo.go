package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"campaign-grants/internal/domain/roster"
)

type MembersRepo struct {
	db *sql.DB
}

func NewMembersRepo(db *sql.DB) *MembersRepo {
	return &MembersRepo{db: db}
}

func (r *MembersRepo) Create(ctx context.Context, m roster.Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (id, display_name, role, created_at)
		VALUES ($1,$2,$3,$4)
	`,
		m.ID,
		m.DisplayName,
		string(m.Role),
		m.CreatedAt,
	)
	if pgCode(err) == codeUniqueViolation {
		return roster.ErrAlreadyExists
	}
	return err
}

func (r *MembersRepo) GetByID(ctx context.Context, id string) (roster.Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return roster.Member{}, roster.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, display_name, role, created_at
		FROM members
		WHERE id = $1
	`, id)

	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return roster.Member{}, roster.ErrNotFound
	}
	return m, err
}

func (r *MembersRepo) List(ctx context.Context) ([]roster.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, display_name, role, created_at
		FROM members
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]roster.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(s scanner) (roster.Member, error) {
	var m roster.Member
	var role string
	if err := s.Scan(&m.ID, &m.DisplayName, &role, &m.CreatedAt); err != nil {
		return roster.Member{}, err
	}
	m.Role = roster.Role(role)
	return m, nil
}
