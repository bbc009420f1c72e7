package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"campaign-grants/internal/domain/grants"
	"campaign-grants/internal/domain/resources"
)

const grantColumns = `
	id, holder_id, ability_id, issuer_id,
	title, detail, image_url,
	transferable, reuse_policy, cooldown_minutes, expires_at, effect,
	is_active, times_used, last_used_at,
	version, created_at, updated_at`

type GrantsStore struct {
	db *sql.DB
}

func NewGrantsStore(db *sql.DB) *GrantsStore {
	return &GrantsStore{db: db}
}

// WithinTx corre fn en READ COMMITTED; los locks los toman GetGrantForUpdate
// y LockResources. Errores de serialización o deadlock salen como ErrConflict.
func (s *GrantsStore) WithinTx(ctx context.Context, fn func(tx grants.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(&grantsTx{tx: sqlTx}); err != nil {
		return txError(err)
	}
	if err := sqlTx.Commit(); err != nil {
		return txError(err)
	}
	return nil
}

// txError traduce a grants.ErrConflict todo lo que el motor debe reintentar,
// incluido un resources.ErrConflict de la escritura del ledger.
func txError(err error) error {
	if isRetryable(err) || errors.Is(err, resources.ErrConflict) {
		return fmt.Errorf("%w: %v", grants.ErrConflict, err)
	}
	return err
}

func (s *GrantsStore) GetByID(ctx context.Context, id string) (grants.AbilityGrant, error) {
	return selectGrant(ctx, s.db, strings.TrimSpace(id), false)
}

func (s *GrantsStore) ListByHolder(ctx context.Context, holderID string) ([]grants.AbilityGrant, error) {
	holderID = strings.TrimSpace(holderID)
	if holderID == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+grantColumns+`
		FROM ability_grants
		WHERE holder_id = $1
		ORDER BY created_at ASC, id ASC
	`, holderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]grants.AbilityGrant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *GrantsStore) ListUsage(ctx context.Context, grantID string) ([]grants.UsageLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id, grant_id, holder_id, actor_id, action,
			effect, applied, cost,
			reference_code, note, target_holder_id, created_at
		FROM grant_usage_log
		WHERE grant_id = $1
		ORDER BY seq ASC
	`, strings.TrimSpace(grantID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]grants.UsageLogEntry, 0)
	for rows.Next() {
		var (
			e               grants.UsageLogEntry
			action          string
			effect, applied []byte
			refCode, target sql.NullString
		)
		if err := rows.Scan(
			&e.ID,
			&e.GrantID,
			&e.HolderID,
			&e.ActorID,
			&action,
			&effect,
			&applied,
			&e.Cost,
			&refCode,
			&e.Note,
			&target,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Action = grants.Action(action)
		e.ReferenceCode = refCode.String
		e.TargetHolderID = target.String
		if e.Effect, err = decodeVector(effect); err != nil {
			return nil, err
		}
		if e.Applied, err = decodeVector(applied); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// -------------------------
// Tx
// -------------------------

type grantsTx struct {
	tx *sql.Tx
}

func (t *grantsTx) GetGrantForUpdate(ctx context.Context, id string) (grants.AbilityGrant, error) {
	return selectGrant(ctx, t.tx, strings.TrimSpace(id), true)
}

func (t *grantsTx) InsertGrant(ctx context.Context, g grants.AbilityGrant) error {
	effect, err := json.Marshal(g.Effect)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO ability_grants (`+grantColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		g.ID,
		g.HolderID,
		g.AbilityID,
		g.IssuerID,
		g.Title,
		g.Detail,
		g.ImageURL,
		g.Transferable,
		string(g.Policy.Kind()),
		cooldownColumn(g.Policy),
		toNullTime(g.ExpiresAt),
		effect,
		g.IsActive,
		g.TimesUsed,
		toNullTime(g.LastUsedAt),
		g.Version,
		g.CreatedAt,
		g.UpdatedAt,
	)
	return err
}

// UpdateGrant escribe solo si la versión guardada sigue siendo g.Version.
func (t *grantsTx) UpdateGrant(ctx context.Context, g grants.AbilityGrant) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE ability_grants
		SET
			holder_id = $3,
			title = $4,
			detail = $5,
			image_url = $6,
			transferable = $7,
			is_active = $8,
			times_used = $9,
			last_used_at = $10,
			updated_at = $11,
			version = version + 1
		WHERE id = $1 AND version = $2
	`,
		g.ID,
		g.Version,
		g.HolderID,
		g.Title,
		g.Detail,
		g.ImageURL,
		g.Transferable,
		g.IsActive,
		g.TimesUsed,
		toNullTime(g.LastUsedAt),
		g.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return grants.ErrConflict
	}
	return nil
}

func (t *grantsTx) AppendUsage(ctx context.Context, e grants.UsageLogEntry) error {
	effect, err := encodeVector(e.Effect)
	if err != nil {
		return err
	}
	applied, err := encodeVector(e.Applied)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO grant_usage_log (
			id, grant_id, holder_id, actor_id, action,
			effect, applied, cost,
			reference_code, note, target_holder_id, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		e.ID,
		e.GrantID,
		e.HolderID,
		e.ActorID,
		string(e.Action),
		effect,
		applied,
		e.Cost,
		toNullString(e.ReferenceCode),
		e.Note,
		toNullString(e.TargetHolderID),
		e.CreatedAt,
	)
	return err
}

func (t *grantsTx) LockResources(ctx context.Context, holderID string) (resources.State, error) {
	return selectResources(ctx, t.tx, holderID, true)
}

func (t *grantsTx) SetResourceFields(ctx context.Context, holderID string, p resources.Patch) (resources.State, error) {
	return updateResourceFields(ctx, t.tx, holderID, p)
}

// helpers

func selectGrant(ctx context.Context, q querier, id string, forUpdate bool) (grants.AbilityGrant, error) {
	if id == "" {
		return grants.AbilityGrant{}, grants.ErrNotFound
	}
	query := `SELECT ` + grantColumns + ` FROM ability_grants WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	g, err := scanGrant(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return grants.AbilityGrant{}, grants.ErrNotFound
	}
	return g, err
}

func scanGrant(s scanner) (grants.AbilityGrant, error) {
	var (
		g          grants.AbilityGrant
		policy     string
		cooldown   sql.NullInt64
		expiresAt  sql.NullTime
		lastUsedAt sql.NullTime
		effect     []byte
	)
	if err := s.Scan(
		&g.ID,
		&g.HolderID,
		&g.AbilityID,
		&g.IssuerID,
		&g.Title,
		&g.Detail,
		&g.ImageURL,
		&g.Transferable,
		&policy,
		&cooldown,
		&expiresAt,
		&effect,
		&g.IsActive,
		&g.TimesUsed,
		&lastUsedAt,
		&g.Version,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return grants.AbilityGrant{}, err
	}

	var minutes *int
	if cooldown.Valid {
		m := int(cooldown.Int64)
		minutes = &m
	}
	p, err := grants.ParsePolicy(policy, minutes)
	if err != nil {
		return grants.AbilityGrant{}, fmt.Errorf("grant %s: stored policy: %w", g.ID, err)
	}
	g.Policy = p

	if len(effect) > 0 {
		if err := json.Unmarshal(effect, &g.Effect); err != nil {
			return grants.AbilityGrant{}, fmt.Errorf("grant %s: effect: %w", g.ID, err)
		}
	}
	g.ExpiresAt = fromNullTime(expiresAt)
	g.LastUsedAt = fromNullTime(lastUsedAt)
	return g, nil
}

func cooldownColumn(p grants.ReusePolicy) sql.NullInt64 {
	m, ok := p.CooldownMinutes()
	if !ok {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(m), Valid: true}
}

func encodeVector(v *grants.EffectVector) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func decodeVector(b []byte) (*grants.EffectVector, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var v grants.EffectVector
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
