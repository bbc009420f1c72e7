package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"time"

	"campaign-grants/internal/domain/abilities"
	"campaign-grants/internal/domain/grants"
	"campaign-grants/internal/domain/resources"
	"campaign-grants/internal/domain/roster"
	"campaign-grants/internal/notify"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	_ roster.Repository    = (*MembersRepo)(nil)
	_ abilities.Repository = (*AbilitiesRepo)(nil)
	_ resources.Repository = (*ResourcesRepo)(nil)
	_ grants.Store         = (*GrantsStore)(nil)
	_ grants.Tx            = (*grantsTx)(nil)
	_ notify.Outbox        = (*Outbox)(nil)
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock wrapped", fmt.Errorf("update: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Fatalf("isRetryable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResourceWriteErrorStaysRetryable(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "40P01"}

	err := resourceWriteError(pgErr)
	if !errors.Is(err, resources.ErrConflict) || !isRetryable(err) {
		t.Fatalf("deadlock must map to ErrConflict and stay retryable, got %v", err)
	}
	if err := resourceWriteError(sql.ErrNoRows); !errors.Is(err, resources.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	boom := errors.New("boom")
	if err := resourceWriteError(boom); err != boom {
		t.Fatalf("unexpected mapping for plain error: %v", err)
	}
}

func TestTxError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		conflict bool
	}{
		{"ledger deadlock", resourceWriteError(&pgconn.PgError{Code: "40P01"}), true},
		{"ledger conflict sentinel", fmt.Errorf("set fields: %w", resources.ErrConflict), true},
		{"serialization", &pgconn.PgError{Code: "40001"}, true},
		{"grant not found", grants.ErrNotFound, false},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := txError(tt.err)
			if errors.Is(got, grants.ErrConflict) != tt.conflict {
				t.Fatalf("txError(%v) = %v, conflict want %v", tt.err, got, tt.conflict)
			}
		})
	}
}

type rowStub []any

func (r rowStub) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return fmt.Errorf("scan: %d dest, %d values", len(dest), len(r))
	}
	for i, v := range r {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *bool:
			*d = v.(bool)
		case *int:
			*d = v.(int)
		case *int64:
			*d = v.(int64)
		case *[]byte:
			if v != nil {
				*d = v.([]byte)
			}
		case *time.Time:
			*d = v.(time.Time)
		case *sql.NullInt64:
			*d = v.(sql.NullInt64)
		case *sql.NullTime:
			*d = v.(sql.NullTime)
		default:
			return fmt.Errorf("scan: unsupported dest %T", dest[i])
		}
	}
	return nil
}

func grantRow(policy string, cooldown sql.NullInt64, effect []byte) rowStub {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return rowStub{
		"g-1", "ayla", "ab-1", "gm",
		"Veil", "", "",
		true, policy, cooldown, sql.NullTime{Time: now.Add(time.Hour), Valid: true}, effect,
		true, 2, sql.NullTime{Time: now, Valid: true},
		int64(3), now, now,
	}
}

func TestScanGrant(t *testing.T) {
	g, err := scanGrant(grantRow("cooldown", sql.NullInt64{Int64: 45, Valid: true}, []byte(`{"reserve":5,"max_travel":-1}`)))
	if err != nil {
		t.Fatalf("scanGrant error: %v", err)
	}
	if m, ok := g.Policy.CooldownMinutes(); !ok || m != 45 {
		t.Fatalf("policy = %v", g.Policy)
	}
	if g.Effect.Reserve != 5 || g.Effect.MaxTravel != -1 {
		t.Fatalf("effect = %+v", g.Effect)
	}
	if g.ExpiresAt == nil || g.LastUsedAt == nil || g.Version != 3 {
		t.Fatalf("unexpected grant: %+v", g)
	}

	g, err = scanGrant(grantRow("once", sql.NullInt64{}, nil))
	if err != nil {
		t.Fatalf("scanGrant error: %v", err)
	}
	if g.Policy.Kind() != grants.PolicyOnce {
		t.Fatalf("policy = %v", g.Policy)
	}

	if _, err := scanGrant(grantRow("cooldown", sql.NullInt64{}, nil)); err == nil {
		t.Fatalf("expected error for cooldown without minutes")
	}
}

func TestCooldownColumnAndVectors(t *testing.T) {
	cd, _ := grants.Cooldown(30)
	if c := cooldownColumn(cd); !c.Valid || c.Int64 != 30 {
		t.Fatalf("cooldownColumn = %+v", c)
	}
	if c := cooldownColumn(grants.Unlimited()); c.Valid {
		t.Fatalf("unlimited must store NULL, got %+v", c)
	}

	b, err := encodeVector(nil)
	if err != nil || b != nil {
		t.Fatalf("encodeVector(nil) = %v, %v", b, err)
	}
	b, err = encodeVector(&grants.EffectVector{Health: -2})
	if err != nil {
		t.Fatalf("encodeVector error: %v", err)
	}
	v, err := decodeVector(b)
	if err != nil || v == nil || v.Health != -2 {
		t.Fatalf("decodeVector = %+v, %v", v, err)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/00001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sqlText := string(b)
	for _, table := range []string{"members", "abilities", "character_resources", "ability_grants", "grant_usage_log", "notification_outbox"} {
		if !strings.Contains(sqlText, "CREATE TABLE "+table+" (") {
			t.Fatalf("migration missing table %s", table)
		}
	}
	if !strings.Contains(sqlText, "-- +goose Up") || !strings.Contains(sqlText, "-- +goose Down") {
		t.Fatalf("migration missing goose annotations")
	}
}
