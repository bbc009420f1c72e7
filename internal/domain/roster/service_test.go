package roster

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]Member
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Member{}}
}

func (r *testRepo) Create(ctx context.Context, m Member) error {
	if _, ok := r.byID[m.ID]; ok {
		return ErrAlreadyExists
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Member, error) {
	m, ok := r.byID[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	return m, nil
}

func (r *testRepo) List(ctx context.Context) ([]Member, error) {
	out := make([]Member, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	return out, nil
}

func TestService_EnsureAuthority_Idempotent(t *testing.T) {
	svc := NewService(newTestRepo())
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	m1, err := svc.EnsureAuthority(context.Background(), "gm-1", "")
	if err != nil {
		t.Fatalf("EnsureAuthority error: %v", err)
	}
	if m1.Role != RoleGameMaster || m1.DisplayName != "gm-1" || !m1.CreatedAt.Equal(now) {
		t.Fatalf("unexpected member: %+v", m1)
	}

	svc.now = func() time.Time { return now.Add(time.Hour) }
	m2, err := svc.EnsureAuthority(context.Background(), "gm-1", "Other")
	if err != nil {
		t.Fatalf("EnsureAuthority #2 error: %v", err)
	}
	if m2 != m1 {
		t.Fatalf("expected existing member unchanged, got %+v", m2)
	}
}

func TestService_Create_RequiresAuthority(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	if _, err := svc.EnsureAuthority(ctx, "gm-1", "GM"); err != nil {
		t.Fatalf("EnsureAuthority error: %v", err)
	}
	p, err := svc.Create(ctx, "gm-1", CreateInput{ID: "player-1", DisplayName: "Ayla", Role: RolePlayer})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Create(ctx, p.ID, CreateInput{DisplayName: "Bren", Role: RolePlayer}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for player actor, got %v", err)
	}
	if _, err := svc.Create(ctx, "ghost", CreateInput{DisplayName: "Bren", Role: RolePlayer}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown actor, got %v", err)
	}
	if _, err := svc.Create(ctx, "gm-1", CreateInput{ID: "player-1", DisplayName: "Dup", Role: RolePlayer}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()
	_, _ = svc.EnsureAuthority(ctx, "gm-1", "GM")

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"blank name", CreateInput{DisplayName: "   ", Role: RolePlayer}},
		{"unknown role", CreateInput{DisplayName: "Ayla", Role: Role("admin")}},
		{"missing role", CreateInput{DisplayName: "Ayla"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, "gm-1", tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_IsAuthority_AndExists(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()
	_, _ = svc.EnsureAuthority(ctx, "gm-1", "GM")
	_, _ = svc.Create(ctx, "gm-1", CreateInput{ID: "player-1", DisplayName: "Ayla", Role: RolePlayer})

	tests := []struct {
		id        string
		authority bool
		exists    bool
	}{
		{"gm-1", true, true},
		{"player-1", false, true},
		{"ghost", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		ok, err := svc.IsAuthority(ctx, tt.id)
		if err != nil || ok != tt.authority {
			t.Fatalf("IsAuthority(%q) = %v, %v", tt.id, ok, err)
		}
		ex, err := svc.Exists(ctx, tt.id)
		if err != nil || ex != tt.exists {
			t.Fatalf("Exists(%q) = %v, %v", tt.id, ex, err)
		}
	}
}
