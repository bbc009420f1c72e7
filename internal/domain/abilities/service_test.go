package abilities

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]Ability
}

func (r *testRepo) Create(ctx context.Context, a Ability) error {
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Ability, error) {
	a, ok := r.byID[id]
	if !ok {
		return Ability{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) List(ctx context.Context) ([]Ability, error) {
	out := make([]Ability, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

type staticAuthz map[string]bool

func (a staticAuthz) IsAuthority(ctx context.Context, id string) (bool, error) {
	return a[id], nil
}

func newTestService() *Service {
	svc := NewService(&testRepo{byID: map[string]Ability{}}, staticAuthz{"gm-1": true})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc
}

func TestService_Create_AndGet(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, "gm-1", CreateInput{Name: "  Veil Step ", BaseCost: 3})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if a.Name != "Veil Step" || a.BaseCost != 3 || a.ID == "" {
		t.Fatalf("unexpected ability: %+v", a)
	}

	got, err := svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != a {
		t.Fatalf("expected %+v, got %+v", a, got)
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Create_Rejections(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   string
		in      CreateInput
		wantErr error
	}{
		{"player actor", "player-1", CreateInput{Name: "Veil Step"}, ErrForbidden},
		{"empty name", "gm-1", CreateInput{Name: " "}, ErrInvalidInput},
		{"negative cost", "gm-1", CreateInput{Name: "Veil Step", BaseCost: -1}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.actor, tt.in); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
