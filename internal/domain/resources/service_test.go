package resources

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	byHolder map[string]State
}

func (r *testRepo) Get(ctx context.Context, holderID string) (State, error) {
	s, ok := r.byHolder[holderID]
	if !ok {
		return State{}, ErrNotFound
	}
	return s, nil
}

func (r *testRepo) Put(ctx context.Context, s State) (State, error) {
	s.Version = r.byHolder[s.HolderID].Version + 1
	r.byHolder[s.HolderID] = s
	return s, nil
}

func (r *testRepo) ApplyDelta(ctx context.Context, holderID string, f Field, delta int, clampMax bool) (State, error) {
	s, err := r.Get(ctx, holderID)
	if err != nil {
		return State{}, err
	}
	return r.Put(ctx, s.ApplyDelta(f, delta, clampMax))
}

type testDir struct {
	authorities map[string]bool
	members     map[string]bool
}

func (d testDir) IsAuthority(ctx context.Context, id string) (bool, error) { return d.authorities[id], nil }
func (d testDir) Exists(ctx context.Context, id string) (bool, error)      { return d.members[id], nil }

func newTestService() (*Service, *testRepo) {
	repo := &testRepo{byHolder: map[string]State{}}
	dir := testDir{
		authorities: map[string]bool{"gm-1": true},
		members:     map[string]bool{"gm-1": true, "player-1": true, "player-2": true},
	}
	svc := NewService(repo, dir)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestService_Init_ClampsAndRequiresAuthority(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := InitInput{Health: 10, Vitality: 12, MaxVitality: 8, Reserve: 10, MaxReserve: 20}

	if _, err := svc.Init(ctx, "player-1", "player-1", in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Init(ctx, "gm-1", "ghost", in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown holder, got %v", err)
	}
	if _, err := svc.Init(ctx, "gm-1", "player-1", InitInput{Reserve: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	st, err := svc.Init(ctx, "gm-1", "player-1", in)
	if err != nil {
		t.Fatalf("Init error: %v", err)
	}
	if st.Vitality != 8 || st.Reserve != 10 || st.Version != 1 {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestService_Get_Authorization(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Init(ctx, "gm-1", "player-1", InitInput{Reserve: 3, MaxReserve: 5}); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	if _, err := svc.Get(ctx, "player-1", "player-1"); err != nil {
		t.Fatalf("holder Get error: %v", err)
	}
	if _, err := svc.Get(ctx, "player-1", "gm-1"); err != nil {
		t.Fatalf("authority Get error: %v", err)
	}
	if _, err := svc.Get(ctx, "player-1", "player-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_Adjust(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Init(ctx, "gm-1", "player-1", InitInput{Reserve: 3, MaxReserve: 5}); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	st, err := svc.Adjust(ctx, "gm-1", "player-1", AdjustInput{Field: FieldReserve, Delta: 10})
	if err != nil {
		t.Fatalf("Adjust error: %v", err)
	}
	if st.Reserve != 5 {
		t.Fatalf("expected reserve clamped to 5, got %d", st.Reserve)
	}

	noClamp := false
	st, err = svc.Adjust(ctx, "gm-1", "player-1", AdjustInput{Field: FieldReserve, Delta: 10, ClampMax: &noClamp})
	if err != nil {
		t.Fatalf("Adjust error: %v", err)
	}
	if st.Reserve != 15 {
		t.Fatalf("expected reserve 15 without clamp, got %d", st.Reserve)
	}

	if _, err := svc.Adjust(ctx, "gm-1", "player-1", AdjustInput{Field: Field("sanity"), Delta: 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Adjust(ctx, "gm-1", "player-1", AdjustInput{Field: FieldHealth, Delta: MaxValue + 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for out of range delta, got %v", err)
	}
	if _, err := svc.Init(ctx, "gm-1", "player-1", InitInput{Health: MaxValue + 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for out of range health, got %v", err)
	}
	if _, err := svc.Adjust(ctx, "player-1", "player-1", AdjustInput{Field: FieldReserve, Delta: 1}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
