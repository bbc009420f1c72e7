package grants

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"campaign-grants/internal/domain/abilities"
	"campaign-grants/internal/domain/resources"
	"campaign-grants/internal/notify"
)

// -------------------------
// Test store (in-memory, staged tx)
// -------------------------

type testStore struct {
	mu     sync.Mutex
	grants map[string]AbilityGrant
	usage  []UsageLogEntry
	res    map[string]resources.State

	// conflicts > 0 hace fallar UpdateGrant con ErrConflict esa cantidad de veces.
	conflicts int
	commits   int
}

func newTestStore() *testStore {
	return &testStore{
		grants: map[string]AbilityGrant{},
		res:    map[string]resources.State{},
	}
}

type testTx struct {
	s      *testStore
	grants map[string]AbilityGrant
	res    map[string]resources.State
	usage  []UsageLogEntry
}

func (s *testStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &testTx{
		s:      s,
		grants: make(map[string]AbilityGrant, len(s.grants)),
		res:    make(map[string]resources.State, len(s.res)),
	}
	for k, v := range s.grants {
		tx.grants[k] = v
	}
	for k, v := range s.res {
		tx.res[k] = v
	}

	if err := fn(tx); err != nil {
		return err
	}
	s.grants = tx.grants
	s.res = tx.res
	s.usage = append(s.usage, tx.usage...)
	s.commits++
	return nil
}

func (s *testStore) GetByID(ctx context.Context, id string) (AbilityGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grants[id]
	if !ok {
		return AbilityGrant{}, ErrNotFound
	}
	return g, nil
}

func (s *testStore) ListByHolder(ctx context.Context, holderID string) ([]AbilityGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []AbilityGrant{}
	for _, g := range s.grants {
		if g.HolderID == holderID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *testStore) ListUsage(ctx context.Context, grantID string) ([]UsageLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []UsageLogEntry{}
	for _, e := range s.usage {
		if e.GrantID == grantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *testStore) grant(id string) AbilityGrant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grants[id]
}

func (s *testStore) ledger(holderID string) resources.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res[holderID]
}

func (s *testStore) actions(grantID string) []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Action{}
	for _, e := range s.usage {
		if e.GrantID == grantID {
			out = append(out, e.Action)
		}
	}
	return out
}

func (tx *testTx) GetGrantForUpdate(ctx context.Context, id string) (AbilityGrant, error) {
	g, ok := tx.grants[id]
	if !ok {
		return AbilityGrant{}, ErrNotFound
	}
	return g, nil
}

func (tx *testTx) InsertGrant(ctx context.Context, g AbilityGrant) error {
	tx.grants[g.ID] = g
	return nil
}

func (tx *testTx) UpdateGrant(ctx context.Context, g AbilityGrant) error {
	if tx.s.conflicts > 0 {
		tx.s.conflicts--
		return ErrConflict
	}
	cur, ok := tx.grants[g.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != g.Version {
		return ErrConflict
	}
	g.Version++
	tx.grants[g.ID] = g
	return nil
}

func (tx *testTx) AppendUsage(ctx context.Context, e UsageLogEntry) error {
	tx.usage = append(tx.usage, e)
	return nil
}

func (tx *testTx) LockResources(ctx context.Context, holderID string) (resources.State, error) {
	st, ok := tx.res[holderID]
	if !ok {
		return resources.State{}, resources.ErrNotFound
	}
	return st, nil
}

func (tx *testTx) SetResourceFields(ctx context.Context, holderID string, p resources.Patch) (resources.State, error) {
	st, ok := tx.res[holderID]
	if !ok {
		return resources.State{}, resources.ErrNotFound
	}
	st = st.WithPatch(p)
	st.Version++
	tx.res[holderID] = st
	return st, nil
}

// -------------------------
// Colaboradores
// -------------------------

type testDirectory struct {
	authorities map[string]bool
	members     map[string]bool
}

func (d testDirectory) IsAuthority(ctx context.Context, id string) (bool, error) {
	return d.authorities[id], nil
}

func (d testDirectory) Exists(ctx context.Context, id string) (bool, error) {
	return d.members[id], nil
}

type testCatalog map[string]abilities.Ability

func (c testCatalog) Get(ctx context.Context, id string) (abilities.Ability, error) {
	a, ok := c[id]
	if !ok {
		return abilities.Ability{}, abilities.ErrNotFound
	}
	return a, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Notify(ctx context.Context, e notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) kinds() []notify.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Kind, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Kind)
	}
	return out
}

// -------------------------
// Fixture
// -------------------------

const (
	gmID      = "gm-1"
	playerA   = "player-ayla"
	playerB   = "player-bren"
	abilityID = "ability-veil"
)

type fixture struct {
	svc      *Service
	store    *testStore
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newTestStore()
	store.res[playerA] = resources.State{HolderID: playerA, Health: 10, Vitality: 5, MaxVitality: 8, Travel: 3, MaxTravel: 5, Reserve: 10, MaxReserve: 20}
	store.res[playerB] = resources.State{HolderID: playerB, Reserve: 10, MaxReserve: 20}

	dir := testDirectory{
		authorities: map[string]bool{gmID: true},
		members:     map[string]bool{gmID: true, playerA: true, playerB: true},
	}
	catalog := testCatalog{
		abilityID: {ID: abilityID, Name: "Veil Step", BaseCost: 3},
		"free":    {ID: "free", Name: "Whisper", BaseCost: 0},
	}

	n := &recordingNotifier{}
	f := &fixture{
		store:    store,
		notifier: n,
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(store, dir, catalog, Options{Notifier: n, ReferencePrefix: "grt"})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) issue(t *testing.T, mutate func(*IssueInput)) AbilityGrant {
	t.Helper()
	in := IssueInput{
		HolderID:  playerA,
		AbilityID: abilityID,
		Title:     "Veil of the Ninth Bell",
		Policy:    Unlimited(),
	}
	if mutate != nil {
		mutate(&in)
	}
	g, err := f.svc.Issue(context.Background(), gmID, in)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	return g
}

func mustCooldown(t *testing.T, minutes int) ReusePolicy {
	t.Helper()
	p, err := Cooldown(minutes)
	if err != nil {
		t.Fatalf("Cooldown(%d): %v", minutes, err)
	}
	return p
}
