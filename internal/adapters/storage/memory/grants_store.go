package memory

import (
	"context"
	"errors"
	"sort"

	"campaign-grants/internal/domain/grants"
	"campaign-grants/internal/domain/resources"
)

type grantStore struct {
	db *DB
}

func NewGrantStore(db *DB) grants.Store {
	return &grantStore{db: db}
}

// WithinTx toma el lock de la DB durante fn. Las escrituras quedan en el tx
// y se aplican juntas solo si fn devuelve nil.
func (s *grantStore) WithinTx(ctx context.Context, fn func(tx grants.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	tx := &grantTx{
		db:     s.db,
		grants: make(map[string]grants.AbilityGrant),
		res:    make(map[string]resources.State),
	}
	if err := fn(tx); err != nil {
		return err
	}

	for id, g := range tx.grants {
		s.db.grants[id] = g
	}
	for id, st := range tx.res {
		s.db.res[id] = st
	}
	s.db.usage = append(s.db.usage, tx.usage...)
	return nil
}

func (s *grantStore) GetByID(ctx context.Context, id string) (grants.AbilityGrant, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	g, ok := s.db.grants[id]
	if !ok {
		return grants.AbilityGrant{}, grants.ErrNotFound
	}
	return g, nil
}

func (s *grantStore) ListByHolder(ctx context.Context, holderID string) ([]grants.AbilityGrant, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]grants.AbilityGrant, 0)
	for _, g := range s.db.grants {
		if g.HolderID == holderID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListUsage respeta el orden de inserción, que ya es cronológico.
func (s *grantStore) ListUsage(ctx context.Context, grantID string) ([]grants.UsageLogEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]grants.UsageLogEntry, 0)
	for _, e := range s.db.usage {
		if e.GrantID == grantID {
			out = append(out, e)
		}
	}
	return out, nil
}

// -------------------------
// Tx
// -------------------------

// grantTx lee primero lo escrito en la propia transacción y después la DB.
type grantTx struct {
	db     *DB
	grants map[string]grants.AbilityGrant
	res    map[string]resources.State
	usage  []grants.UsageLogEntry
}

func (tx *grantTx) grant(id string) (grants.AbilityGrant, bool) {
	if g, ok := tx.grants[id]; ok {
		return g, true
	}
	g, ok := tx.db.grants[id]
	return g, ok
}

func (tx *grantTx) ledger(holderID string) (resources.State, bool) {
	if st, ok := tx.res[holderID]; ok {
		return st, true
	}
	st, ok := tx.db.res[holderID]
	return st, ok
}

func (tx *grantTx) GetGrantForUpdate(ctx context.Context, id string) (grants.AbilityGrant, error) {
	g, ok := tx.grant(id)
	if !ok {
		return grants.AbilityGrant{}, grants.ErrNotFound
	}
	return g, nil
}

func (tx *grantTx) InsertGrant(ctx context.Context, g grants.AbilityGrant) error {
	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := tx.grant(g.ID); exists {
		return errors.New("grant already exists")
	}
	tx.grants[g.ID] = g
	return nil
}

func (tx *grantTx) UpdateGrant(ctx context.Context, g grants.AbilityGrant) error {
	cur, ok := tx.grant(g.ID)
	if !ok {
		return grants.ErrNotFound
	}
	if cur.Version != g.Version {
		return grants.ErrConflict
	}
	g.Version++
	tx.grants[g.ID] = g
	return nil
}

func (tx *grantTx) AppendUsage(ctx context.Context, e grants.UsageLogEntry) error {
	if _, ok := tx.grant(e.GrantID); !ok {
		return grants.ErrNotFound
	}
	tx.usage = append(tx.usage, e)
	return nil
}

func (tx *grantTx) LockResources(ctx context.Context, holderID string) (resources.State, error) {
	st, ok := tx.ledger(holderID)
	if !ok {
		return resources.State{}, resources.ErrNotFound
	}
	return st, nil
}

func (tx *grantTx) SetResourceFields(ctx context.Context, holderID string, p resources.Patch) (resources.State, error) {
	st, ok := tx.ledger(holderID)
	if !ok {
		return resources.State{}, resources.ErrNotFound
	}
	if len(p) == 0 {
		return st, nil
	}
	st = st.WithPatch(p)
	st.Version++
	st.UpdatedAt = tx.db.now().UTC()
	tx.res[holderID] = st
	return st, nil
}
