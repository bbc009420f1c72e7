package memory

import (
	"context"
	"errors"
	"strings"

	"campaign-grants/internal/domain/resources"
)

type resourceRepo struct {
	db *DB
}

func NewResourceRepo(db *DB) resources.Repository {
	return &resourceRepo{db: db}
}

func (r *resourceRepo) Get(ctx context.Context, holderID string) (resources.State, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	st, ok := r.db.res[holderID]
	if !ok {
		return resources.State{}, resources.ErrNotFound
	}
	return st, nil
}

// Put reemplaza la fila completa (alta o reinicio del ledger).
func (r *resourceRepo) Put(ctx context.Context, s resources.State) (resources.State, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if strings.TrimSpace(s.HolderID) == "" {
		return resources.State{}, errors.New("holder id required")
	}
	s.Version = r.db.res[s.HolderID].Version + 1
	s.UpdatedAt = r.db.now().UTC()
	r.db.res[s.HolderID] = s
	return s, nil
}

func (r *resourceRepo) ApplyDelta(ctx context.Context, holderID string, f resources.Field, delta int, clampMax bool) (resources.State, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	st, ok := r.db.res[holderID]
	if !ok {
		return resources.State{}, resources.ErrNotFound
	}
	st = st.ApplyDelta(f, delta, clampMax)
	st.Version++
	st.UpdatedAt = r.db.now().UTC()
	r.db.res[holderID] = st
	return st, nil
}
