package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"campaign-grants/internal/domain/roster"
)

// memberRepo tiene su propio lock: el motor de grants consulta el roster
// desde dentro de DB.WithinTx.
type memberRepo struct {
	mu   sync.RWMutex
	byID map[string]roster.Member
}

func NewMemberRepo() roster.Repository {
	return &memberRepo{
		byID: make(map[string]roster.Member),
	}
}

func (r *memberRepo) Create(ctx context.Context, m roster.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("member id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return roster.ErrAlreadyExists
	}
	r.byID[m.ID] = m
	return nil
}

func (r *memberRepo) GetByID(ctx context.Context, id string) (roster.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return roster.Member{}, roster.ErrNotFound
	}
	return m, nil
}

func (r *memberRepo) List(ctx context.Context) ([]roster.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Member, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
