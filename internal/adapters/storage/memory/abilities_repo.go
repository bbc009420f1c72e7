package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"campaign-grants/internal/domain/abilities"
)

type abilityRepo struct {
	mu   sync.RWMutex
	byID map[string]abilities.Ability
}

func NewAbilityRepo() abilities.Repository {
	return &abilityRepo{
		byID: make(map[string]abilities.Ability),
	}
}

func (r *abilityRepo) Create(ctx context.Context, a abilities.Ability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("ability id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("ability already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *abilityRepo) GetByID(ctx context.Context, id string) (abilities.Ability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return abilities.Ability{}, abilities.ErrNotFound
	}
	return a, nil
}

func (r *abilityRepo) List(ctx context.Context) ([]abilities.Ability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]abilities.Ability, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
