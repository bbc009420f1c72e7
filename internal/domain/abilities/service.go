package abilities

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campaign-grants/internal/platform/validate"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("ability not found")
)

// AuthorityChecker lo implementa roster.Service.
type AuthorityChecker interface {
	IsAuthority(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo  Repository
	authz AuthorityChecker
	now   func() time.Time
}

func NewService(repo Repository, authz AuthorityChecker) *Service {
	return &Service{
		repo:  repo,
		authz: authz,
		now:   time.Now,
	}
}

type CreateInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	BaseCost    int    `json:"base_cost" validate:"gte=0,lte=1000000"`
}

func (s *Service) Create(ctx context.Context, actorID string, in CreateInput) (Ability, error) {
	ok, err := s.authz.IsAuthority(ctx, actorID)
	if err != nil {
		return Ability{}, err
	}
	if !ok {
		return Ability{}, ErrForbidden
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return Ability{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	a := Ability{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		BaseCost:    in.BaseCost,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Ability{}, err
	}
	return a, nil
}

// Get devuelve ErrNotFound si el id no está en el catálogo.
func (s *Service) Get(ctx context.Context, id string) (Ability, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ability{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Ability, error) {
	return s.repo.List(ctx)
}
