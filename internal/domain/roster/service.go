package roster

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
	ErrInvalidInput  = errors.New("invalid input")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("member not found")
	ErrAlreadyExists = errors.New("member already exists")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	// Opcional: si viene vacío se genera un uuid. Normalmente es el sub del IAM.
	ID          string `json:"id" validate:"omitempty,max=64"`
	DisplayName string `json:"display_name" validate:"required,max=80"`
	Role        Role   `json:"role" validate:"required,oneof=player gamemaster"`
}

// Create da de alta un miembro. Solo una autoridad puede hacerlo.
func (s *Service) Create(ctx context.Context, actorID string, in CreateInput) (Member, error) {
	if err := s.requireAuthority(ctx, actorID); err != nil {
		return Member{}, err
	}

	in.ID = strings.TrimSpace(in.ID)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := validate.Struct(in); err != nil {
		return Member{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.create(ctx, in)
}

// EnsureAuthority siembra la autoridad inicial; si el id ya existe no hace nada.
func (s *Service) EnsureAuthority(ctx context.Context, id, displayName string) (Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Member{}, ErrInvalidInput
	}

	m, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Member{}, err
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = id
	}
	return s.create(ctx, CreateInput{ID: id, DisplayName: name, Role: RoleGameMaster})
}

func (s *Service) create(ctx context.Context, in CreateInput) (Member, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	m := Member{
		ID:          id,
		DisplayName: in.DisplayName,
		Role:        in.Role,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id string) (Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Member{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Member, error) {
	return s.repo.List(ctx)
}

// IsAuthority: un id desconocido no es autoridad (sin error).
func (s *Service) IsAuthority(ctx context.Context, id string) (bool, error) {
	m, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.IsAuthority(), nil
}

// Exists se usa al validar destinatarios de Issue/Transfer.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) requireAuthority(ctx context.Context, actorID string) error {
	ok, err := s.IsAuthority(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
