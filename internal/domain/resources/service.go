package resources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campaign-grants/internal/platform/validate"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource state not found")
	ErrConflict     = errors.New("resource state conflict")
)

// Directory lo implementa roster.Service.
type Directory interface {
	IsAuthority(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo Repository
	dir  Directory
	now  func() time.Time
}

func NewService(repo Repository, dir Directory) *Service {
	return &Service{
		repo: repo,
		dir:  dir,
		now:  time.Now,
	}
}

// Get: el propio holder o una autoridad.
func (s *Service) Get(ctx context.Context, holderID, callerID string) (State, error) {
	holderID = strings.TrimSpace(holderID)
	callerID = strings.TrimSpace(callerID)
	if holderID == "" || callerID == "" {
		return State{}, ErrInvalidInput
	}
	if holderID != callerID {
		if err := s.requireAuthority(ctx, callerID); err != nil {
			return State{}, err
		}
	}
	return s.repo.Get(ctx, holderID)
}

type AdjustInput struct {
	Field Field `json:"field" validate:"required,oneof=health vitality max_vitality travel max_travel reserve max_reserve progress"`
	Delta int   `json:"delta" validate:"gte=-1000000,lte=1000000"`
	// nil = true
	ClampMax *bool `json:"clamp_max"`
}

// Adjust aplica un delta puntual (autoridad), p.ej. recompensas manuales.
func (s *Service) Adjust(ctx context.Context, actorID, holderID string, in AdjustInput) (State, error) {
	if err := s.requireAuthority(ctx, actorID); err != nil {
		return State{}, err
	}
	if err := validate.Struct(in); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	clamp := true
	if in.ClampMax != nil {
		clamp = *in.ClampMax
	}
	return s.repo.ApplyDelta(ctx, strings.TrimSpace(holderID), in.Field, in.Delta, clamp)
}

type InitInput struct {
	Health      int `json:"health" validate:"gte=0,lte=1000000"`
	Vitality    int `json:"vitality" validate:"gte=0,lte=1000000"`
	MaxVitality int `json:"max_vitality" validate:"gte=0,lte=1000000"`
	Travel      int `json:"travel" validate:"gte=0,lte=1000000"`
	MaxTravel   int `json:"max_travel" validate:"gte=0,lte=1000000"`
	Reserve     int `json:"reserve" validate:"gte=0,lte=1000000"`
	MaxReserve  int `json:"max_reserve" validate:"gte=0,lte=1000000"`
	Progress    int `json:"progress" validate:"gte=0,lte=1000000"`
}

// Init fija el estado completo de un holder existente. Los currents se acotan a su máximo.
func (s *Service) Init(ctx context.Context, actorID, holderID string, in InitInput) (State, error) {
	if err := s.requireAuthority(ctx, actorID); err != nil {
		return State{}, err
	}
	if err := validate.Struct(in); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	holderID = strings.TrimSpace(holderID)
	ok, err := s.dir.Exists(ctx, holderID)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return State{}, ErrNotFound
	}

	st := State{
		HolderID:    holderID,
		Health:      in.Health,
		Vitality:    in.Vitality,
		MaxVitality: in.MaxVitality,
		Travel:      in.Travel,
		MaxTravel:   in.MaxTravel,
		Reserve:     in.Reserve,
		MaxReserve:  in.MaxReserve,
		Progress:    in.Progress,
		UpdatedAt:   s.now().UTC(),
	}
	return s.repo.Put(ctx, st.Clamp())
}

func (s *Service) requireAuthority(ctx context.Context, actorID string) error {
	ok, err := s.dir.IsAuthority(ctx, strings.TrimSpace(actorID))
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
