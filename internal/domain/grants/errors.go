package grants

import (
	"errors"
	"fmt"
	"time"

	"campaign-grants/internal/domain/resources"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrInactive             = errors.New("grant is inactive")
	ErrExpired              = errors.New("grant has expired")
	ErrExhausted            = errors.New("grant already used")
	ErrCooldownActive       = errors.New("grant cooldown active")
	ErrInsufficientResource = errors.New("insufficient resource")
	ErrNotTransferable      = errors.New("grant is not transferable")
	ErrConflict             = errors.New("concurrent modification")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError indica qué entidad faltó (grant, ability, holder, resources).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type CooldownActiveError struct {
	GrantID          string
	RemainingMinutes int // redondeado hacia arriba
	AvailableAt      time.Time
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("grant %s on cooldown: %d minute(s) remaining", e.GrantID, e.RemainingMinutes)
}

func (e *CooldownActiveError) Unwrap() error { return ErrCooldownActive }

type InsufficientResourceError struct {
	Resource  resources.Field
	Required  int
	Available int
}

func (e *InsufficientResourceError) Error() string {
	return fmt.Sprintf("insufficient %s: required %d, available %d", e.Resource, e.Required, e.Available)
}

func (e *InsufficientResourceError) Unwrap() error { return ErrInsufficientResource }

// GrantStateError envuelve ErrInactive, ErrExpired, ErrExhausted o ErrNotTransferable.
type GrantStateError struct {
	Err     error
	GrantID string
	Policy  PolicyKind
}

func (e *GrantStateError) Error() string {
	return fmt.Sprintf("grant %s (%s): %v", e.GrantID, e.Policy, e.Err)
}

func (e *GrantStateError) Unwrap() error { return e.Err }

func stateError(err error, g AbilityGrant) error {
	return &GrantStateError{Err: err, GrantID: g.ID, Policy: g.Policy.Kind()}
}
