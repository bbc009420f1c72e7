package grants

import (
	"time"

	"campaign-grants/internal/domain/resources"
)

// AbilityGrant es una habilidad discrecional otorgada por una autoridad a un holder.
type AbilityGrant struct {
	ID        string
	HolderID  string
	AbilityID string // inmutable
	IssuerID  string

	Title    string
	Detail   string
	ImageURL string

	Transferable bool
	Policy       ReusePolicy
	ExpiresAt    *time.Time
	Effect       EffectVector

	IsActive   bool
	TimesUsed  int
	LastUsedAt *time.Time

	// Version se incrementa en cada UpdateGrant (control optimista).
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExpiredAt: expiresAt ya pasó respecto de now.
func (g AbilityGrant) ExpiredAt(now time.Time) bool {
	return g.ExpiresAt != nil && !now.Before(*g.ExpiresAt)
}

// EffectVector son los ocho deltas firmados que se aplican al ledger en cada consumo.
type EffectVector struct {
	Health      int `json:"health" validate:"gte=-1000000,lte=1000000"`
	Vitality    int `json:"vitality" validate:"gte=-1000000,lte=1000000"`
	MaxVitality int `json:"max_vitality" validate:"gte=-1000000,lte=1000000"`
	Travel      int `json:"travel" validate:"gte=-1000000,lte=1000000"`
	MaxTravel   int `json:"max_travel" validate:"gte=-1000000,lte=1000000"`
	Reserve     int `json:"reserve" validate:"gte=-1000000,lte=1000000"`
	MaxReserve  int `json:"max_reserve" validate:"gte=-1000000,lte=1000000"`
	Progress    int `json:"progress" validate:"gte=-1000000,lte=1000000"`
}

func (v EffectVector) Delta(f resources.Field) int {
	switch f {
	case resources.FieldHealth:
		return v.Health
	case resources.FieldVitality:
		return v.Vitality
	case resources.FieldMaxVitality:
		return v.MaxVitality
	case resources.FieldTravel:
		return v.Travel
	case resources.FieldMaxTravel:
		return v.MaxTravel
	case resources.FieldReserve:
		return v.Reserve
	case resources.FieldMaxReserve:
		return v.MaxReserve
	case resources.FieldProgress:
		return v.Progress
	}
	return 0
}

// vectorBetween es el delta real por campo entre dos estados.
func vectorBetween(prev, next resources.State) EffectVector {
	return EffectVector{
		Health:      next.Health - prev.Health,
		Vitality:    next.Vitality - prev.Vitality,
		MaxVitality: next.MaxVitality - prev.MaxVitality,
		Travel:      next.Travel - prev.Travel,
		MaxTravel:   next.MaxTravel - prev.MaxTravel,
		Reserve:     next.Reserve - prev.Reserve,
		MaxReserve:  next.MaxReserve - prev.MaxReserve,
		Progress:    next.Progress - prev.Progress,
	}
}

type Action string

const (
	ActionGrant    Action = "grant"
	ActionUse      Action = "use"
	ActionTransfer Action = "transfer"
	ActionRevoke   Action = "revoke"
)

// UsageLogEntry es inmutable: una por transición.
type UsageLogEntry struct {
	ID       string
	GrantID  string
	HolderID string // holder al momento del evento
	ActorID  string
	Action   Action

	// Solo para use: vector configurado, delta efectivamente aplicado (sin el costo) y costo.
	Effect  *EffectVector
	Applied *EffectVector
	Cost    int

	ReferenceCode  string
	Note           string
	TargetHolderID string // solo para transfer

	CreatedAt time.Time
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFail    Outcome = "fail"
)

// OutcomeFor: éxito si roll >= threshold.
func OutcomeFor(threshold, roll int) Outcome {
	if roll >= threshold {
		return OutcomeSuccess
	}
	return OutcomeFail
}

// EffectOutcome es el resultado de un Consume exitoso.
type EffectOutcome struct {
	Grant         AbilityGrant
	Resources     resources.State
	Applied       EffectVector
	Cost          int
	ReferenceCode string
	Outcome       Outcome
}

// GrantSummary es la vista de lectura: Active ya refleja la expiración aunque no se haya persistido.
type GrantSummary struct {
	Grant AbilityGrant

	Active      bool
	Expired     bool
	AvailableAt *time.Time
}
