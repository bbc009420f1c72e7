package grants

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type PolicyKind string

const (
	PolicyOnce      PolicyKind = "once"
	PolicyCooldown  PolicyKind = "cooldown"
	PolicyUnlimited PolicyKind = "unlimited"
)

// ReusePolicy solo se construye con Once, Unlimited, Cooldown o ParsePolicy;
// el valor cero es inválido.
type ReusePolicy struct {
	kind    PolicyKind
	minutes int
}

func Once() ReusePolicy      { return ReusePolicy{kind: PolicyOnce} }
func Unlimited() ReusePolicy { return ReusePolicy{kind: PolicyUnlimited} }

func Cooldown(minutes int) (ReusePolicy, error) {
	if minutes <= 0 {
		return ReusePolicy{}, &ValidationError{Field: "cooldown_minutes", Reason: "must be positive for cooldown policy"}
	}
	return ReusePolicy{kind: PolicyCooldown, minutes: minutes}, nil
}

// ParsePolicy: minutes es obligatorio para cooldown y se descarta para el resto.
func ParsePolicy(kind string, minutes *int) (ReusePolicy, error) {
	switch PolicyKind(strings.ToLower(strings.TrimSpace(kind))) {
	case PolicyOnce:
		return Once(), nil
	case PolicyUnlimited:
		return Unlimited(), nil
	case PolicyCooldown:
		if minutes == nil {
			return ReusePolicy{}, &ValidationError{Field: "cooldown_minutes", Reason: "required for cooldown policy"}
		}
		return Cooldown(*minutes)
	case "":
		return ReusePolicy{}, &ValidationError{Field: "reuse_policy", Reason: "required"}
	}
	return ReusePolicy{}, &ValidationError{Field: "reuse_policy", Reason: fmt.Sprintf("unknown policy %q", kind)}
}

func (p ReusePolicy) Kind() PolicyKind { return p.kind }
func (p ReusePolicy) IsZero() bool     { return p.kind == "" }

// CooldownMinutes devuelve (0, false) si la política no es cooldown.
func (p ReusePolicy) CooldownMinutes() (int, bool) {
	if p.kind != PolicyCooldown {
		return 0, false
	}
	return p.minutes, true
}

func (p ReusePolicy) String() string {
	if p.kind == PolicyCooldown {
		return fmt.Sprintf("cooldown(%dm)", p.minutes)
	}
	return string(p.kind)
}

// AvailableAt es el fin del cooldown vigente, o nil si no hay espera.
func (p ReusePolicy) AvailableAt(lastUsedAt *time.Time, now time.Time) *time.Time {
	if p.kind != PolicyCooldown || lastUsedAt == nil {
		return nil
	}
	at := lastUsedAt.Add(time.Duration(p.minutes) * time.Minute)
	if !now.Before(at) {
		return nil
	}
	return &at
}

// gate aplica el paso de política de reuso del consumo.
func (p ReusePolicy) gate(g AbilityGrant, now time.Time) error {
	switch p.kind {
	case PolicyOnce:
		if g.TimesUsed > 0 {
			return stateError(ErrExhausted, g)
		}
	case PolicyCooldown:
		if at := p.AvailableAt(g.LastUsedAt, now); at != nil {
			return &CooldownActiveError{
				GrantID:          g.ID,
				RemainingMinutes: int(math.Ceil(at.Sub(now).Minutes())),
				AvailableAt:      *at,
			}
		}
	case PolicyUnlimited:
	default:
		return &ValidationError{Field: "reuse_policy", Reason: "invalid policy"}
	}
	return nil
}
