package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindGrantIssued      Kind = "grant.issued"
	KindGrantUsed        Kind = "grant.used"
	KindGrantTransferred Kind = "grant.transferred"
	KindGrantRevoked     Kind = "grant.revoked"
)

// Event es lo que el motor de grants emite después del commit.
type Event struct {
	ID          string         `json:"id"`
	Kind        Kind           `json:"kind"`
	RecipientID string         `json:"recipient_id"`
	GrantID     string         `json:"grant_id"`
	ActorID     string         `json:"actor_id"`
	Payload     map[string]any `json:"payload,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Notifier nunca devuelve error: una falla de notificación no puede afectar la transición.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// NotifierFunc adapta una función a Notifier.
type NotifierFunc func(ctx context.Context, e Event)

func (f NotifierFunc) Notify(ctx context.Context, e Event) { f(ctx, e) }

// Discard descarta todo (tests y wiring sin outbox).
var Discard Notifier = NotifierFunc(func(context.Context, Event) {})
