package notify

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("outbox event not found")

type Status string

const (
	StatusPending   Status = "pending"
	StatusLeased    Status = "leased"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Record es una fila del outbox.
type Record struct {
	Event Event

	Status         Status
	Attempts       int
	NextAttemptAt  time.Time
	LeaseExpiresAt *time.Time
	LastError      string
	ProcessedAt    *time.Time
}

// Outbox persiste eventos pendientes de entrega.
//
// Lease toma hasta limit eventos vencidos (pending con next_attempt_at <= now,
// o leased con lease expirado), los marca leased hasta now+leaseTTL e incrementa Attempts.
type Outbox interface {
	Enqueue(ctx context.Context, e Event) error
	Lease(ctx context.Context, limit int, now time.Time, leaseTTL time.Duration) ([]Record, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	MarkRetry(ctx context.Context, id string, next time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id string, at time.Time, lastErr string) error
}

func RetryBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	if attempt > 20 {
		return 5 * time.Minute
	}
	backoff := time.Second << (attempt - 1)
	if backoff > 5*time.Minute {
		return 5 * time.Minute
	}
	return backoff
}
