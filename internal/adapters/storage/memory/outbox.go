package memory

import (
	"context"
	"errors"
	"slices"
	"time"

	"campaign-grants/internal/notify"
)

type outbox struct {
	db *DB
}

func NewOutbox(db *DB) notify.Outbox {
	return &outbox{db: db}
}

func (o *outbox) Enqueue(ctx context.Context, e notify.Event) error {
	o.db.mu.Lock()
	defer o.db.mu.Unlock()

	if e.ID == "" {
		return errors.New("event id required")
	}
	if _, exists := o.db.outbox[e.ID]; exists {
		return errors.New("event already enqueued")
	}
	o.db.outbox[e.ID] = notify.Record{
		Event:         e,
		Status:        notify.StatusPending,
		NextAttemptAt: e.CreatedAt,
	}
	o.db.outboxOrder = append(o.db.outboxOrder, e.ID)
	return nil
}

func (o *outbox) Lease(ctx context.Context, limit int, now time.Time, leaseTTL time.Duration) ([]notify.Record, error) {
	o.db.mu.Lock()
	defer o.db.mu.Unlock()

	if limit <= 0 {
		return nil, nil
	}
	until := now.Add(leaseTTL)

	out := make([]notify.Record, 0, limit)
	for _, id := range o.db.outboxOrder {
		if len(out) == limit {
			break
		}
		rec := o.db.outbox[id]
		if !leasable(rec, now) {
			continue
		}
		rec.Status = notify.StatusLeased
		rec.Attempts++
		rec.LeaseExpiresAt = &until
		o.db.outbox[id] = rec
		out = append(out, rec)
	}
	return out, nil
}

func leasable(rec notify.Record, now time.Time) bool {
	switch rec.Status {
	case notify.StatusPending:
		return !rec.NextAttemptAt.After(now)
	case notify.StatusLeased:
		return rec.LeaseExpiresAt != nil && !rec.LeaseExpiresAt.After(now)
	}
	return false
}

func (o *outbox) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	return o.update(id, func(rec *notify.Record) {
		rec.Status = notify.StatusDelivered
		rec.LeaseExpiresAt = nil
		rec.ProcessedAt = &at
	})
}

func (o *outbox) MarkRetry(ctx context.Context, id string, next time.Time, lastErr string) error {
	return o.update(id, func(rec *notify.Record) {
		rec.Status = notify.StatusPending
		rec.NextAttemptAt = next
		rec.LeaseExpiresAt = nil
		rec.LastError = lastErr
	})
}

func (o *outbox) MarkFailed(ctx context.Context, id string, at time.Time, lastErr string) error {
	return o.update(id, func(rec *notify.Record) {
		rec.Status = notify.StatusFailed
		rec.LeaseExpiresAt = nil
		rec.LastError = lastErr
		rec.ProcessedAt = &at
	})
}

func (o *outbox) update(id string, fn func(rec *notify.Record)) error {
	o.db.mu.Lock()
	defer o.db.mu.Unlock()

	rec, ok := o.db.outbox[id]
	if !ok {
		return notify.ErrNotFound
	}
	fn(&rec)

	// Entregados y fallidos no vuelven a leasearse: se descartan para que el
	// outbox de un serve largo no crezca sin límite.
	if rec.Status == notify.StatusDelivered || rec.Status == notify.StatusFailed {
		delete(o.db.outbox, id)
		if i := slices.Index(o.db.outboxOrder, id); i >= 0 {
			o.db.outboxOrder = slices.Delete(o.db.outboxOrder, i, i+1)
		}
		return nil
	}
	o.db.outbox[id] = rec
	return nil
}
