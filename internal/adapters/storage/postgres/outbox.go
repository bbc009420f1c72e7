package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"campaign-grants/internal/notify"
)

type Outbox struct {
	db *sql.DB
}

func NewOutbox(db *sql.DB) *Outbox {
	return &Outbox{db: db}
}

func (o *Outbox) Enqueue(ctx context.Context, e notify.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	if e.Payload == nil {
		payload = []byte("{}")
	}
	_, err = o.db.ExecContext(ctx, `
		INSERT INTO notification_outbox (
			id, kind, recipient_id, grant_id, actor_id, payload,
			status, attempts, next_attempt_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,'pending',0,$7,$7)
	`,
		e.ID,
		string(e.Kind),
		e.RecipientID,
		e.GrantID,
		e.ActorID,
		payload,
		e.CreatedAt,
	)
	return err
}

// Lease usa FOR UPDATE SKIP LOCKED: varios notifier pueden correr en paralelo
// sin tomar el mismo evento.
func (o *Outbox) Lease(ctx context.Context, limit int, now time.Time, leaseTTL time.Duration) ([]notify.Record, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := o.db.QueryContext(ctx, `
		WITH due AS (
			SELECT id
			FROM notification_outbox
			WHERE (status = 'pending' AND next_attempt_at <= $1)
			   OR (status = 'leased' AND lease_expires_at <= $1)
			ORDER BY next_attempt_at ASC, created_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE notification_outbox o
		SET status = 'leased',
			attempts = o.attempts + 1,
			lease_expires_at = $3
		FROM due
		WHERE o.id = due.id
		RETURNING
			o.id, o.kind, o.recipient_id, o.grant_id, o.actor_id, o.payload, o.created_at,
			o.status, o.attempts, o.next_attempt_at, o.lease_expires_at, o.last_error, o.processed_at
	`, now, limit, now.Add(leaseTTL))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notify.Record, 0, limit)
	for rows.Next() {
		var (
			rec         notify.Record
			kind        string
			status      string
			payload     []byte
			leaseExp    sql.NullTime
			processedAt sql.NullTime
		)
		if err := rows.Scan(
			&rec.Event.ID,
			&kind,
			&rec.Event.RecipientID,
			&rec.Event.GrantID,
			&rec.Event.ActorID,
			&payload,
			&rec.Event.CreatedAt,
			&status,
			&rec.Attempts,
			&rec.NextAttemptAt,
			&leaseExp,
			&rec.LastError,
			&processedAt,
		); err != nil {
			return nil, err
		}
		rec.Event.Kind = notify.Kind(kind)
		rec.Status = notify.Status(status)
		rec.LeaseExpiresAt = fromNullTime(leaseExp)
		rec.ProcessedAt = fromNullTime(processedAt)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &rec.Event.Payload); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (o *Outbox) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	return o.exec(ctx, `
		UPDATE notification_outbox
		SET status = 'delivered', lease_expires_at = NULL, processed_at = $2
		WHERE id = $1
	`, id, at)
}

func (o *Outbox) MarkRetry(ctx context.Context, id string, next time.Time, lastErr string) error {
	return o.exec(ctx, `
		UPDATE notification_outbox
		SET status = 'pending', lease_expires_at = NULL, next_attempt_at = $2, last_error = $3
		WHERE id = $1
	`, id, next, lastErr)
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, at time.Time, lastErr string) error {
	return o.exec(ctx, `
		UPDATE notification_outbox
		SET status = 'failed', lease_expires_at = NULL, processed_at = $2, last_error = $3
		WHERE id = $1
	`, id, at, lastErr)
}

func (o *Outbox) exec(ctx context.Context, query string, args ...any) error {
	res, err := o.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notify.ErrNotFound
	}
	return nil
}
