package notify

import (
	"context"
	"time"

	"campaign-grants/internal/platform/logger"

	"github.com/google/uuid"
)

// OutboxPublisher encola en el outbox; el envío real lo hace el Dispatcher.
type OutboxPublisher struct {
	outbox Outbox
	log    logger.Logger
	now    func() time.Time
}

func NewOutboxPublisher(outbox Outbox, log logger.Logger) *OutboxPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &OutboxPublisher{
		outbox: outbox,
		log:    log,
		now:    time.Now,
	}
}

func (p *OutboxPublisher) Notify(ctx context.Context, e Event) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("notify panic", map[string]any{"kind": e.Kind, "grant_id": e.GrantID, "panic": rec})
		}
	}()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = p.now().UTC()
	}

	if err := p.outbox.Enqueue(context.WithoutCancel(ctx), e); err != nil {
		p.log.Warn("notify enqueue failed", map[string]any{
			"kind":     e.Kind,
			"grant_id": e.GrantID,
			"error":    err,
		})
		return
	}
	p.log.Debug("notify enqueued", map[string]any{"kind": e.Kind, "event_id": e.ID})
}
