package notify

import (
	"context"
	"errors"
	"time"

	"campaign-grants/internal/platform/httpclient"
	"campaign-grants/internal/platform/logger"
)

type DispatcherOptions struct {
	BatchSize   int
	Interval    time.Duration
	MaxAttempts int
	LeaseTTL    time.Duration
}

func (o DispatcherOptions) withDefaults() DispatcherOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.Interval <= 0 {
		o.Interval = 2 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.LeaseTTL <= 0 {
		o.LeaseTTL = 30 * time.Second
	}
	return o
}

// Dispatcher drena el outbox hacia un Sink.
type Dispatcher struct {
	outbox Outbox
	sink   Sink
	log    logger.Logger
	opts   DispatcherOptions
	now    func() time.Time
}

func NewDispatcher(outbox Outbox, sink Sink, log logger.Logger, opts DispatcherOptions) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		outbox: outbox,
		sink:   sink,
		log:    log.With(map[string]any{"component": "notify_dispatcher"}),
		opts:   opts.withDefaults(),
		now:    time.Now,
	}
}

// Run procesa lotes cada Interval hasta que ctx termina.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.opts.Interval)
	defer ticker.Stop()

	d.log.Info("dispatcher started", map[string]any{"interval": d.opts.Interval.String(), "batch_size": d.opts.BatchSize})
	for {
		if _, err := d.DispatchOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.log.Error("dispatch batch failed", map[string]any{"error": err})
		}

		select {
		case <-ctx.Done():
			d.log.Info("dispatcher stopped", nil)
			return nil
		case <-ticker.C:
		}
	}
}

// DispatchOnce procesa un lote y devuelve cuántos eventos se entregaron.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	now := d.now().UTC()
	records, err := d.outbox.Lease(ctx, d.opts.BatchSize, now, d.opts.LeaseTTL)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		if d.deliver(ctx, rec) {
			delivered++
		}
	}
	return delivered, nil
}

func (d *Dispatcher) deliver(ctx context.Context, rec Record) bool {
	fields := map[string]any{"event_id": rec.Event.ID, "kind": rec.Event.Kind, "attempt": rec.Attempts}

	err := d.sink.Deliver(ctx, rec.Event)
	now := d.now().UTC()
	if err == nil {
		if markErr := d.outbox.MarkDelivered(ctx, rec.Event.ID, now); markErr != nil {
			fields["error"] = markErr
			d.log.Error("mark delivered failed", fields)
		}
		return true
	}

	fields["error"] = err
	if !httpclient.IsRetryable(err) || rec.Attempts >= d.opts.MaxAttempts {
		if markErr := d.outbox.MarkFailed(ctx, rec.Event.ID, now, err.Error()); markErr != nil {
			d.log.Error("mark failed failed", map[string]any{"event_id": rec.Event.ID, "error": markErr})
		}
		d.log.Warn("notification dropped", fields)
		return false
	}

	next := now.Add(RetryBackoff(rec.Attempts))
	if markErr := d.outbox.MarkRetry(ctx, rec.Event.ID, next, err.Error()); markErr != nil {
		d.log.Error("mark retry failed", map[string]any{"event_id": rec.Event.ID, "error": markErr})
	}
	fields["next_attempt_at"] = next
	d.log.Warn("notification delivery failed, retrying", fields)
	return false
}
