package notify

import (
	"context"
	"errors"
	"strings"

	"campaign-grants/internal/platform/httpclient"
	"campaign-grants/internal/platform/logger"
)

// Sink entrega un evento a su destino final.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// WebhookSink hace POST del evento a una URL fija.
type WebhookSink struct {
	client *httpclient.Client
	url    string
}

func NewWebhookSink(client *httpclient.Client, url string) (*WebhookSink, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("webhook url is required")
	}
	if client == nil {
		client = httpclient.New(httpclient.DefaultTimeout)
	}
	return &WebhookSink{client: client, url: url}, nil
}

func (s *WebhookSink) Deliver(ctx context.Context, e Event) error {
	return s.client.DoJSON(ctx, "POST", s.url, map[string]string{
		"X-Event-Kind": string(e.Kind),
		"X-Event-ID":   e.ID,
	}, e, nil)
}

// LogSink solo loguea; es el sink por defecto sin webhook configurado.
type LogSink struct {
	log logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(ctx context.Context, e Event) error {
	s.log.Info("notification", map[string]any{
		"event_id":     e.ID,
		"kind":         e.Kind,
		"recipient_id": e.RecipientID,
		"grant_id":     e.GrantID,
		"actor_id":     e.ActorID,
	})
	return nil
}
