package config

import (
	"testing"
	"time"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("expected default addr :8080, got %s", cfg.Addr())
	}
	if !cfg.InMemory() {
		t.Fatalf("expected in-memory mode without DB_DSN")
	}
	if cfg.ReferencePrefix != "GRT" {
		t.Fatalf("expected default reference prefix GRT, got %s", cfg.ReferencePrefix)
	}
	if cfg.NotifyPollInterval != 2*time.Second {
		t.Fatalf("expected 2s poll interval, got %s", cfg.NotifyPollInterval)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PORT":              "9090",
		"DB_DSN":            "postgres://localhost/grants",
		"NOTIFY_BATCH_SIZE": "50",
		"REFERENCE_PREFIX":  "WSP",
	})
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Addr() != ":9090" || cfg.InMemory() || cfg.NotifyBatchSize != 50 || cfg.ReferencePrefix != "WSP" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadFrom_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"NOTIFY_BATCH_SIZE":    "0",
		"NOTIFY_MAX_ATTEMPTS":  "-1",
		"NOTIFY_WEBHOOK_URL":   "not a url",
		"NOTIFY_POLL_INTERVAL": "soon",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			if _, err := LoadFrom(map[string]string{key: value}); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}
