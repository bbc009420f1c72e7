package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config agrupa todo lo que el servicio lee del entorno.
type Config struct {
	Port             string        `env:"PORT" envDefault:"8080"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`

	// Vacío => storage in-memory (modo dev).
	DBDSN string `env:"DB_DSN"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	AppName   string `env:"APP_NAME" envDefault:"campaign-grants"`

	// Vacío => modo dev con X-Debug-User-ID.
	JWTSecret string `env:"AUTH_JWT_SECRET"`
	JWTIssuer string `env:"AUTH_JWT_ISSUER"`

	ReferencePrefix string `env:"REFERENCE_PREFIX" envDefault:"GRT"`

	BootstrapGMID   string `env:"BOOTSTRAP_GM_ID"`
	BootstrapGMName string `env:"BOOTSTRAP_GM_NAME" envDefault:"Game Master"`

	NotifyWebhookURL   string        `env:"NOTIFY_WEBHOOK_URL"`
	NotifyPollInterval time.Duration `env:"NOTIFY_POLL_INTERVAL" envDefault:"2s"`
	NotifyBatchSize    int           `env:"NOTIFY_BATCH_SIZE" envDefault:"20"`
	NotifyMaxAttempts  int           `env:"NOTIFY_MAX_ATTEMPTS" envDefault:"5"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// ParseEnv carga target desde variables de entorno.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parsea y valida la configuración completa.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFrom es Load sobre un entorno explícito (tests, tooling).
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT is required")
	}
	if strings.TrimSpace(c.ReferencePrefix) == "" {
		return fmt.Errorf("REFERENCE_PREFIX must not be empty")
	}
	if c.NotifyBatchSize <= 0 {
		return fmt.Errorf("NOTIFY_BATCH_SIZE must be greater than zero")
	}
	if c.NotifyMaxAttempts <= 0 {
		return fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be greater than zero")
	}
	if c.NotifyPollInterval <= 0 {
		return fmt.Errorf("NOTIFY_POLL_INTERVAL must be greater than zero")
	}
	if v := strings.TrimSpace(c.NotifyWebhookURL); v != "" {
		if _, err := url.ParseRequestURI(v); err != nil {
			return fmt.Errorf("NOTIFY_WEBHOOK_URL: %w", err)
		}
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

// InMemory indica que no hay DSN y se usa storage en memoria.
func (c Config) InMemory() bool {
	return strings.TrimSpace(c.DBDSN) == ""
}
