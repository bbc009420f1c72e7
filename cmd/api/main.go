package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campaign-grants/internal/adapters/auth/jwtverify"
	pg "campaign-grants/internal/adapters/storage/postgres"
	"campaign-grants/internal/notify"
	"campaign-grants/internal/platform/config"
	"campaign-grants/internal/platform/httpclient"
	"campaign-grants/internal/platform/logger"
	"campaign-grants/internal/platform/otel"
	"campaign-grants/internal/ports/auth"
	"campaign-grants/internal/router"

	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:  "campaign-grants",
		Usage: "Servidor de grants discrecionales de habilidades",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			notifierCommand(),
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			return runServe(ctx)
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Levanta la API HTTP (in-memory si DB_DSN está vacío)",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return runServe(ctx)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Aplica las migraciones goose sobre DB_DSN",
		Action: func(ctx context.Context, _ *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.InMemory() {
				return errors.New("migrate: DB_DSN is required")
			}
			lg := newLogger(cfg)

			db, err := pg.Open(cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			if err := pg.RunMigrations(ctx, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			lg.Info("migrations applied", nil)
			return nil
		},
	}
}

func notifierCommand() *cli.Command {
	return &cli.Command{
		Name:  "notifier",
		Usage: "Drena el outbox de notificaciones de Postgres",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "once", Usage: "procesa un solo lote y termina"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.InMemory() {
				return errors.New("notifier: DB_DSN is required; in-memory mode dispatches inside serve")
			}
			lg := newLogger(cfg)

			db, err := pg.Open(cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			sink, err := newSink(cfg, lg)
			if err != nil {
				return err
			}
			d := notify.NewDispatcher(pg.NewOutbox(db), sink, lg, dispatcherOptions(cfg))

			if c.Bool("once") {
				n, err := d.DispatchOnce(ctx)
				lg.Info("notifier batch done", map[string]any{"processed": n})
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return d.Run(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	lg := newLogger(cfg)

	shutdownTracing, err := otel.Setup(ctx, cfg.AppName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	var db *sql.DB
	if !cfg.InMemory() {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		if err := pg.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	app := router.New(router.Options{
		AuthVerifier:    newVerifier(cfg),
		DB:              db,
		Logger:          lg,
		ReferencePrefix: cfg.ReferencePrefix,
	})

	if cfg.BootstrapGMID != "" {
		if _, err := app.Members.EnsureAuthority(ctx, cfg.BootstrapGMID, cfg.BootstrapGMName); err != nil {
			return fmt.Errorf("bootstrap gm: %w", err)
		}
		lg.Info("bootstrap authority ready", map[string]any{"member_id": cfg.BootstrapGMID})
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// En memoria el outbox solo vive en este proceso: el dispatcher corre aquí.
	if db == nil {
		sink, err := newSink(cfg, lg)
		if err != nil {
			return err
		}
		d := notify.NewDispatcher(app.Outbox, sink, lg, dispatcherOptions(cfg))
		go func() { _ = d.Run(ctx) }()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Handler,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("starting server", map[string]any{
			"addr":      srv.Addr,
			"in_memory": cfg.InMemory(),
			"auth":      cfg.JWTSecret != "",
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		lg.Info("shutting down", nil)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(cfg config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
}

// newVerifier devuelve nil sin secreto: el middleware cae a X-Debug-User-ID.
func newVerifier(cfg config.Config) auth.AuthVerifier {
	if cfg.JWTSecret == "" {
		return nil
	}
	return jwtverify.New(jwtverify.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
}

func newSink(cfg config.Config, lg logger.Logger) (notify.Sink, error) {
	if cfg.NotifyWebhookURL == "" {
		return notify.NewLogSink(lg), nil
	}
	return notify.NewWebhookSink(httpclient.New(httpclient.DefaultTimeout), cfg.NotifyWebhookURL)
}

func dispatcherOptions(cfg config.Config) notify.DispatcherOptions {
	return notify.DispatcherOptions{
		BatchSize:   cfg.NotifyBatchSize,
		Interval:    cfg.NotifyPollInterval,
		MaxAttempts: cfg.NotifyMaxAttempts,
	}
}
