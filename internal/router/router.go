package router

import (
	"database/sql"
	"net/http"

	_ "campaign-grants/docs"
	mem "campaign-grants/internal/adapters/storage/memory"
	pg "campaign-grants/internal/adapters/storage/postgres"
	"campaign-grants/internal/domain/abilities"
	"campaign-grants/internal/domain/grants"
	"campaign-grants/internal/domain/resources"
	"campaign-grants/internal/domain/roster"
	"campaign-grants/internal/middleware"
	"campaign-grants/internal/notify"
	"campaign-grants/internal/platform/logger"
	"campaign-grants/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger          logger.Logger
	ReferencePrefix string

	// Opcional: reemplaza al OutboxPublisher (tests).
	Notifier notify.Notifier
}

// App expone lo que cmd/api necesita además del handler: el roster para
// sembrar la autoridad inicial y el outbox para el dispatcher.
type App struct {
	Handler http.Handler
	Members *roster.Service
	Outbox  notify.Outbox
}

func NewRouter(opts Options) http.Handler {
	return New(opts).Handler
}

func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	var (
		memberRepo  roster.Repository
		abilityRepo abilities.Repository
		resRepo     resources.Repository
		grantStore  grants.Store
		outbox      notify.Outbox
	)

	if opts.DB != nil {
		memberRepo = pg.NewMembersRepo(opts.DB)
		abilityRepo = pg.NewAbilitiesRepo(opts.DB)
		resRepo = pg.NewResourcesRepo(opts.DB)
		grantStore = pg.NewGrantsStore(opts.DB)
		outbox = pg.NewOutbox(opts.DB)
	} else {
		db := mem.NewDB()
		memberRepo = mem.NewMemberRepo()
		abilityRepo = mem.NewAbilityRepo()
		resRepo = mem.NewResourceRepo(db)
		grantStore = mem.NewGrantStore(db)
		outbox = mem.NewOutbox(db)
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewOutboxPublisher(outbox, log)
	}

	// Services por módulo
	membersSvc := roster.NewService(memberRepo)
	abilitiesSvc := abilities.NewService(abilityRepo, membersSvc)
	resourcesSvc := resources.NewService(resRepo, membersSvc)
	grantsSvc := grants.NewService(grantStore, membersSvc, abilitiesSvc, grants.Options{
		Notifier:        notifier,
		Logger:          log,
		ReferencePrefix: opts.ReferencePrefix,
	})

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	roster.RegisterRoutes(r, membersSvc)
	abilities.RegisterRoutes(r, abilitiesSvc)
	resources.RegisterRoutes(r, resourcesSvc)
	grants.RegisterRoutes(r, grantsSvc)

	return &App{
		Handler: r,
		Members: membersSvc,
		Outbox:  outbox,
	}
}
