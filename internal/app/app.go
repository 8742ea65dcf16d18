package app

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/rosterhq/roster-backend/internal/auth/http"
	authservice "github.com/rosterhq/roster-backend/internal/auth/service"
	"github.com/rosterhq/roster-backend/internal/auth/session"
	"github.com/rosterhq/roster-backend/internal/common/clock"
	"github.com/rosterhq/roster-backend/internal/common/config"
	"github.com/rosterhq/roster-backend/internal/common/crypto"
	"github.com/rosterhq/roster-backend/internal/common/db"
	commonhttp "github.com/rosterhq/roster-backend/internal/common/http"
	"github.com/rosterhq/roster-backend/internal/common/httpmetrics"
	"github.com/rosterhq/roster-backend/internal/common/logger"
	userhttp "github.com/rosterhq/roster-backend/internal/user/http"
	"github.com/rosterhq/roster-backend/internal/user/repository"
	userservice "github.com/rosterhq/roster-backend/internal/user/service"
)

// App wires the store, services, session manager and controllers together.
type App struct {
	Config   config.Config
	Log      *logger.Logger
	Repo     repository.Repository
	Users    *userservice.Service
	Auth     *authservice.AuthService
	Sessions *scs.SessionManager
	Binder   *session.Binder
	Pool     *pgxpool.Pool
}

func New(cfg config.Config, log *logger.Logger) (*App, error) {
	var repo repository.Repository
	var pool *pgxpool.Pool

	if cfg.DatabaseURL != "" {
		if err := repository.RunMigrations(context.Background(), cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool = db.NewPool(log, cfg.DatabaseURL)
		repo = repository.NewPgRepository(pool)
	} else {
		log.Warnf("DATABASE_URL not set, using in-memory user store")
		repo = repository.NewMemoryRepository()
	}

	users := userservice.New(userservice.Deps{
		Repo:   repo,
		Clock:  clock.NewRealClock(),
		Tokens: crypto.NewUUIDGenerator(),
		Log:    log,
	})

	sessions := session.NewManager(cfg.SessionLifetime)
	binder := session.NewBinder(sessions, repo, log)
	auth := authservice.NewAuthService(repo, log)

	return &App{
		Config:   cfg,
		Log:      log,
		Repo:     repo,
		Users:    users,
		Auth:     auth,
		Sessions: sessions,
		Binder:   binder,
		Pool:     pool,
	}, nil
}

// Handler assembles the full middleware chain around the route mux.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(a.Log))
	mux.Handle("/metrics", promhttp.Handler())

	userhttp.NewHandler(a.Users, a.Binder, a.Config.RequestTimeout, a.Log).Register(mux)
	authhttp.NewHandler(a.Auth, a.Binder, a.Config.RequestTimeout, a.Log).Register(mux)

	recovery := commonhttp.RecoveryMiddleware(a.Log)
	maxRequestSize := commonhttp.MaxRequestSizeMiddleware(commonhttp.DefaultMaxRequestSize)

	handler := a.Sessions.LoadAndSave(mux)
	handler = httpmetrics.Wrap(handler)
	handler = maxRequestSize(handler)
	handler = recovery(handler)
	return commonhttp.SecurityHeadersMiddleware(handler)
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
