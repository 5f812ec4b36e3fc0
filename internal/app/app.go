// Package app builds the HTTP server: it owns the shared connections and
// the entity manager, installs the global middleware and wires the plugins
// together in RegisterRoutes.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/inlineeditor/internal/config"
	"github.com/keyxmakerx/inlineeditor/internal/entity"
	"github.com/keyxmakerx/inlineeditor/internal/middleware"
	"github.com/keyxmakerx/inlineeditor/internal/routing"
)

// App is the assembled server. DB and Redis may be nil in tests; the
// features that need them are then reported unhealthy or disabled.
type App struct {
	Config *config.Config
	DB     *sql.DB
	Redis  *redis.Client

	// Echo serves requests and reverses named routes for the plugins.
	Echo *echo.Echo

	// Entities is the registry of editable entity types.
	Entities *entity.Manager
}

// New creates the server with its global middleware, error handler and
// static file route. Plugins are added by RegisterRoutes.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) *App {
	e := echo.New()
	e.HideBanner, e.HidePort = true, true
	middleware.TrustedProxies(e, cfg.TrustedProxies)

	a := &App{Config: cfg, DB: db, Redis: rdb, Echo: e, Entities: entity.NewManager()}

	// Outermost first. The session loader joins in RegisterRoutes.
	e.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.SecurityHeaders(),
		middleware.CSRF(),
		routing.Middleware(),
	)
	e.HTTPErrorHandler = a.errorHandler
	e.Static("/static", "static")
	return a
}

// Start serves on the configured port until Shutdown, then returns
// http.ErrServerClosed.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting inline editor server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// expires.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}
