package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/form"
	"github.com/keyxmakerx/inlineeditor/internal/middleware"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/audit"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/auth"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/entities"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/inlineeditor"
	"github.com/keyxmakerx/inlineeditor/internal/templates/layouts"
	"github.com/keyxmakerx/inlineeditor/internal/templates/pages"
)

// healthTimeout bounds the dependency pings of /healthz.
const healthTimeout = 2 * time.Second

// RegisterRoutes wires the plugins together and registers all routes. This
// is the single place where plugins meet: services are constructed here,
// entity types are registered with the manager, and the inline editor gets
// its update button handed to the content plugins.
func (a *App) RegisterRoutes() error {
	e := a.Echo

	// --- Auth ---
	authService := auth.NewAuthService(auth.NewUserRepository(a.DB), a.Redis, a.Config.Auth.SessionTTL)
	e.Use(auth.LoadSession(authService))
	auth.RegisterRoutes(e, auth.NewHandler(authService, int(a.Config.Auth.SessionTTL.Seconds())), a.Redis, a.Config.Limits)

	middleware.LayoutInjector = func(c echo.Context, ctx context.Context) context.Context {
		d := layouts.Data{
			CSRFToken:  middleware.GetCSRFToken(c),
			ActivePath: c.Request().URL.Path,
		}
		if session := auth.GetSession(c); session != nil {
			d.UserName = session.Name
		}
		return layouts.WithData(ctx, d)
	}

	// --- Content services ---
	// The entity type repository seeds new campaigns; the campaign service
	// answers the entities' membership lookups. Both report their changes
	// to the audit log.
	auditService := audit.NewAuditService(audit.NewAuditRepository(a.DB))
	typeRepo := entities.NewEntityTypeRepository(a.DB)
	campaignService := campaigns.NewCampaignService(campaigns.NewCampaignRepository(a.DB), typeRepo, auditService)
	entityService := entities.NewEntityService(entities.NewEntityRepository(a.DB), typeRepo, campaignService, auditService)

	campaignStorage := campaigns.NewStorage(campaignService)
	entityStorage := entities.NewStorage(entityService)
	if err := a.Entities.Register(campaigns.Definition(campaignStorage)); err != nil {
		return err
	}
	if err := a.Entities.Register(entities.Definition(entityStorage)); err != nil {
		return err
	}

	// --- Inline content editor ---
	builder := form.NewBuilder(middleware.CSRFTokenFromContext)
	checker := inlineeditor.NewAccessChecker()
	controller := inlineeditor.NewFormController(a.Entities, builder, checker, e, slog.Default())
	buttons := inlineeditor.NewButtonRenderer(checker, inlineeditor.NewCurrentEntityResolver(a.Entities), e)
	inlineeditor.RegisterRoutes(e, inlineeditor.NewHandler(controller),
		middleware.RateLimit(a.Redis, "inline_editor", a.Config.Limits.Editor))

	// --- Content pages ---
	campaigns.RegisterRoutes(e, campaigns.NewHandler(campaignService, buttons), campaignService, authService)
	entities.RegisterRoutes(e,
		entities.NewHandler(entityService, campaignService, entityStorage, builder, buttons),
		entityService, campaignService, authService,
	)
	audit.RegisterRoutes(e, audit.NewHandler(auditService), campaignService, entityService, authService)

	// --- Public pages ---
	e.GET("/", func(c echo.Context) error {
		return middleware.Render(c, http.StatusOK, pages.Landing())
	})
	e.GET("/healthz", a.health)

	slog.Info("routes registered",
		slog.Int("routes", len(e.Routes())),
		slog.Any("entity_types", a.Entities.TypeIDs()),
	)
	return nil
}

// health reports whether MariaDB and Redis answer, for container health
// checks.
func (a *App) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok", "redis": "ok"}
	code := http.StatusOK
	if a.DB == nil || a.DB.PingContext(ctx) != nil {
		status["database"], status["status"], code = "unavailable", "degraded", http.StatusServiceUnavailable
	}
	if a.Redis == nil || a.Redis.Ping(ctx).Err() != nil {
		status["redis"], status["status"], code = "unavailable", "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}
