package campaigns

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/plugins/auth"
)

// Route names, reversed with echo.Reverse.
const (
	RouteShow    = "campaigns.show"
	RouteContent = "campaigns.content"
)

// RegisterRoutes sets up the campaign pages. Listing and creating require a
// session; the campaign page and its content fragment check membership
// through the campaign's own access rules.
func RegisterRoutes(e *echo.Echo, h *Handler, svc CampaignService, authSvc auth.AuthService) {
	requireAuth := auth.RequireAuth(authSvc)
	e.GET("/campaigns", h.Index, requireAuth)
	e.POST("/campaigns", h.Create, requireAuth)

	e.GET("/campaigns/:campaign", h.Show, RequireCampaignAccess(svc)).Name = RouteShow
	e.GET("/campaign-content", h.Content).Name = RouteContent
}
