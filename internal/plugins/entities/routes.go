package entities

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/plugins/auth"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
)

// Route names, reversed with echo.Reverse.
const (
	RouteShow    = "entities.show"
	RouteEdit    = "entities.edit"
	RouteContent = "entities.content"
)

// RegisterRoutes sets up the entity pages. The campaign-scoped list and
// creation routes require campaign membership; entity pages check the
// entity's own access rules.
func RegisterRoutes(e *echo.Echo, h *Handler, svc EntityService, campaignSvc campaigns.CampaignService, authSvc auth.AuthService) {
	inCampaign := []echo.MiddlewareFunc{
		auth.RequireAuth(authSvc),
		campaigns.RequireCampaignAccess(campaignSvc),
	}
	e.GET("/campaigns/:campaign/entities", h.Index, inCampaign...)
	e.POST("/campaigns/:campaign/entities", h.Create, inCampaign...)

	requireEntity := RequireEntityAccess(svc, campaignSvc)
	e.GET("/entities/:entity", h.Show, requireEntity).Name = RouteShow
	e.GET("/entities/:entity/edit", h.Edit, requireEntity).Name = RouteEdit
	e.POST("/entities/:entity/edit", h.Edit, requireEntity)
	e.GET("/entity-content", h.Content).Name = RouteContent
}
