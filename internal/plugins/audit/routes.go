package audit

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/plugins/auth"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/entities"
)

// RegisterRoutes sets up the activity feed (campaign owners) and the
// per-entity history (anyone who may view the entity).
func RegisterRoutes(e *echo.Echo, h *Handler, campaignSvc campaigns.CampaignService, entitySvc entities.EntityService, authSvc auth.AuthService) {
	e.GET("/campaigns/:campaign/activity", h.Activity,
		auth.RequireAuth(authSvc),
		campaigns.RequireCampaignAccess(campaignSvc),
		campaigns.RequireRole(campaigns.RoleOwner),
	)
	e.GET("/entities/:entity/history", h.EntityHistory,
		entities.RequireEntityAccess(entitySvc, campaignSvc),
	)
}
