package audit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/middleware"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/entities"
)

// Handler serves the activity feed and entity histories.
type Handler struct {
	service AuditService
}

// NewHandler creates a new audit handler.
func NewHandler(service AuditService) *Handler {
	return &Handler{service: service}
}

// Activity renders the campaign activity feed
// (GET /campaigns/:campaign/activity). Owners only, via route middleware.
func (h *Handler) Activity(c echo.Context) error {
	cc := campaigns.GetCampaignContext(c)
	if cc == nil {
		return apperror.NewMissingContext()
	}

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	entries, total, err := h.service.GetCampaignActivity(c.Request().Context(), cc.Campaign.ID, page)
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, ActivityPage(cc, entries, total, page, perPage))
}

// EntityHistory returns an entity's change history as JSON
// (GET /entities/:entity/history). Anyone who may view the entity may read
// its history.
func (h *Handler) EntityHistory(c echo.Context) error {
	ec := entities.GetEntityContext(c)
	if ec == nil {
		return apperror.NewMissingContext()
	}

	entries, err := h.service.GetEntityHistory(c.Request().Context(), ec.Entity.ID)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []AuditEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}
