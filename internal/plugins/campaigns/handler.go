package campaigns

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/middleware"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/auth"
	"github.com/keyxmakerx/inlineeditor/internal/routing"
)

// UpdateButtons renders the inline editor's update button. Implemented by
// inlineeditor.ButtonRenderer.
type UpdateButtons interface {
	RenderUpdateButton(ctx context.Context, entityTypeID, formDisplayID string) templ.Component
}

// Handler handles HTTP requests for campaign pages. Handlers are thin:
// bind request, call service, render response.
type Handler struct {
	service CampaignService
	buttons UpdateButtons
}

// NewHandler creates a new campaign handler.
func NewHandler(service CampaignService, buttons UpdateButtons) *Handler {
	return &Handler{service: service, buttons: buttons}
}

// Index renders the caller's campaigns and the creation form (GET /campaigns).
func (h *Handler) Index(c echo.Context) error {
	campaigns, err := h.service.ListForUser(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK,
		CampaignIndexPage(campaigns, middleware.GetCSRFToken(c), &CreateCampaignRequest{}, ""))
}

// Create processes the campaign creation form (POST /campaigns).
func (h *Handler) Create(c echo.Context) error {
	var req CreateCampaignRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	ctx := c.Request().Context()
	userID := auth.GetUserID(c)
	campaign, err := h.service.Create(ctx, userID, CreateCampaignInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		msg, ok := apperror.UserFacing(err)
		if !ok {
			return err
		}
		csrfToken := middleware.GetCSRFToken(c)
		if middleware.IsHTMX(c) {
			return middleware.Render(c, http.StatusOK, CreateFormComponent(csrfToken, &req, msg))
		}
		campaigns, listErr := h.service.ListForUser(ctx, userID)
		if listErr != nil {
			return listErr
		}
		return middleware.Render(c, http.StatusOK, CampaignIndexPage(campaigns, csrfToken, &req, msg))
	}

	target := routing.Reverse(c.Echo(), RouteShow, campaign.ID)
	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", target)
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// Show renders the campaign page (GET /campaigns/:campaign). The campaign
// was upcast by RequireCampaignAccess.
func (h *Handler) Show(c echo.Context) error {
	cc := GetCampaignContext(c)
	if cc == nil {
		return apperror.NewMissingContext()
	}
	return middleware.Render(c, http.StatusOK, CampaignShowPage(cc, h.buttons))
}

// Content renders the campaign's content region alone
// (GET /campaign-content?entity_id=). The inline editor fetches it after a
// save to refresh the page in place. The campaign is not upcast here; the
// update button finds it through the entity_id parameter.
func (h *Handler) Content(c echo.Context) error {
	id := c.QueryParam("entity_id")
	if id == "" {
		return apperror.NewBadRequest("entity_id is required")
	}

	cc, err := resolveCampaign(c, h.service, id)
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, CampaignContent(cc, h.buttons))
}
