package entities

import (
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/form"
	"github.com/keyxmakerx/inlineeditor/internal/middleware"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/auth"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
	"github.com/keyxmakerx/inlineeditor/internal/routing"
)

// UpdateButtons renders the inline editor's update button. Implemented by
// inlineeditor.ButtonRenderer.
type UpdateButtons interface {
	RenderUpdateButton(ctx context.Context, entityTypeID, formDisplayID string) templ.Component
}

// Handler handles HTTP requests for entity pages. Handlers are thin:
// bind request, call service, render response. No business logic lives here.
type Handler struct {
	service EntityService
	members campaigns.MemberLookup
	storage store
	forms   *form.Builder
	buttons UpdateButtons
}

// NewHandler creates a new entity handler.
func NewHandler(service EntityService, members campaigns.MemberLookup, storage *Storage, forms *form.Builder, buttons UpdateButtons) *Handler {
	return &Handler{
		service: service,
		members: members,
		storage: storage,
		forms:   forms,
		buttons: buttons,
	}
}

// Index renders the campaign's entity list and, for scribes, the creation
// form (GET /campaigns/:campaign/entities).
func (h *Handler) Index(c echo.Context) error {
	cc := campaigns.GetCampaignContext(c)
	if cc == nil {
		return apperror.NewMissingContext()
	}
	return h.renderIndex(c, cc, http.StatusOK, &CreateEntityRequest{}, "")
}

func (h *Handler) renderIndex(c echo.Context, cc *campaigns.CampaignContext, code int, req *CreateEntityRequest, errMsg string) error {
	ctx := c.Request().Context()
	list, err := h.service.List(ctx, cc.Campaign.ID, cc.MemberRole)
	if err != nil {
		return err
	}
	types, err := h.service.GetEntityTypes(ctx, cc.Campaign.ID)
	if err != nil {
		return err
	}
	return middleware.Render(c, code,
		EntityIndexPage(cc, list, types, middleware.GetCSRFToken(c), req, errMsg))
}

// Create processes the entity creation form
// (POST /campaigns/:campaign/entities). Scribes and owners only.
func (h *Handler) Create(c echo.Context) error {
	cc := campaigns.GetCampaignContext(c)
	if cc == nil {
		return apperror.NewMissingContext()
	}
	if cc.MemberRole < campaigns.RoleScribe {
		return apperror.NewForbidden("only scribes and owners can create entities")
	}

	var req CreateEntityRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	e, err := h.service.Create(c.Request().Context(), cc.Campaign.ID, auth.GetUserID(c), CreateEntityInput{
		Name:         req.Name,
		EntityTypeID: req.EntityTypeID,
		TypeLabel:    req.TypeLabel,
		IsPrivate:    req.IsPrivate,
	})
	if err != nil {
		msg, ok := apperror.UserFacing(err)
		if !ok {
			return err
		}
		return h.renderIndex(c, cc, http.StatusOK, &req, msg)
	}

	return redirect(c, routing.Reverse(c.Echo(), RouteShow, e.ID))
}

// Show renders the entity page (GET /entities/:entity). The entity was
// upcast by RequireEntityAccess.
func (h *Handler) Show(c echo.Context) error {
	ec := GetEntityContext(c)
	if ec == nil {
		return apperror.NewMissingContext()
	}
	return middleware.Render(c, http.StatusOK, EntityShowPage(ec, h.buttons))
}

// Content renders the entity's content region alone
// (GET /entity-content?entity_id=), for refreshing the page after an
// inline edit. The entity is not upcast here; the update button finds it
// through the entity_id parameter.
func (h *Handler) Content(c echo.Context) error {
	id := c.QueryParam("entity_id")
	if id == "" {
		return apperror.NewBadRequest("entity_id is required")
	}

	ec, err := resolveEntity(c, h.service, h.members, id)
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, EntityContent(ec, h.buttons))
}

// Edit renders and processes the full edit form
// (GET|POST /entities/:entity/edit), including preview and delete.
func (h *Handler) Edit(c echo.Context) error {
	ec := GetEntityContext(c)
	if ec == nil {
		return apperror.NewMissingContext()
	}

	ctx := c.Request().Context()
	if !ec.Entity.Access(ctx, access.OpUpdate, access.AccountFrom(ctx)).IsAllowed() {
		return apperror.NewForbidden("you may not edit this entity")
	}

	obj := &DefaultForm{storage: h.storage}
	obj.SetEntity(ec.Entity)
	action := form.WithAction(routing.Reverse(c.Echo(), RouteEdit, ec.Entity.ID))
	alter := form.WithAlter(func(root *form.Element) {
		if !ec.Entity.Access(ctx, access.OpDelete, access.AccountFrom(ctx)).IsAllowed() {
			root.Find("actions", "delete").Deny()
		}
	})

	if c.Request().Method != http.MethodPost {
		built, err := h.forms.GetForm(ctx, obj, action, alter)
		if err != nil {
			return err
		}
		return middleware.Render(c, http.StatusOK, EntityEditPage(ec, built, ""))
	}

	values, err := c.FormParams()
	if err != nil {
		return apperror.NewBadRequest("invalid form submission")
	}

	built, state, err := h.forms.SubmitForm(ctx, obj, values, action, alter)
	switch {
	case errors.Is(err, form.ErrFormIDMismatch):
		return apperror.NewBadRequest("invalid form submission")
	case errors.Is(err, errDeleteDenied):
		return apperror.NewForbidden("you may not delete this entity")
	case err != nil:
		msg, ok := apperror.UserFacing(err)
		if !ok {
			return err
		}
		code := apperror.SafeCode(err)
		// Rebuild from the submitted values so the user can fix them.
		if built, err = h.forms.GetForm(ctx, obj, action, alter); err != nil {
			return err
		}
		return middleware.Render(c, code, EntityEditPage(ec, built, msg))
	}

	if !state.Executed {
		code := http.StatusOK
		if state.HasErrors() {
			code = http.StatusUnprocessableEntity
		}
		return middleware.Render(c, code, EntityEditPage(ec, built, ""))
	}

	if obj.Deleted() {
		return redirect(c, "/campaigns/"+ec.Entity.CampaignID+"/entities")
	}
	return redirect(c, routing.Reverse(c.Echo(), RouteShow, ec.Entity.ID))
}

// redirect sends a See Other, or an HX-Redirect for HTMX requests.
func redirect(c echo.Context, target string) error {
	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", target)
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, target)
}
