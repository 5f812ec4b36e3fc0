package inlineeditor

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/access"
)

// Handler serves the inline editor endpoints. Both endpoints answer with
// status 200 and a JSON body: a command list or an {"error": ...} object.
type Handler struct {
	controller *FormController
}

// NewHandler creates a new inline editor handler.
func NewHandler(controller *FormController) *Handler {
	return &Handler{controller: controller}
}

// EntityForm opens the edit dialog on GET and processes a submission on
// POST (GET|POST /inline-content-editor/form/:entity_type_id/:entity_id/:form_display_id).
func (h *Handler) EntityForm(c echo.Context) error {
	if c.Request().Method == http.MethodPost {
		return h.SubmitForm(c)
	}

	ctx := c.Request().Context()
	resp, err := h.controller.EntityForm(ctx, access.AccountFrom(ctx),
		c.Param("entity_type_id"), c.Param("entity_id"), c.Param("form_display_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// SubmitForm processes the dialog form
// (POST /inline-content-editor/submit/:entity_type_id/:entity_id/:form_display_id).
func (h *Handler) SubmitForm(c echo.Context) error {
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form data")
	}

	ctx := c.Request().Context()
	resp, err := h.controller.SubmitEntityForm(ctx, access.AccountFrom(ctx),
		c.Param("entity_type_id"), c.Param("entity_id"), c.Param("form_display_id"), values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
