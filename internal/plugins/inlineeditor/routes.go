package inlineeditor

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the inline editor routes. The routes are named so
// the button renderer and the form action can reverse them. Access is
// checked per entity by the controller; anonymous callers get the error
// payload rather than a redirect.
func RegisterRoutes(e *echo.Echo, h *Handler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/inline-content-editor", mw...)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		g.Add(method, "/form/:entity_type_id/:entity_id/:form_display_id", h.EntityForm).Name = RouteEntityForm
	}
	g.POST("/submit/:entity_type_id/:entity_id/:form_display_id", h.SubmitForm).Name = RouteSubmitForm
}
