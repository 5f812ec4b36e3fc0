package middleware

import (
	"context"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// LayoutInjector copies what the page layout shows (login state, user
// name, CSRF token, active path) from the Echo context into the context
// templates render with. app.RegisterRoutes sets it, so this package needs
// no plugin imports.
var LayoutInjector func(echo.Context, context.Context) context.Context

// IsHTMX reports whether an htmx-enabled page asked for a fragment. Boosted
// navigations want whole pages and do not count.
func IsHTMX(c echo.Context) bool {
	h := c.Request().Header
	return h.Get("HX-Request") == "true" && h.Get("HX-Boosted") != "true"
}

// Render writes component as an HTML response with status code.
func Render(c echo.Context, code int, component templ.Component) error {
	ctx := c.Request().Context()
	if LayoutInjector != nil {
		ctx = LayoutInjector(c, ctx)
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	res.WriteHeader(code)
	return component.Render(ctx, res.Writer)
}
