package app

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/middleware"
	"github.com/keyxmakerx/inlineeditor/internal/templates/pages"
)

// fallbackMessages are shown for errors that carry no message of their
// own. Other statuses use http.StatusText.
var fallbackMessages = map[int]string{
	http.StatusUnauthorized:        "You need to log in to access this page.",
	http.StatusForbidden:           "You don't have permission to access this resource.",
	http.StatusNotFound:            "The page you're looking for doesn't exist or has been moved.",
	http.StatusTooManyRequests:     "You're making too many requests. Please slow down.",
	http.StatusInternalServerError: "Something went wrong on our end. Please try again.",
}

func fallbackMessage(code int) string {
	if msg, ok := fallbackMessages[code]; ok {
		return msg
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fallbackMessages[http.StatusInternalServerError]
}

// classify turns err into the status and message the client sees, logging
// whatever must stay server-side.
func classify(c echo.Context, err error) (int, string) {
	path := c.Request().URL.Path

	if appErr, ok := apperror.As(err); ok {
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", path),
			)
		}
		return appErr.Code, appErr.Message
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			return httpErr.Code, msg
		}
		return httpErr.Code, fallbackMessage(httpErr.Code)
	}

	slog.Error("unhandled error", slog.Any("error", err), slog.String("path", path))
	return http.StatusInternalServerError, fallbackMessage(http.StatusInternalServerError)
}

// errorHandler answers failed requests in the form the caller can use:
//
//   - inline editor and JSON clients get {"error": message}
//   - htmx requests are sent to the login page on 401 and otherwise have
//     the error page swapped into the body
//   - browsers are redirected to the login page on 401 and otherwise get
//     the error page
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, message := classify(c, err)

	if wantsJSON(c) {
		_ = c.JSON(code, map[string]string{"error": message})
		return
	}

	htmx := c.Request().Header.Get("HX-Request") == "true"
	if code == http.StatusUnauthorized {
		if htmx {
			c.Response().Header().Set("HX-Redirect", "/login")
			_ = c.NoContent(http.StatusNoContent)
			return
		}
		_ = c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	if htmx {
		c.Response().Header().Set("HX-Retarget", "body")
		c.Response().Header().Set("HX-Reswap", "innerHTML")
	}
	_ = middleware.Render(c, code, pages.ErrorPage(code, message))
}

// wantsJSON reports whether the caller is the inline editor or asked for
// JSON.
func wantsJSON(c echo.Context) bool {
	req := c.Request()
	return strings.HasPrefix(req.URL.Path, "/inline-content-editor/") ||
		strings.HasPrefix(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
