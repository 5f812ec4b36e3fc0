package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/apperror"
)

const sessionContextKey = "auth_session"

// LoadSession resolves the session cookie, if any. A valid session is
// stored on the Echo context and becomes the request's access.Account; a
// stale cookie is cleared. Either way the request continues, anonymous when
// there is no session.
func LoadSession(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetSession(c) != nil {
				return next(c)
			}
			token := getSessionToken(c)
			if token == "" {
				return next(c)
			}

			session, err := service.ValidateSession(c.Request().Context(), token)
			if err != nil {
				clearSessionCookie(c)
				return next(c)
			}

			c.Set(sessionContextKey, session)
			req := c.Request()
			c.SetRequest(req.WithContext(access.WithAccount(req.Context(), session)))
			return next(c)
		}
	}
}

// RequireAuth loads the session and answers 401 without one. The error
// handler turns that into a login redirect for browsers and a JSON error
// for the inline editor.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	load := LoadSession(service)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return load(func(c echo.Context) error {
			if GetSession(c) == nil {
				return apperror.NewUnauthorized("authentication required")
			}
			return next(c)
		})
	}
}

// GetSession returns the request's session, or nil when anonymous.
func GetSession(c echo.Context) *Session {
	s, _ := c.Get(sessionContextKey).(*Session)
	return s
}

// GetUserID returns the logged-in user's ID, or "".
func GetUserID(c echo.Context) string {
	if s := GetSession(c); s != nil {
		return s.UserID
	}
	return ""
}
