package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	csrfTokenLength = 32 // random bytes; hex-encoded in the cookie
	csrfCookieName  = "inline_editor_csrf"
	csrfHeaderName  = "X-CSRF-Token" // sent by the inline editor script
	csrfFormField   = "csrf_token"   // hidden input added by the form builder
)

type csrfCtxKey struct{}

// CSRF protects state-changing requests with a double-submit cookie. Every
// visitor gets a random token cookie; POST, PUT, PATCH and DELETE must echo
// it in the X-CSRF-Token header or the csrf_token form field.
//
// The cookie is readable from scripts so the inline editor can send the
// header. The token is also put on the Echo and request contexts for
// templates and the form builder.
func CSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := csrfToken(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate CSRF token")
			}
			req := c.Request()
			c.Set(csrfFormField, token)
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), csrfCtxKey{}, token)))

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			if !tokensMatch(submittedCSRFToken(c), token) {
				return echo.NewHTTPError(http.StatusForbidden, "invalid or missing CSRF token")
			}
			return next(c)
		}
	}
}

// csrfToken returns the visitor's token, issuing a cookie for a new one.
func csrfToken(c echo.Context) (string, error) {
	req := c.Request()
	if cookie, err := req.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	c.SetCookie(&http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func submittedCSRFToken(c echo.Context) string {
	if h := c.Request().Header.Get(csrfHeaderName); h != "" {
		return h
	}
	return c.FormValue(csrfFormField)
}

func tokensMatch(submitted, token string) bool {
	return submitted != "" && subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) == 1
}

// GetCSRFToken returns the request's CSRF token from the Echo context.
func GetCSRFToken(c echo.Context) string {
	token, _ := c.Get(csrfFormField).(string)
	return token
}

// CSRFTokenFromContext returns the request's CSRF token from a
// context.Context. The form builder reads it from here.
func CSRFTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(csrfCtxKey{}).(string)
	return token
}
