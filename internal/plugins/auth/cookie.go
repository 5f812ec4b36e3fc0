package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// sessionCookieName holds the session token. The cookie is HttpOnly;
// scripts use the separate CSRF cookie.
const sessionCookieName = "inline_editor_session"

func getSessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// setSessionCookie stores token for maxAge seconds. The cookie is Secure
// when the request arrived over TLS, directly or through a proxy.
func setSessionCookie(c echo.Context, token string, maxAge int) {
	req := c.Request()
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{Name: sessionCookieName, Path: "/", MaxAge: -1, HttpOnly: true})
}
