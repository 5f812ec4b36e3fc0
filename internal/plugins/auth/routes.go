package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/inlineeditor/internal/config"
	"github.com/keyxmakerx/inlineeditor/internal/middleware"
)

// RegisterRoutes mounts the login, registration and logout pages. They are
// public; other plugins guard their own routes with RequireAuth.
//
// Credential posts are rate limited per IP through rdb. A nil client turns
// the limits off.
func RegisterRoutes(e *echo.Echo, h *Handler, rdb *redis.Client, limits config.LimitsConfig) {
	e.GET("/login", h.LoginForm)
	e.POST("/login", h.Login, middleware.RateLimit(rdb, "login", limits.Login))
	e.GET("/register", h.RegisterForm)
	e.POST("/register", h.Register, middleware.RateLimit(rdb, "register", limits.Register))
	e.POST("/logout", h.Logout)
}
