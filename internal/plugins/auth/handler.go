package auth

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/middleware"
)

// afterLoginPath is where successful logins land.
const afterLoginPath = "/campaigns"

// Handler serves the login, registration and logout pages.
type Handler struct {
	service      AuthService
	cookieMaxAge int // seconds
}

// NewHandler creates the auth handler. cookieMaxAge should match the
// session TTL.
func NewHandler(service AuthService, cookieMaxAge int) *Handler {
	return &Handler{service: service, cookieMaxAge: cookieMaxAge}
}

// LoginForm serves GET /login.
func (h *Handler) LoginForm(c echo.Context) error {
	if h.loggedIn(c) {
		return c.Redirect(http.StatusSeeOther, afterLoginPath)
	}
	return middleware.Render(c, http.StatusOK, LoginPage(middleware.GetCSRFToken(c), "", ""))
}

// Login serves POST /login. Bad credentials re-render the form.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	token, _, err := h.service.Login(c.Request().Context(), LoginInput(req))
	if err != nil {
		msg, ok := apperror.UserFacing(err)
		if !ok {
			return err
		}
		csrf := middleware.GetCSRFToken(c)
		return renderForm(c, LoginFormComponent(csrf, req.Email, msg), LoginPage(csrf, req.Email, msg))
	}
	return h.startSession(c, token)
}

// RegisterForm serves GET /register.
func (h *Handler) RegisterForm(c echo.Context) error {
	if h.loggedIn(c) {
		return c.Redirect(http.StatusSeeOther, afterLoginPath)
	}
	return middleware.Render(c, http.StatusOK, RegisterPage(middleware.GetCSRFToken(c), nil, ""))
}

// Register serves POST /register and logs the new user in.
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	ctx := c.Request().Context()

	msg := req.problem()
	if msg == "" {
		_, err := h.service.Register(ctx, RegisterInput{Email: req.Email, DisplayName: req.DisplayName, Password: req.Password})
		if err != nil {
			var ok bool
			if msg, ok = apperror.UserFacing(err); !ok {
				return err
			}
		}
	}
	if msg != "" {
		csrf := middleware.GetCSRFToken(c)
		return renderForm(c, RegisterFormComponent(csrf, &req, msg), RegisterPage(csrf, &req, msg))
	}

	token, _, err := h.service.Login(ctx, LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	return h.startSession(c, token)
}

// Logout serves POST /logout. The cookie is cleared even when Redis fails.
func (h *Handler) Logout(c echo.Context) error {
	if token := getSessionToken(c); token != "" {
		_ = h.service.DestroySession(c.Request().Context(), token)
	}
	clearSessionCookie(c)
	return navigate(c, "/login")
}

func (h *Handler) startSession(c echo.Context, token string) error {
	setSessionCookie(c, token, h.cookieMaxAge)
	return navigate(c, afterLoginPath)
}

func (h *Handler) loggedIn(c echo.Context) bool {
	if GetSession(c) != nil {
		return true
	}
	token := getSessionToken(c)
	if token == "" {
		return false
	}
	_, err := h.service.ValidateSession(c.Request().Context(), token)
	return err == nil
}

// renderForm answers htmx submissions with the bare form and browsers with
// the full page.
func renderForm(c echo.Context, fragment, page templ.Component) error {
	if middleware.IsHTMX(c) {
		return middleware.Render(c, http.StatusOK, fragment)
	}
	return middleware.Render(c, http.StatusOK, page)
}

// navigate redirects browsers with a 303 and htmx with HX-Redirect.
func navigate(c echo.Context, path string) error {
	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", path)
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, path)
}
