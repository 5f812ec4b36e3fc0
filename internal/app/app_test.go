package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/config"
)

func newTestApp() *App {
	return New(&config.Config{Env: "development", Port: 8080}, nil, nil)
}

func handle(a *App, target string, header map[string]string, err error) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.errorHandler(err, a.Echo.NewContext(req, rec))
	return rec
}

func TestErrorHandler_InlineEditorGetsJSON(t *testing.T) {
	a := newTestApp()
	rec := handle(a, "/inline-content-editor/form/entity/1/inline", nil, apperror.NewForbidden("nope"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body: %v", err)
	}
	if body["error"] != "nope" {
		t.Errorf("expected the safe message, got %v", body)
	}
}

func TestErrorHandler_HidesInternalDetails(t *testing.T) {
	a := newTestApp()
	rec := handle(a, "/entities/1", map[string]string{echo.HeaderAccept: echo.MIMEApplicationJSON},
		apperror.NewInternal(errors.New("dial tcp 10.0.0.5:3306: refused")))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Error("internal error leaked to the client")
	}
}

func TestErrorHandler_BrowserErrorPage(t *testing.T) {
	a := newTestApp()
	rec := handle(a, "/entities/1", nil, apperror.NewNotFound("entity not found"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "entity not found") {
		t.Error("expected the message on the error page")
	}
}

func TestErrorHandler_UnauthorizedRedirects(t *testing.T) {
	a := newTestApp()

	rec := handle(a, "/campaigns", nil, apperror.NewUnauthorized("login"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = handle(a, "/campaigns", map[string]string{"HX-Request": "true"}, apperror.NewUnauthorized("login"))
	if rec.Header().Get("HX-Redirect") != "/login" {
		t.Errorf("expected HX-Redirect for HTMX, got %v", rec.Header())
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	a := newTestApp()
	rec := handle(a, "/missing", map[string]string{echo.HeaderAccept: echo.MIMEApplicationJSON}, echo.ErrNotFound)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHealth_ReportsMissingDependencies(t *testing.T) {
	a := newTestApp()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	if err := a.health(a.Echo.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"database":"unavailable"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestErrorHandler_HTMXErrorPageTakesTheBody(t *testing.T) {
	a := newTestApp()
	rec := handle(a, "/entities/1", map[string]string{"HX-Request": "true"}, apperror.NewForbidden("not yours"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Retarget") != "body" || rec.Header().Get("HX-Reswap") != "innerHTML" {
		t.Errorf("expected body retarget headers, got %v", rec.Header())
	}
}

func TestErrorHandler_RateLimitMessage(t *testing.T) {
	a := newTestApp()
	rec := handle(a, "/inline-content-editor/submit/entity/1/inline", nil,
		echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests."))
	if rec.Code != http.StatusTooManyRequests || !strings.Contains(rec.Body.String(), "Too many requests.") {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestFallbackMessage(t *testing.T) {
	if got := fallbackMessage(http.StatusNotFound); !strings.Contains(got, "doesn't exist") {
		t.Errorf("unexpected 404 message %q", got)
	}
	if got := fallbackMessage(http.StatusTeapot); got != http.StatusText(http.StatusTeapot) {
		t.Errorf("expected the status text, got %q", got)
	}
	if got := fallbackMessage(999); got != fallbackMessages[http.StatusInternalServerError] {
		t.Errorf("unexpected message for an unknown status %q", got)
	}
}
