package auth

import (
	"github.com/a-h/templ"

	"github.com/keyxmakerx/inlineeditor/internal/form"
)

// loginForm builds the login form tree. The form posts to /login.
func loginForm(csrfToken, email, errMsg string) *form.Element {
	f := form.New("login_form", form.TypeForm).
		SetAttr("action", "/login")

	if errMsg != "" {
		f.Add(&form.Element{Key: "message", Type: form.TypeMessage, Value: errMsg, Weight: -10})
	}
	f.Add(
		&form.Element{Key: "email", Type: form.TypeEmail, Title: "Email", Value: email, Required: true},
		&form.Element{Key: "password", Type: form.TypePassword, Title: "Password", Required: true, Weight: 1},
		&form.Element{Key: form.KeyCSRFToken, Type: form.TypeHidden, Value: csrfToken, Weight: 100},
		&form.Element{Key: "actions", Type: form.TypeActions, Weight: 50},
	)
	f.Child("actions").Add(&form.Element{Key: "submit", Type: form.TypeSubmit, Value: "Log in"})
	return f
}

// registerForm builds the registration form tree. The form posts to /register.
func registerForm(csrfToken string, req *RegisterRequest, errMsg string) *form.Element {
	if req == nil {
		req = &RegisterRequest{}
	}
	f := form.New("register_form", form.TypeForm).
		SetAttr("action", "/register")

	if errMsg != "" {
		f.Add(&form.Element{Key: "message", Type: form.TypeMessage, Value: errMsg, Weight: -10})
	}
	f.Add(
		&form.Element{Key: "email", Type: form.TypeEmail, Title: "Email", Value: req.Email, Required: true},
		&form.Element{Key: "display_name", Type: form.TypeTextfield, Title: "Display name", Value: req.DisplayName, Required: true, Weight: 1},
		&form.Element{Key: "password", Type: form.TypePassword, Title: "Password", Required: true, Weight: 2,
			Description: "At least 8 characters."},
		&form.Element{Key: "confirm", Type: form.TypePassword, Title: "Confirm password", Required: true, Weight: 3},
		&form.Element{Key: form.KeyCSRFToken, Type: form.TypeHidden, Value: csrfToken, Weight: 100},
		&form.Element{Key: "actions", Type: form.TypeActions, Weight: 50},
	)
	f.Child("actions").Add(&form.Element{Key: "submit", Type: form.TypeSubmit, Value: "Create account"})
	return f
}

// LoginFormComponent renders only the login form, for HTMX swaps.
func LoginFormComponent(csrfToken, email, errMsg string) templ.Component {
	return form.Render(loginForm(csrfToken, email, errMsg))
}

// RegisterFormComponent renders only the registration form, for HTMX swaps.
func RegisterFormComponent(csrfToken string, req *RegisterRequest, errMsg string) templ.Component {
	return form.Render(registerForm(csrfToken, req, errMsg))
}
