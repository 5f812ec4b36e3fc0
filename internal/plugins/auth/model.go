// Package auth registers users, logs them in and keeps their sessions in
// Redis. A logged-in request carries its *Session as the access.Account
// that entity access rules are evaluated for.
package auth

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/keyxmakerx/inlineeditor/internal/access"
)

// User is a registered account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Form limits, in characters.
const (
	minDisplayName = 2
	maxDisplayName = 100
	minPassword    = 8
	maxPassword    = 128
)

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Email       string `form:"email"`
	DisplayName string `form:"display_name"`
	Password    string `form:"password"`
	Confirm     string `form:"confirm"`
}

// problem returns the first thing wrong with the form, or "".
func (r *RegisterRequest) problem() string {
	name := utf8.RuneCountInString(strings.TrimSpace(r.DisplayName))
	pw := utf8.RuneCountInString(r.Password)
	switch {
	case strings.TrimSpace(r.Email) == "":
		return "email is required"
	case !strings.Contains(r.Email, "@"):
		return "email address is not valid"
	case name == 0:
		return "display name is required"
	case name < minDisplayName:
		return "display name must be at least 2 characters"
	case name > maxDisplayName:
		return "display name must be at most 100 characters"
	case pw == 0:
		return "password is required"
	case pw < minPassword:
		return "password must be at least 8 characters"
	case pw > maxPassword:
		return "password must be at most 128 characters"
	case r.Confirm != r.Password:
		return "passwords do not match"
	}
	return ""
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// RegisterInput is a checked registration.
type RegisterInput struct {
	Email       string
	DisplayName string
	Password    string
}

// LoginInput is a login attempt.
type LoginInput struct {
	Email    string
	Password string
}

// Session is what Redis keeps for a logged-in user. It is the
// access.Account of the user's requests.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

var _ access.Account = (*Session)(nil)

func (s *Session) AccountID() string   { return s.UserID }
func (s *Session) DisplayName() string { return s.Name }
func (s *Session) IsSiteAdmin() bool   { return s.IsAdmin }
func (s *Session) IsAnonymous() bool   { return false }
