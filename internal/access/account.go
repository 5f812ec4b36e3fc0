package access

import "context"

// Account identifies the caller an access decision is made for. The auth
// plugin's session implements it; requests without a session use Anonymous.
type Account interface {
	// AccountID returns the user ID, or "" for anonymous callers.
	AccountID() string

	// DisplayName returns the name shown in the UI.
	DisplayName() string

	// IsSiteAdmin reports whether the caller is a site administrator.
	IsSiteAdmin() bool

	// IsAnonymous reports whether the caller has no session.
	IsAnonymous() bool
}

// anonymous is the Account used when no session is present.
type anonymous struct{}

func (anonymous) AccountID() string   { return "" }
func (anonymous) DisplayName() string { return "Anonymous" }
func (anonymous) IsSiteAdmin() bool   { return false }
func (anonymous) IsAnonymous() bool   { return true }

// Anonymous is the shared anonymous account.
var Anonymous Account = anonymous{}

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey struct{}

// WithAccount stores the current account in ctx. Templ components read it
// back with AccountFrom while rendering.
func WithAccount(ctx context.Context, acct Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, acct)
}

// AccountFrom returns the account stored in ctx, or Anonymous.
func AccountFrom(ctx context.Context) Account {
	if acct, ok := ctx.Value(ctxKey{}).(Account); ok && acct != nil {
		return acct
	}
	return Anonymous
}
