// Package inlineeditor lets users update an entity from its page: a button
// rendered into the page template opens the entity's edit form in a modal
// dialog, and the dialog posts back without leaving the page.
//
// The plugin works on any type registered with the entity manager. It owns
// no storage; loading, access rules and forms all belong to the content
// plugins that register the types.
package inlineeditor

import (
	"context"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/entity"
)

// AccessChecker decides whether a caller may use the inline editor on an
// entity.
type AccessChecker struct{}

// NewAccessChecker creates an access checker.
func NewAccessChecker() *AccessChecker {
	return &AccessChecker{}
}

// UseInlineContentEditor returns Allowed only when the entity's own update
// check explicitly allows acct. Neutral results are turned into Forbidden.
// Nothing is cached; every call asks the entity again.
func (a *AccessChecker) UseInlineContentEditor(ctx context.Context, e entity.Entity, acct access.Account) access.Result {
	if e == nil {
		return access.Forbidden("no entity")
	}
	if e.Access(ctx, access.OpUpdate, acct).IsAllowed() {
		return access.Allowed()
	}
	return access.Forbidden("update access not granted")
}
