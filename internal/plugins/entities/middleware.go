package entities

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
)

// contextKeyEntity is the Echo context key for entity context data.
const contextKeyEntity = "entity_context"

// EntityContext holds the resolved entity and the requesting user's role in
// its campaign.
type EntityContext struct {
	Entity     *Entity
	MemberRole campaigns.Role
}

// CanEdit reports whether the caller may update the entity.
func (ec *EntityContext) CanEdit() bool {
	return ec.MemberRole >= campaigns.RoleScribe
}

// RequireEntityAccess resolves the entity from the :entity path parameter,
// checks the caller may view it and upcasts it under the "entity" key.
//
// Must be applied after auth.LoadSession.
func RequireEntityAccess(service EntityService, members campaigns.MemberLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Param(EntityTypeID)
			if id == "" {
				return apperror.NewBadRequest("entity ID is required")
			}

			ec, err := resolveEntity(c, service, members, id)
			if err != nil {
				return err
			}

			c.Set(EntityTypeID, ec.Entity)
			c.Set(contextKeyEntity, ec)
			return next(c)
		}
	}
}

// resolveEntity loads an entity and the caller's role. Anonymous callers
// get 401, non-members 403, and players asking for a private entity 404 so
// its existence is not revealed.
func resolveEntity(c echo.Context, service EntityService, members campaigns.MemberLookup, id string) (*EntityContext, error) {
	ctx := c.Request().Context()
	acct := access.AccountFrom(ctx)

	e, err := service.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role, err := campaigns.RoleOf(ctx, members, e.CampaignID, acct)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	if !e.Access(ctx, access.OpView, acct).IsAllowed() {
		switch {
		case acct.IsAnonymous():
			return nil, apperror.NewUnauthorized("authentication required")
		case role == campaigns.RoleNone:
			return nil, apperror.NewForbidden("you are not a member of this campaign")
		default:
			return nil, apperror.NewNotFound("entity not found")
		}
	}
	return &EntityContext{Entity: e, MemberRole: role}, nil
}

// GetEntityContext retrieves the entity context from the Echo context.
// Returns nil if RequireEntityAccess was not applied.
func GetEntityContext(c echo.Context) *EntityContext {
	ec, ok := c.Get(contextKeyEntity).(*EntityContext)
	if !ok {
		return nil
	}
	return ec
}
