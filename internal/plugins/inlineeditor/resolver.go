package inlineeditor

import (
	"context"
	"errors"

	"github.com/keyxmakerx/inlineeditor/internal/entity"
	"github.com/keyxmakerx/inlineeditor/internal/routing"
)

// EntityIDParam is the route/query parameter carrying the entity ID on
// requests that do not upcast the entity, e.g. AJAX refreshes of a page
// region.
const EntityIDParam = "entity_id"

// EntityResolver finds "the current entity" of a given type for a route.
// A nil entity with a nil error means the route does not carry one.
type EntityResolver interface {
	ResolveEntity(ctx context.Context, rm routing.RouteMatch, entityTypeID string) (entity.Entity, error)
}

// RouteParameterResolver returns the entity a page handler upcast into the
// route parameter named after the entity type.
type RouteParameterResolver struct{}

// ResolveEntity implements EntityResolver.
func (RouteParameterResolver) ResolveEntity(_ context.Context, rm routing.RouteMatch, entityTypeID string) (entity.Entity, error) {
	e, ok := rm.Parameter(entityTypeID).(entity.Entity)
	if !ok || e.EntityTypeID() != entityTypeID {
		return nil, nil
	}
	return e, nil
}

// EntityIDResolver loads the entity named by the entity_id parameter from
// the type's storage.
type EntityIDResolver struct {
	Manager *entity.Manager
}

// ResolveEntity implements EntityResolver.
func (r EntityIDResolver) ResolveEntity(ctx context.Context, rm routing.RouteMatch, entityTypeID string) (entity.Entity, error) {
	id := routing.StringParam(rm, EntityIDParam)
	if id == "" {
		return nil, nil
	}

	storage, err := r.Manager.Storage(entityTypeID)
	if err != nil {
		return nil, err
	}

	e, err := storage.Load(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, nil
	}
	return e, err
}

// ResolverChain asks each resolver in order and returns the first entity
// found.
type ResolverChain []EntityResolver

// ResolveEntity implements EntityResolver.
func (chain ResolverChain) ResolveEntity(ctx context.Context, rm routing.RouteMatch, entityTypeID string) (entity.Entity, error) {
	for _, r := range chain {
		e, err := r.ResolveEntity(ctx, rm, entityTypeID)
		if err != nil {
			return nil, err
		}
		if e != nil {
			return e, nil
		}
	}
	return nil, nil
}

// NewCurrentEntityResolver resolves the upcast route entity on direct page
// views and falls back to loading by entity_id on AJAX refreshes.
func NewCurrentEntityResolver(manager *entity.Manager) EntityResolver {
	return ResolverChain{
		RouteParameterResolver{},
		EntityIDResolver{Manager: manager},
	}
}
