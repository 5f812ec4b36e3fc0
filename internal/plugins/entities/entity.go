package entities

import (
	"context"
	"fmt"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/entity"
)

// Storage adapts EntityService to entity.Storage.
type Storage struct {
	service EntityService
}

// NewStorage creates the entity storage.
func NewStorage(service EntityService) *Storage {
	return &Storage{service: service}
}

// Load implements entity.Storage.
func (s *Storage) Load(ctx context.Context, id string) (entity.Entity, error) {
	e, err := s.service.GetByID(ctx, id)
	if apperror.IsNotFound(err) {
		return nil, fmt.Errorf("loading entity %s: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Save implements entity.Storage.
func (s *Storage) Save(ctx context.Context, e entity.Entity) error {
	ent, ok := e.(*Entity)
	if !ok {
		return fmt.Errorf("saving entity: unexpected entity %T", e)
	}
	return s.service.Update(ctx, ent)
}

// Delete removes e.
func (s *Storage) Delete(ctx context.Context, e *Entity) error {
	return s.service.Delete(ctx, e.ID)
}

// Definition describes the entity type for the entity manager.
func Definition(storage *Storage) entity.Definition {
	return entity.Definition{
		ID:      EntityTypeID,
		Label:   "Entity",
		Storage: storage,
		Forms: map[string]entity.FormFactory{
			FormDisplayDefault: func() entity.FormObject { return &DefaultForm{storage: storage} },
			FormDisplayInline:  func() entity.FormObject { return &InlineForm{DefaultForm{storage: storage}} },
		},
		ContentRoute: RouteContent,
	}
}
