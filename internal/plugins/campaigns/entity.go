package campaigns

import (
	"context"
	"fmt"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/entity"
)

// FormDisplayDefault is the only form display campaigns register.
const FormDisplayDefault = "default"

// Storage adapts CampaignService to entity.Storage.
type Storage struct {
	service CampaignService
}

// NewStorage creates the campaign entity storage.
func NewStorage(service CampaignService) *Storage {
	return &Storage{service: service}
}

// Load implements entity.Storage.
func (s *Storage) Load(ctx context.Context, id string) (entity.Entity, error) {
	c, err := s.service.GetByID(ctx, id)
	if apperror.IsNotFound(err) {
		return nil, fmt.Errorf("loading campaign %s: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Save implements entity.Storage.
func (s *Storage) Save(ctx context.Context, e entity.Entity) error {
	c, ok := e.(*Campaign)
	if !ok {
		return fmt.Errorf("saving campaign: unexpected entity %T", e)
	}
	return s.service.Update(ctx, c)
}

// Definition describes the campaign entity type for the entity manager.
func Definition(storage *Storage) entity.Definition {
	return entity.Definition{
		ID:      EntityTypeID,
		Label:   "Campaign",
		Storage: storage,
		Forms: map[string]entity.FormFactory{
			FormDisplayDefault: func() entity.FormObject { return &DefaultForm{storage: storage} },
		},
		ContentRoute: RouteContent,
	}
}
