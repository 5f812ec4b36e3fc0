package entities

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
	"github.com/keyxmakerx/inlineeditor/internal/sanitize"
	"github.com/keyxmakerx/inlineeditor/internal/slug"
)

const (
	maxNameLength      = 200
	maxTypeLabelLength = 100
)

// Change actions recorded for entities.
const (
	ActionEntityCreated = "entity.created"
	ActionEntityUpdated = "entity.updated"
	ActionEntityDeleted = "entity.deleted"
)

// EntityService defines the business logic contract for entities.
type EntityService interface {
	Create(ctx context.Context, campaignID, userID string, input CreateEntityInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	Update(ctx context.Context, entity *Entity) error
	Delete(ctx context.Context, id string) error

	// List returns the entities of a campaign visible to role.
	List(ctx context.Context, campaignID string, role campaigns.Role) ([]*Entity, error)

	GetEntityTypes(ctx context.Context, campaignID string) ([]EntityType, error)
}

// entityService implements EntityService.
type entityService struct {
	entities EntityRepository
	types    EntityTypeRepository
	members  campaigns.MemberLookup
	recorder campaigns.ChangeRecorder
	now      func() time.Time
}

// NewEntityService creates a new entity service. members resolves campaign
// roles for the access checks of loaded entities; recorder may be nil.
func NewEntityService(entities EntityRepository, types EntityTypeRepository, members campaigns.MemberLookup, recorder campaigns.ChangeRecorder) EntityService {
	return &entityService{
		entities: entities,
		types:    types,
		members:  members,
		recorder: recorder,
		now:      time.Now,
	}
}

// Create creates a new entity in a campaign.
func (s *entityService) Create(ctx context.Context, campaignID, userID string, input CreateEntityInput) (*Entity, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	et, err := s.types.FindByID(ctx, input.EntityTypeID)
	if err != nil || et.CampaignID != campaignID {
		return nil, apperror.NewBadRequest("invalid entity type")
	}

	e := &Entity{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		TypeID:     et.ID,
		Name:       name,
		TypeLabel:  optional(input.TypeLabel),
		IsPrivate:  input.IsPrivate,
		FieldsData: make(map[string]any),
		CreatedBy:  userID,
		CreatedAt:  s.now().UTC(),
		TypeName:   et.Name,
		TypeColor:  et.Color,
		TypeFields: et.Fields,
	}
	e.UpdatedAt = e.CreatedAt

	if e.Slug, err = s.generateSlug(ctx, campaignID, name, e.ID); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generating slug: %w", err))
	}

	if err := s.entities.Create(ctx, e); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating entity: %w", err))
	}

	slog.Info("entity created",
		slog.String("entity_id", e.ID),
		slog.String("campaign_id", campaignID),
		slog.String("type", et.Slug),
	)
	s.record(ctx, ActionEntityCreated, e)
	e.members = s.members
	return e, nil
}

// GetByID retrieves an entity bound to the member lookup.
func (s *entityService) GetByID(ctx context.Context, id string) (*Entity, error) {
	e, err := s.entities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.members = s.members
	return e, nil
}

// Update validates and persists an edited entity. The entry HTML is
// sanitized, custom field values without a matching type field are
// dropped, and an empty slug is regenerated from the name.
func (s *entityService) Update(ctx context.Context, e *Entity) error {
	e.Name = strings.TrimSpace(e.Name)
	if err := validateName(e.Name); err != nil {
		return err
	}

	e.TypeLabel = optional(e.Subtype())
	if utf8.RuneCountInString(e.Subtype()) > maxTypeLabelLength {
		return apperror.NewValidation(fmt.Sprintf("type must be at most %d characters", maxTypeLabelLength))
	}

	if entry := strings.TrimSpace(e.Entry()); entry != "" {
		clean := sanitize.HTML(entry)
		e.EntryHTML = &clean
	} else {
		e.EntryHTML = nil
	}

	known := make(map[string]bool, len(e.TypeFields))
	for _, f := range e.TypeFields {
		known[f.Key] = true
	}
	for key := range e.FieldsData {
		if !known[key] {
			delete(e.FieldsData, key)
		}
	}

	if err := s.assignSlug(ctx, e); err != nil {
		return err
	}
	e.UpdatedAt = s.now().UTC()

	if err := s.entities.Update(ctx, e); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("updating entity: %w", err))
	}

	slog.Info("entity updated",
		slog.String("entity_id", e.ID),
		slog.String("campaign_id", e.CampaignID),
	)
	s.record(ctx, ActionEntityUpdated, e)
	return nil
}

// assignSlug keeps a valid, unused custom slug and generates one from the
// name otherwise.
func (s *entityService) assignSlug(ctx context.Context, e *Entity) error {
	custom := strings.TrimSpace(e.Slug)
	if custom == "" {
		generated, err := s.generateSlug(ctx, e.CampaignID, e.Name, e.ID)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("generating slug: %w", err))
		}
		e.Slug = generated
		return nil
	}

	if !slug.Valid(custom) {
		return apperror.NewValidation("slug may only contain lowercase letters, digits and single hyphens")
	}
	exists, err := s.entities.SlugExists(ctx, e.CampaignID, custom, e.ID)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("checking slug: %w", err))
	}
	if exists {
		return apperror.NewConflict("another entity in this campaign already uses that slug")
	}
	e.Slug = custom
	return nil
}

// Delete removes an entity.
func (s *entityService) Delete(ctx context.Context, id string) error {
	e, err := s.entities.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.entities.Delete(ctx, id); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("deleting entity: %w", err))
	}
	slog.Info("entity deleted", slog.String("entity_id", id))
	s.record(ctx, ActionEntityDeleted, e)
	return nil
}

// List returns the entities of a campaign visible to role. Players do not
// see private entities.
func (s *entityService) List(ctx context.Context, campaignID string, role campaigns.Role) ([]*Entity, error) {
	list, err := s.entities.ListByCampaign(ctx, campaignID, role >= campaigns.RoleScribe)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	for _, e := range list {
		e.members = s.members
	}
	return list, nil
}

// GetEntityTypes returns a campaign's entity types.
func (s *entityService) GetEntityTypes(ctx context.Context, campaignID string) ([]EntityType, error) {
	types, err := s.types.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return types, nil
}

// --- Helpers ---

func (s *entityService) record(ctx context.Context, action string, e *Entity) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordChange(ctx, campaigns.Change{
		CampaignID:  e.CampaignID,
		Action:      action,
		SubjectType: EntityTypeID,
		SubjectID:   e.ID,
		SubjectName: e.Name,
	})
}

func validateName(name string) error {
	if name == "" {
		return apperror.NewValidation("entity name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return apperror.NewValidation(fmt.Sprintf("entity name must be at most %d characters", maxNameLength))
	}
	return nil
}

// optional trims s and returns nil when nothing is left.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// generateSlug creates a slug for name that no other entity of the
// campaign uses.
func (s *entityService) generateSlug(ctx context.Context, campaignID, name, entityID string) (string, error) {
	return slug.Unique(ctx, slug.Make(name, "entity"), func(ctx context.Context, candidate string) (bool, error) {
		return s.entities.SlugExists(ctx, campaignID, candidate, entityID)
	})
}
