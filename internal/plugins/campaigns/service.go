package campaigns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/slug"
)

const (
	maxNameLength        = 200
	maxDescriptionLength = 5000
)

// CampaignService defines the business logic contract for campaigns.
type CampaignService interface {
	Create(ctx context.Context, userID string, input CreateCampaignInput) (*Campaign, error)
	GetByID(ctx context.Context, id string) (*Campaign, error)
	ListForUser(ctx context.Context, userID string) ([]*Campaign, error)
	Update(ctx context.Context, campaign *Campaign) error
	GetMember(ctx context.Context, campaignID, userID string) (*CampaignMember, error)
	MemberLookup
}

// EntityTypeSeeder creates the default entity types of a new campaign.
// Implemented by the entities plugin's type repository; may be nil.
type EntityTypeSeeder interface {
	SeedDefaults(ctx context.Context, campaignID string) error
}

// ActionCampaignUpdated is the Change action recorded for campaign edits.
const ActionCampaignUpdated = "campaign.updated"

// Change describes a content change inside a campaign. Action follows the
// "resource.verb" pattern.
type Change struct {
	CampaignID  string
	Action      string
	SubjectType string
	SubjectID   string
	SubjectName string
}

// ChangeRecorder receives content changes for the activity feed. The
// acting user is taken from the context. Implementations must not fail the
// caller; they log their own errors.
type ChangeRecorder interface {
	RecordChange(ctx context.Context, change Change)
}

// campaignService implements CampaignService.
type campaignService struct {
	repo     CampaignRepository
	seeder   EntityTypeSeeder
	recorder ChangeRecorder
	now      func() time.Time
}

// NewCampaignService creates a new campaign service. seeder and recorder
// may be nil.
func NewCampaignService(repo CampaignRepository, seeder EntityTypeSeeder, recorder ChangeRecorder) CampaignService {
	return &campaignService{repo: repo, seeder: seeder, recorder: recorder, now: time.Now}
}

// Create creates a campaign and adds the creator as Owner.
func (s *campaignService) Create(ctx context.Context, userID string, input CreateCampaignInput) (*Campaign, error) {
	name, desc, err := validateCampaign(input.Name, input.Description)
	if err != nil {
		return nil, err
	}

	c := &Campaign{
		ID:          uuid.NewString(),
		Name:        name,
		Description: desc,
		CreatedBy:   userID,
		CreatedAt:   s.now().UTC(),
	}
	c.UpdatedAt = c.CreatedAt

	if c.Slug, err = s.generateSlug(ctx, name, c.ID); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generating slug: %w", err))
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating campaign: %w", err))
	}

	member := &CampaignMember{
		CampaignID: c.ID,
		UserID:     userID,
		Role:       RoleOwner,
		JoinedAt:   c.CreatedAt,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("adding owner member: %w", err))
	}

	if s.seeder != nil {
		if err := s.seeder.SeedDefaults(ctx, c.ID); err != nil {
			// The campaign stays usable without default types.
			slog.Warn("failed to seed default entity types",
				slog.String("campaign_id", c.ID),
				slog.Any("error", err),
			)
		}
	}

	slog.Info("campaign created",
		slog.String("campaign_id", c.ID),
		slog.String("slug", c.Slug),
		slog.String("user_id", userID),
	)
	c.members = s
	return c, nil
}

// GetByID retrieves a campaign bound to this service for access checks.
func (s *campaignService) GetByID(ctx context.Context, id string) (*Campaign, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.members = s
	return c, nil
}

// ListForUser returns the campaigns userID belongs to.
func (s *campaignService) ListForUser(ctx context.Context, userID string) ([]*Campaign, error) {
	campaigns, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	for _, c := range campaigns {
		c.members = s
	}
	return campaigns, nil
}

// Update validates and persists name and description changes. The slug
// follows the name.
func (s *campaignService) Update(ctx context.Context, c *Campaign) error {
	name, desc, err := validateCampaign(c.Name, c.DescriptionText())
	if err != nil {
		return err
	}
	c.Name, c.Description = name, desc

	if c.Slug, err = s.generateSlug(ctx, name, c.ID); err != nil {
		return apperror.NewInternal(fmt.Errorf("generating slug: %w", err))
	}
	c.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.NewInternal(err)
	}

	if s.recorder != nil {
		s.recorder.RecordChange(ctx, Change{
			CampaignID:  c.ID,
			Action:      ActionCampaignUpdated,
			SubjectType: EntityTypeID,
			SubjectID:   c.ID,
			SubjectName: c.Name,
		})
	}
	return nil
}

// GetMember returns a user's membership.
func (s *campaignService) GetMember(ctx context.Context, campaignID, userID string) (*CampaignMember, error) {
	return s.repo.FindMember(ctx, campaignID, userID)
}

// MemberRole implements MemberLookup. Non-members have RoleNone.
func (s *campaignService) MemberRole(ctx context.Context, campaignID, userID string) (Role, error) {
	m, err := s.repo.FindMember(ctx, campaignID, userID)
	if apperror.IsNotFound(err) {
		return RoleNone, nil
	}
	if err != nil {
		return RoleNone, err
	}
	return m.Role, nil
}

// validateCampaign trims and checks the user-editable fields. An empty
// description is stored as NULL.
func validateCampaign(name, description string) (string, *string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, apperror.NewValidation("campaign name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", nil, apperror.NewValidation(fmt.Sprintf("campaign name must be at most %d characters", maxNameLength))
	}

	desc := strings.TrimSpace(description)
	if utf8.RuneCountInString(desc) > maxDescriptionLength {
		return "", nil, apperror.NewValidation(fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	}
	if desc == "" {
		return name, nil, nil
	}
	return name, &desc, nil
}

// generateSlug creates a slug for name that no other campaign uses.
func (s *campaignService) generateSlug(ctx context.Context, name, campaignID string) (string, error) {
	return slug.Unique(ctx, slug.Make(name, "campaign"), func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.SlugExists(ctx, candidate, campaignID)
	})
}
