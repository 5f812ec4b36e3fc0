package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/database"
)

// CampaignRepository defines the data access contract for campaigns and
// their members.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *Campaign) error
	FindByID(ctx context.Context, id string) (*Campaign, error)

	// ListByUser returns the campaigns userID belongs to, most recently
	// updated first.
	ListByUser(ctx context.Context, userID string) ([]*Campaign, error)
	Update(ctx context.Context, campaign *Campaign) error
	SlugExists(ctx context.Context, slug, exceptID string) (bool, error)

	AddMember(ctx context.Context, member *CampaignMember) error
	FindMember(ctx context.Context, campaignID, userID string) (*CampaignMember, error)
}

type campaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a MariaDB-backed CampaignRepository.
func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

var (
	errCampaignNotFound = apperror.NewNotFound("campaign not found")
	errMemberNotFound   = apperror.NewNotFound("member not found")
)

const selectCampaigns = `SELECT c.id, c.name, c.slug, c.description, c.created_by, c.created_at, c.updated_at
	FROM campaigns c`

func scanCampaign(row database.RowScanner) (*Campaign, error) {
	var c Campaign
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *campaignRepository) Create(ctx context.Context, c *Campaign) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campaigns (id, name, slug, description, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Description, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting campaign %s: %w", c.ID, err)
	}
	return nil
}

func (r *campaignRepository) FindByID(ctx context.Context, id string) (*Campaign, error) {
	c, err := scanCampaign(r.db.QueryRowContext(ctx, selectCampaigns+` WHERE c.id = ?`, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, errCampaignNotFound
	case err != nil:
		return nil, fmt.Errorf("loading campaign %s: %w", id, err)
	}
	return c, nil
}

func (r *campaignRepository) ListByUser(ctx context.Context, userID string) ([]*Campaign, error) {
	rows, err := r.db.QueryContext(ctx, selectCampaigns+`
		JOIN campaign_members m ON m.campaign_id = c.id
		WHERE m.user_id = ?
		ORDER BY c.updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns of %s: %w", userID, err)
	}
	defer rows.Close()

	var out []*Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("reading campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update writes name, slug and description.
func (r *campaignRepository) Update(ctx context.Context, c *Campaign) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET name = ?, slug = ?, description = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Slug, c.Description, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating campaign %s: %w", c.ID, err)
	}
	return database.ExpectOne(res, errCampaignNotFound)
}

func (r *campaignRepository) SlugExists(ctx context.Context, slug, exceptID string) (bool, error) {
	var taken bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM campaigns WHERE slug = ? AND id <> ?)`, slug, exceptID,
	).Scan(&taken); err != nil {
		return false, fmt.Errorf("checking campaign slug %q: %w", slug, err)
	}
	return taken, nil
}

func (r *campaignRepository) AddMember(ctx context.Context, m *CampaignMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campaign_members (campaign_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		m.CampaignID, m.UserID, m.Role, m.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("adding %s to campaign %s: %w", m.UserID, m.CampaignID, err)
	}
	return nil
}

// FindMember loads a membership together with the member's display name.
func (r *campaignRepository) FindMember(ctx context.Context, campaignID, userID string) (*CampaignMember, error) {
	var m CampaignMember
	err := r.db.QueryRowContext(ctx,
		`SELECT m.campaign_id, m.user_id, m.role, m.joined_at, u.display_name
		 FROM campaign_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.campaign_id = ? AND m.user_id = ?`, campaignID, userID,
	).Scan(&m.CampaignID, &m.UserID, &m.Role, &m.JoinedAt, &m.DisplayName)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, errMemberNotFound
	case err != nil:
		return nil, fmt.Errorf("loading member %s of campaign %s: %w", userID, campaignID, err)
	}
	return &m, nil
}
