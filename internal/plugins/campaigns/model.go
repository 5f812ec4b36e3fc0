// Package campaigns provides the "campaign" entity type: a named container
// for worldbuilding entities with role-based membership. Campaigns are
// edited in place through the inline content editor; only the owner may
// change them.
package campaigns

import (
	"context"
	"time"

	"github.com/keyxmakerx/inlineeditor/internal/access"
)

// EntityTypeID is the machine name campaigns are registered under.
const EntityTypeID = "campaign"

// MemberLookup resolves a user's role in a campaign. Implemented by
// CampaignService; the entities plugin uses it for its own access rules.
type MemberLookup interface {
	MemberRole(ctx context.Context, campaignID, userID string) (Role, error)
}

// RoleOf returns acct's role in a campaign. Anonymous callers and lookup
// failures yield RoleNone; the error is returned so callers can log it.
func RoleOf(ctx context.Context, members MemberLookup, campaignID string, acct access.Account) (Role, error) {
	if members == nil || acct == nil || acct.IsAnonymous() {
		return RoleNone, nil
	}
	return members.MemberRole(ctx, campaignID, acct.AccountID())
}

// --- Domain Models ---

// Campaign is a top-level worldbuilding container. It implements
// entity.Entity.
type Campaign struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// members resolves roles for Access. Set by Storage on load.
	members MemberLookup
}

// EntityID implements entity.Entity.
func (c *Campaign) EntityID() string { return c.ID }

// EntityTypeID implements entity.Entity.
func (c *Campaign) EntityTypeID() string { return EntityTypeID }

// Label implements entity.Entity.
func (c *Campaign) Label() string { return c.Name }

// DescriptionText returns the description or "".
func (c *Campaign) DescriptionText() string {
	if c.Description == nil {
		return ""
	}
	return *c.Description
}

// Access implements entity.Entity. Members may view; only the owner may
// update or delete. Other members get a neutral result, non-members are
// forbidden.
func (c *Campaign) Access(ctx context.Context, op access.Operation, acct access.Account) access.Result {
	role, err := RoleOf(ctx, c.members, c.ID, acct)
	if err != nil {
		return access.Forbidden("membership lookup failed")
	}
	if role == RoleNone {
		return access.Forbidden("not a member of this campaign")
	}

	switch op {
	case access.OpView:
		return access.Allowed()
	case access.OpUpdate, access.OpDelete:
		return access.AllowedIf(role >= RoleOwner, "only the campaign owner may change it")
	}
	return access.Neutral("unknown operation")
}

// CampaignMember represents a user's membership in a campaign.
type CampaignMember struct {
	CampaignID string    `json:"campaign_id"`
	UserID     string    `json:"user_id"`
	Role       Role      `json:"role"`
	JoinedAt   time.Time `json:"joined_at"`

	// Joined from users table for display purposes.
	DisplayName string `json:"display_name,omitempty"`
}

// --- Request DTOs ---

// CreateCampaignRequest holds the data submitted by the campaign creation form.
type CreateCampaignRequest struct {
	Name        string `form:"name"`
	Description string `form:"description"`
}

// CreateCampaignInput is the validated input for creating a campaign.
type CreateCampaignInput struct {
	Name        string
	Description string
}
