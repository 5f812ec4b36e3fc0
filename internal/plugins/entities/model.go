// Package entities provides the "entity" entity type: worldbuilding
// records (characters, locations, items...) that live in a campaign. Each
// record has a campaign-defined type whose custom fields extend the edit
// forms. Scribes and owners edit entities in place through the inline
// content editor using the "inline" form display.
package entities

import (
	"context"
	"strconv"
	"time"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
)

// EntityTypeID is the machine name entities are registered under.
const EntityTypeID = "entity"

// Form displays registered for entities.
const (
	FormDisplayDefault = "default"
	FormDisplayInline  = "inline"
)

// --- Domain Models ---

// EntityType is a category of entities within a campaign (Character,
// Location...). Its Fields drive the custom part of the edit forms and the
// attribute list on the entity page.
type EntityType struct {
	ID         int               `json:"id"`
	CampaignID string            `json:"campaign_id"`
	Slug       string            `json:"slug"`
	Name       string            `json:"name"`
	NamePlural string            `json:"name_plural"`
	Icon       string            `json:"icon"`
	Color      string            `json:"color"`
	Fields     []FieldDefinition `json:"fields"`
	SortOrder  int               `json:"sort_order"`
}

// Field input types.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldNumber   = "number"
	FieldURL      = "url"
	FieldCheckbox = "checkbox"
	FieldSelect   = "select"
)

// FieldDefinition describes one custom field of an entity type. Stored as a
// JSON array in entity_types.fields.
type FieldDefinition struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Section string   `json:"section"`
	Options []string `json:"options"`
}

// Entity is a single worldbuilding record. It implements entity.Entity.
type Entity struct {
	ID         string         `json:"id"`
	CampaignID string         `json:"campaign_id"`
	TypeID     int            `json:"entity_type_id"`
	Name       string         `json:"name"`
	Slug       string         `json:"slug"`
	EntryHTML  *string        `json:"entry_html,omitempty"`
	TypeLabel  *string        `json:"type_label,omitempty"` // Freeform subtype (e.g., "City" for a Location).
	IsPrivate  bool           `json:"is_private"`
	FieldsData map[string]any `json:"fields_data"`
	CreatedBy  string         `json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`

	// Joined from entity_types.
	TypeName   string            `json:"type_name,omitempty"`
	TypeColor  string            `json:"type_color,omitempty"`
	TypeFields []FieldDefinition `json:"-"`

	// members resolves campaign roles for Access. Set by the service.
	members campaigns.MemberLookup
}

// EntityID implements entity.Entity.
func (e *Entity) EntityID() string { return e.ID }

// EntityTypeID implements entity.Entity.
func (e *Entity) EntityTypeID() string { return EntityTypeID }

// Label implements entity.Entity.
func (e *Entity) Label() string { return e.Name }

// Entry returns the sanitized entry HTML or "".
func (e *Entity) Entry() string {
	if e.EntryHTML == nil {
		return ""
	}
	return *e.EntryHTML
}

// Subtype returns the freeform type label or "".
func (e *Entity) Subtype() string {
	if e.TypeLabel == nil {
		return ""
	}
	return *e.TypeLabel
}

// FieldValue returns the stored value of a custom field as display text.
func (e *Entity) FieldValue(key string) string {
	switch v := e.FieldsData[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Access implements entity.Entity with campaign roles:
//
//   - non-members are forbidden everything
//   - private entities are forbidden to players
//   - scribes and owners may update; only owners may delete
func (e *Entity) Access(ctx context.Context, op access.Operation, acct access.Account) access.Result {
	role, err := campaigns.RoleOf(ctx, e.members, e.CampaignID, acct)
	if err != nil {
		return access.Forbidden("membership lookup failed")
	}
	if role == campaigns.RoleNone {
		return access.Forbidden("not a member of this campaign")
	}
	if e.IsPrivate && role < campaigns.RoleScribe {
		return access.Forbidden("private entity")
	}

	switch op {
	case access.OpView:
		return access.Allowed()
	case access.OpUpdate:
		return access.AllowedIf(role >= campaigns.RoleScribe, "players may not edit entities")
	case access.OpDelete:
		return access.AllowedIf(role >= campaigns.RoleOwner, "only owners may delete entities")
	}
	return access.Neutral("unknown operation")
}

// --- Request DTOs ---

// CreateEntityRequest holds the data submitted by the entity creation form.
type CreateEntityRequest struct {
	Name         string `form:"name"`
	EntityTypeID int    `form:"entity_type_id"`
	TypeLabel    string `form:"type_label"`
	IsPrivate    bool   `form:"is_private"`
}

// CreateEntityInput is the validated input for creating an entity.
type CreateEntityInput struct {
	Name         string
	EntityTypeID int
	TypeLabel    string
	IsPrivate    bool
}
