package entities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/database"
)

// EntityTypeRepository defines the data access contract for entity types.
type EntityTypeRepository interface {
	FindByID(ctx context.Context, id int) (*EntityType, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]EntityType, error)

	// SeedDefaults gives a new campaign the starter set of entity types.
	SeedDefaults(ctx context.Context, campaignID string) error
}

type entityTypeRepository struct {
	db *sql.DB
}

// NewEntityTypeRepository creates a MariaDB-backed EntityTypeRepository.
func NewEntityTypeRepository(db *sql.DB) EntityTypeRepository {
	return &entityTypeRepository{db: db}
}

const selectEntityTypes = `SELECT id, campaign_id, slug, name, name_plural, icon, color, fields, sort_order
	FROM entity_types`

func scanEntityType(row database.RowScanner) (*EntityType, error) {
	var et EntityType
	err := row.Scan(
		&et.ID, &et.CampaignID, &et.Slug, &et.Name, &et.NamePlural,
		&et.Icon, &et.Color, database.JSON(&et.Fields), &et.SortOrder,
	)
	return &et, err
}

func (r *entityTypeRepository) FindByID(ctx context.Context, id int) (*EntityType, error) {
	et, err := scanEntityType(r.db.QueryRowContext(ctx, selectEntityTypes+` WHERE id = ?`, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, apperror.NewNotFound("entity type not found")
	case err != nil:
		return nil, fmt.Errorf("loading entity type %d: %w", id, err)
	}
	return et, nil
}

func (r *entityTypeRepository) ListByCampaign(ctx context.Context, campaignID string) ([]EntityType, error) {
	rows, err := r.db.QueryContext(ctx,
		selectEntityTypes+` WHERE campaign_id = ? ORDER BY sort_order, name`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("listing entity types: %w", err)
	}
	defer rows.Close()

	var out []EntityType
	for rows.Next() {
		et, err := scanEntityType(rows)
		if err != nil {
			return nil, fmt.Errorf("reading entity type: %w", err)
		}
		out = append(out, *et)
	}
	return out, rows.Err()
}

func (r *entityTypeRepository) SeedDefaults(ctx context.Context, campaignID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting entity type seed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entity_types (campaign_id, slug, name, name_plural, icon, color, fields, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing entity type seed: %w", err)
	}
	defer stmt.Close()

	for i, et := range starterTypes() {
		if _, err := stmt.ExecContext(ctx, campaignID, et.Slug, et.Name, et.NamePlural,
			et.Icon, et.Color, database.JSON(et.Fields), i+1); err != nil {
			return fmt.Errorf("seeding %q: %w", et.Slug, err)
		}
	}
	return tx.Commit()
}

// starterTypes is the entity type set every new campaign begins with, in
// display order.
func starterTypes() []EntityType {
	basics := func(defs ...FieldDefinition) []FieldDefinition {
		for i := range defs {
			defs[i].Section = "Basics"
		}
		return defs
	}
	text := func(key, label string) FieldDefinition { return FieldDefinition{Key: key, Label: label, Type: FieldText} }
	number := func(key, label string) FieldDefinition { return FieldDefinition{Key: key, Label: label, Type: FieldNumber} }
	choice := func(key, label string, opts ...string) FieldDefinition {
		return FieldDefinition{Key: key, Label: label, Type: FieldSelect, Options: opts}
	}

	return []EntityType{
		{Slug: "character", Name: "Character", NamePlural: "Characters", Icon: "fa-user", Color: "#3b82f6",
			Fields: basics(text("title", "Title"), number("age", "Age"),
				choice("alignment", "Alignment", "Good", "Neutral", "Evil"),
				FieldDefinition{Key: "alive", Label: "Alive", Type: FieldCheckbox})},
		{Slug: "location", Name: "Location", NamePlural: "Locations", Icon: "fa-map-pin", Color: "#ef4444",
			Fields: basics(number("population", "Population"), text("region", "Region"),
				FieldDefinition{Key: "map", Label: "Map", Type: FieldURL})},
		{Slug: "organization", Name: "Organization", NamePlural: "Organizations", Icon: "fa-building", Color: "#f59e0b",
			Fields: basics(text("leader", "Leader"), text("headquarters", "Headquarters"))},
		{Slug: "item", Name: "Item", NamePlural: "Items", Icon: "fa-box", Color: "#8b5cf6",
			Fields: basics(choice("rarity", "Rarity", "Common", "Uncommon", "Rare", "Legendary"), number("weight", "Weight"))},
		{Slug: "note", Name: "Note", NamePlural: "Notes", Icon: "fa-sticky-note", Color: "#10b981",
			Fields: basics(FieldDefinition{Key: "summary", Label: "Summary", Type: FieldTextarea})},
	}
}
