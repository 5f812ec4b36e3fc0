package entities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/database"
)

// EntityRepository defines the data access contract for entities. Loaded
// entities carry their type's name, color and field definitions.
type EntityRepository interface {
	Create(ctx context.Context, entity *Entity) error
	FindByID(ctx context.Context, id string) (*Entity, error)
	Update(ctx context.Context, entity *Entity) error
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, campaignID, slug, exceptID string) (bool, error)

	// ListByCampaign returns a campaign's entities ordered by name. Private
	// entities are only included when includePrivate is set.
	ListByCampaign(ctx context.Context, campaignID string, includePrivate bool) ([]*Entity, error)
}

type entityRepository struct {
	db *sql.DB
}

// NewEntityRepository creates a MariaDB-backed EntityRepository.
func NewEntityRepository(db *sql.DB) EntityRepository {
	return &entityRepository{db: db}
}

var errEntityNotFound = apperror.NewNotFound("entity not found")

const selectEntities = `SELECT e.id, e.campaign_id, e.entity_type_id, e.name, e.slug,
		e.entry_html, e.type_label, e.is_private, e.fields_data,
		e.created_by, e.created_at, e.updated_at,
		t.name, t.color, t.fields
	FROM entities e
	JOIN entity_types t ON t.id = e.entity_type_id`

func scanEntity(row database.RowScanner) (*Entity, error) {
	e := &Entity{FieldsData: map[string]any{}}
	err := row.Scan(
		&e.ID, &e.CampaignID, &e.TypeID, &e.Name, &e.Slug,
		&e.EntryHTML, &e.TypeLabel, &e.IsPrivate, database.JSON(&e.FieldsData),
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
		&e.TypeName, &e.TypeColor, database.JSON(&e.TypeFields),
	)
	if e.FieldsData == nil {
		// A stored JSON null decodes to a nil map.
		e.FieldsData = map[string]any{}
	}
	return e, err
}

func (r *entityRepository) Create(ctx context.Context, e *Entity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO entities (id, campaign_id, entity_type_id, name, slug, entry_html,
			type_label, is_private, fields_data, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CampaignID, e.TypeID, e.Name, e.Slug, e.EntryHTML,
		e.TypeLabel, e.IsPrivate, database.JSON(e.FieldsData), e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting entity %s: %w", e.ID, err)
	}
	return nil
}

func (r *entityRepository) FindByID(ctx context.Context, id string) (*Entity, error) {
	e, err := scanEntity(r.db.QueryRowContext(ctx, selectEntities+` WHERE e.id = ?`, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, errEntityNotFound
	case err != nil:
		return nil, fmt.Errorf("loading entity %s: %w", id, err)
	}
	return e, nil
}

// Update writes the editable columns. The type and creator never change.
func (r *entityRepository) Update(ctx context.Context, e *Entity) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE entities
		 SET name = ?, slug = ?, entry_html = ?, type_label = ?, is_private = ?, fields_data = ?, updated_at = ?
		 WHERE id = ?`,
		e.Name, e.Slug, e.EntryHTML, e.TypeLabel, e.IsPrivate, database.JSON(e.FieldsData), e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating entity %s: %w", e.ID, err)
	}
	return database.ExpectOne(res, errEntityNotFound)
}

func (r *entityRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting entity %s: %w", id, err)
	}
	return database.ExpectOne(res, errEntityNotFound)
}

func (r *entityRepository) SlugExists(ctx context.Context, campaignID, slug, exceptID string) (bool, error) {
	var taken bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM entities WHERE campaign_id = ? AND slug = ? AND id <> ?)`,
		campaignID, slug, exceptID,
	).Scan(&taken); err != nil {
		return false, fmt.Errorf("checking entity slug %q: %w", slug, err)
	}
	return taken, nil
}

func (r *entityRepository) ListByCampaign(ctx context.Context, campaignID string, includePrivate bool) ([]*Entity, error) {
	query := selectEntities + ` WHERE e.campaign_id = ?`
	if !includePrivate {
		query += ` AND NOT e.is_private`
	}
	rows, err := r.db.QueryContext(ctx, query+` ORDER BY e.name`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	var out []*Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("reading entity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
