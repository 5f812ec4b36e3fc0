package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keyxmakerx/inlineeditor/internal/database"
)

// AuditRepository stores and reads audit_log rows.
type AuditRepository interface {
	// Log inserts entry and sets its ID.
	Log(ctx context.Context, entry *AuditEntry) error

	// ListByCampaign returns a page of a campaign's entries, newest first,
	// and the campaign's total entry count.
	ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]AuditEntry, int, error)

	// ListByEntity returns the newest entries for one entity.
	ListByEntity(ctx context.Context, entityID string, limit int) ([]AuditEntry, error)
}

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a MariaDB-backed AuditRepository.
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, e *AuditEntry) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (campaign_id, user_id, action, entity_type, entity_id, entity_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.CampaignID, e.UserID, e.Action, e.EntityType, e.EntityID, e.EntityName, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting %s entry: %w", e.Action, err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading audit entry id: %w", err)
	}
	return nil
}

func (r *auditRepository) ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]AuditEntry, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE campaign_id = ?`, campaignID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting activity of campaign %s: %w", campaignID, err)
	}
	if offset >= total {
		return nil, total, nil
	}

	entries, err := r.list(ctx, `a.campaign_id = ?`, campaignID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing activity of campaign %s: %w", campaignID, err)
	}
	return entries, total, nil
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityID string, limit int) ([]AuditEntry, error) {
	entries, err := r.list(ctx, `a.entity_id = ?`, entityID, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("listing history of entity %s: %w", entityID, err)
	}
	return entries, nil
}

// list selects entries matching where (one placeholder bound to arg),
// newest first. Entries of deleted users show as "Unknown User".
func (r *auditRepository) list(ctx context.Context, where string, arg any, limit, offset int) ([]AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.campaign_id, a.user_id, a.action, a.entity_type, a.entity_id, a.entity_name,
			a.created_at, COALESCE(u.display_name, 'Unknown User')
		 FROM audit_log a
		 LEFT JOIN users u ON u.id = a.user_id
		 WHERE `+where+`
		 ORDER BY a.created_at DESC, a.id DESC
		 LIMIT ? OFFSET ?`, arg, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(row database.RowScanner) (AuditEntry, error) {
	var e AuditEntry
	err := row.Scan(&e.ID, &e.CampaignID, &e.UserID, &e.Action, &e.EntityType, &e.EntityID, &e.EntityName,
		&e.CreatedAt, &e.UserName)
	return e, err
}
