package audit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/keyxmakerx/inlineeditor/internal/access"
	"github.com/keyxmakerx/inlineeditor/internal/apperror"
	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
)

const (
	perPage                 = 50  // feed entries per page
	maxEntityHistoryEntries = 100 // newest changes kept in an entity history
)

// AuditService handles business logic for the audit log.
type AuditService interface {
	// Log validates and records an entry.
	Log(ctx context.Context, entry *AuditEntry) error

	// RecordChange records a change made by the account in ctx. It
	// implements campaigns.ChangeRecorder and never fails the caller.
	RecordChange(ctx context.Context, change campaigns.Change)

	// GetCampaignActivity returns a page of a campaign's activity feed and
	// the total entry count. Pages are 1-indexed.
	GetCampaignActivity(ctx context.Context, campaignID string, page int) ([]AuditEntry, int, error)

	// GetEntityHistory returns the recent change history for a single entity.
	GetEntityHistory(ctx context.Context, entityID string) ([]AuditEntry, error)
}

// auditService implements AuditService.
type auditService struct {
	repo AuditRepository
	now  func() time.Time
}

// NewAuditService creates a new audit service with the given repository.
func NewAuditService(repo AuditRepository) AuditService {
	return &auditService{repo: repo, now: time.Now}
}

// Log stores a complete entry, stamping it with the current time when
// unset. Storage failures are logged here so callers may drop the error.
func (s *auditService) Log(ctx context.Context, entry *AuditEntry) error {
	if missing := entry.missingField(); missing != "" {
		return apperror.NewBadRequest(missing + " is required for audit entry")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}

	err := s.repo.Log(ctx, entry)
	if err == nil {
		return nil
	}
	slog.Error("failed to write audit log entry",
		slog.String("campaign_id", entry.CampaignID),
		slog.String("action", entry.Action),
		slog.Any("error", err),
	)
	return apperror.NewInternal(fmt.Errorf("writing audit entry: %w", err))
}

// RecordChange turns a change into an entry for the current account.
// Anonymous changes are not recorded.
func (s *auditService) RecordChange(ctx context.Context, change campaigns.Change) {
	acct := access.AccountFrom(ctx)
	if acct.IsAnonymous() {
		return
	}

	entry := &AuditEntry{
		CampaignID: change.CampaignID,
		UserID:     acct.AccountID(),
		Action:     change.Action,
		EntityType: change.SubjectType,
		EntityID:   change.SubjectID,
		EntityName: change.SubjectName,
	}
	if err := s.Log(ctx, entry); err != nil && apperror.SafeCode(err) != http.StatusInternalServerError {
		slog.Warn("audit entry rejected",
			slog.String("action", change.Action),
			slog.String("error", apperror.SafeMessage(err)),
		)
	}
}

// GetCampaignActivity returns one page of a campaign's feed. Pages below
// 1 are read as the first.
func (s *auditService) GetCampaignActivity(ctx context.Context, campaignID string, page int) ([]AuditEntry, int, error) {
	entries, total, err := s.repo.ListByCampaign(ctx, campaignID, perPage, pageOffset(page, perPage))
	if err != nil {
		return nil, 0, apperror.NewInternal(fmt.Errorf("listing campaign activity: %w", err))
	}
	return entries, total, nil
}

func pageOffset(page, size int) int {
	return (max(page, 1) - 1) * size
}

// GetEntityHistory returns the recent change history for a single entity.
func (s *auditService) GetEntityHistory(ctx context.Context, entityID string) ([]AuditEntry, error) {
	if entityID == "" {
		return nil, apperror.NewBadRequest("entity ID is required")
	}

	entries, err := s.repo.ListByEntity(ctx, entityID, maxEntityHistoryEntries)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing entity history: %w", err))
	}
	return entries, nil
}
