// Package audit records the content changes made in campaigns and shows
// them to campaign owners as an activity feed. Entity and campaign services
// report their changes through campaigns.ChangeRecorder, so every save made
// through the inline editor dialog or the full edit page lands here.
//
// Recording never blocks the change itself: failures are logged and
// dropped.
package audit

import "time"

// AuditEntry represents a single recorded change. EntityType and EntityID
// name the changed content (an entity or the campaign itself).
type AuditEntry struct {
	ID         int64     `json:"id"`
	CampaignID string    `json:"campaignId"`
	UserID     string    `json:"userId"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType,omitempty"`
	EntityID   string    `json:"entityId,omitempty"`
	EntityName string    `json:"entityName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`

	// UserName is joined from the users table at query time.
	UserName string `json:"userName,omitempty"`
}

// actionVerbs maps recorded actions to the verb shown in the feed.
var actionVerbs = map[string]string{
	"entity.created":   "created",
	"entity.updated":   "edited",
	"entity.deleted":   "deleted",
	"campaign.updated": "edited the campaign",
}

// Verb returns the feed wording for the entry's action.
func (e *AuditEntry) Verb() string {
	if v, ok := actionVerbs[e.Action]; ok {
		return v
	}
	return e.Action
}

// Deleted reports whether the entry's subject no longer exists.
func (e *AuditEntry) Deleted() bool {
	return e.Action == "entity.deleted"
}

// missingField names the first required field that is empty, or "".
func (e *AuditEntry) missingField() string {
	switch {
	case e.CampaignID == "":
		return "campaign ID"
	case e.UserID == "":
		return "user ID"
	case e.Action == "":
		return "action"
	}
	return ""
}
