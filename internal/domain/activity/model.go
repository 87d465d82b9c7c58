package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeStatusSet         ActivityType = "status_set"
	TypePhotoAdded        ActivityType = "photo_added"
	TypePhotoRemoved      ActivityType = "photo_removed"
	TypeCommentSet        ActivityType = "comment_set"
	TypeRoomSet           ActivityType = "room_set"
	TypeOverlayDeleted    ActivityType = "overlay_deleted"
	TypeOverlaysReplaced  ActivityType = "overlays_replaced"
	TypeOverlaysPurged    ActivityType = "overlays_purged"
	TypeBatchUpdated      ActivityType = "batch_updated"
	TypeLedgerCleared     ActivityType = "ledger_cleared"
	TypeProjectCreated    ActivityType = "project_created"
	TypeProjectUpdated    ActivityType = "project_updated"
	TypeProjectArchived   ActivityType = "project_archived"
	TypeProjectUnarchived ActivityType = "project_unarchived"
	TypeProjectDeleted    ActivityType = "project_deleted"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    string       `json:"project_id"`
	CheckpointID *string      `json:"checkpoint_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
