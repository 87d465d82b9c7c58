package checkpoint

import (
	"context"

	"github.com/ganot/punchlist/internal/domain/activity"
)

// OverlaySource resolves the overlay for a project and checkpoint.
type OverlaySource interface {
	Overlay(projectID, checkpointID string) (Overlay, bool)
}

// Recorder receives an audit entry for every ledger write.
type Recorder interface {
	Record(ctx context.Context, projectID string, checkpointID *string, typ activity.ActivityType, summary string, details any)
}
