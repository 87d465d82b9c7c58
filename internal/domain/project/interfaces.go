package project

import (
	"context"

	"github.com/ganot/punchlist/internal/domain/activity"
)

// OverlayPurger drops checkpoint data that belongs to a deleted project.
type OverlayPurger interface {
	PurgeProject(ctx context.Context, projectID string)
}

// ActiveListener is told whenever the active project changes. An empty id
// means no project is active.
type ActiveListener interface {
	SetActiveProject(ctx context.Context, projectID string)
}

// Recorder receives an audit entry for every registry write.
type Recorder interface {
	Record(ctx context.Context, projectID string, checkpointID *string, typ activity.ActivityType, summary string, details any)
}
