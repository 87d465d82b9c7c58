package checkpoint

import "context"

// ActiveScope runs ledger writes against whichever project is active at call
// time. Without an active project every write is ignored and logged; callers
// that must not lose writes use the Ledger methods with an explicit project id.
type ActiveScope struct {
	ledger *Ledger
}

// Active returns a scope bound to the ledger's active project.
func (l *Ledger) Active() ActiveScope {
	return ActiveScope{ledger: l}
}

func (a ActiveScope) project(op string) (string, bool) {
	projectID := a.ledger.ActiveProject()
	if projectID == "" {
		a.ledger.logger.Warn("ignoring checkpoint write without active project", "op", op)
		return "", false
	}
	return projectID, true
}

// SetStatus sets the status of a checkpoint in the active project.
func (a ActiveScope) SetStatus(ctx context.Context, checkpointID string, status Status) error {
	projectID, ok := a.project("set_status")
	if !ok {
		return nil
	}
	return a.ledger.SetStatus(ctx, projectID, checkpointID, status)
}

// AddPhoto appends a photo to a checkpoint in the active project.
func (a ActiveScope) AddPhoto(ctx context.Context, checkpointID, uri string) error {
	projectID, ok := a.project("add_photo")
	if !ok {
		return nil
	}
	return a.ledger.AddPhoto(ctx, projectID, checkpointID, uri)
}

// RemovePhoto removes a photo from a checkpoint in the active project.
func (a ActiveScope) RemovePhoto(ctx context.Context, checkpointID, uri string) (bool, error) {
	projectID, ok := a.project("remove_photo")
	if !ok {
		return false, nil
	}
	return a.ledger.RemovePhoto(ctx, projectID, checkpointID, uri)
}

// SetComment sets the comment of a checkpoint in the active project.
func (a ActiveScope) SetComment(ctx context.Context, checkpointID, text string) error {
	projectID, ok := a.project("set_comment")
	if !ok {
		return nil
	}
	return a.ledger.SetComment(ctx, projectID, checkpointID, text)
}

// SetRoom sets the room of a checkpoint in the active project.
func (a ActiveScope) SetRoom(ctx context.Context, checkpointID, room string) error {
	projectID, ok := a.project("set_room")
	if !ok {
		return nil
	}
	return a.ledger.SetRoom(ctx, projectID, checkpointID, room)
}

// DeleteOverlay drops the overlay of a checkpoint in the active project.
func (a ActiveScope) DeleteOverlay(ctx context.Context, checkpointID string) (bool, error) {
	projectID, ok := a.project("delete_overlay")
	if !ok {
		return false, nil
	}
	return a.ledger.DeleteOverlay(ctx, projectID, checkpointID)
}

// BatchUpdate applies updates to the active project in one write.
func (a ActiveScope) BatchUpdate(ctx context.Context, updates []OverlayUpdate) error {
	projectID, ok := a.project("batch_update")
	if !ok {
		return nil
	}
	return a.ledger.BatchUpdate(ctx, projectID, updates)
}
