package checkpoint

import (
	"time"

	"github.com/ganot/punchlist/internal/domain/catalog"
)

// Project merges a definition with its overlay for projectID.
//
// Field precedence:
//
//	field         overlay present          no overlay
//	status        overlay.Status           StatusNone
//	user_photos   overlay.UserPhotos       empty
//	user_comment  overlay.UserComment      ""
//	selected_room overlay.SelectedRoom     nil
//
// Definitions carry no value for these fields, so an overlay field always
// wins once the overlay exists. An overlay whose status is StatusNone is
// reported as touched but still counts as not completed.
func Project(def catalog.CheckpointDefinition, src OverlaySource, projectID string) EffectiveCheckpoint {
	eff := EffectiveCheckpoint{
		CheckpointDefinition: def,
		UserPhotos:           []string{},
	}
	if src == nil || projectID == "" {
		return eff
	}
	ov, ok := src.Overlay(projectID, def.ID)
	if !ok {
		return eff
	}

	eff.Touched = true
	eff.Status = ov.Status
	if ov.UserPhotos != nil {
		eff.UserPhotos = ov.UserPhotos
	}
	eff.UserComment = ov.UserComment
	eff.SelectedRoom = ov.SelectedRoom
	if !ov.Timestamp.IsZero() {
		ts := ov.Timestamp
		eff.UpdatedAt = &ts
	}
	return eff
}

// Lookup resolves one checkpoint by id. Ids missing from the catalog fail
// with catalog.ErrCheckpointNotFound.
func Lookup(cat *catalog.Catalog, src OverlaySource, projectID, checkpointID string) (EffectiveCheckpoint, error) {
	def, err := cat.Checkpoint(checkpointID)
	if err != nil {
		return EffectiveCheckpoint{}, err
	}
	return Project(def, src, projectID), nil
}

// ProjectCategory projects a whole category slice in catalog order.
func ProjectCategory(cat *catalog.Catalog, src OverlaySource, projectID, categoryID string, phase catalog.Phase) []EffectiveCheckpoint {
	defs := cat.Slice(categoryID, phase)
	out := make([]EffectiveCheckpoint, 0, len(defs))
	for _, def := range defs {
		out = append(out, Project(def, src, projectID))
	}
	return out
}

// LastUpdated returns the newest overlay timestamp within the projected
// checkpoints, or nil when none was touched.
func LastUpdated(checkpoints []EffectiveCheckpoint) *time.Time {
	var latest *time.Time
	for _, cp := range checkpoints {
		if cp.UpdatedAt != nil && (latest == nil || cp.UpdatedAt.After(*latest)) {
			latest = cp.UpdatedAt
		}
	}
	return latest
}
