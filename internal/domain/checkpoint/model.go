package checkpoint

import (
	"fmt"
	"time"

	"github.com/ganot/punchlist/internal/domain/catalog"
)

// Status is the inspection verdict recorded for a checkpoint.
// StatusNone means the checkpoint was never touched.
type Status string

const (
	StatusNone         Status = ""
	StatusNotInspected Status = "not_inspected"
	StatusComplies     Status = "complies"
	StatusDefect       Status = "defect"
)

// Valid reports whether s is one of the known statuses, including StatusNone.
func (s Status) Valid() bool {
	switch s {
	case StatusNone, StatusNotInspected, StatusComplies, StatusDefect:
		return true
	}
	return false
}

// Completed reports whether s counts towards category progress.
func (s Status) Completed() bool {
	return s == StatusComplies || s == StatusDefect
}

// ParseStatus converts user input into a Status. "null" maps to StatusNone.
func ParseStatus(v string) (Status, error) {
	if v == "null" {
		return StatusNone, nil
	}
	s := Status(v)
	if !s.Valid() {
		return StatusNone, fmt.Errorf("%w: %q", ErrInvalidStatus, v)
	}
	return s, nil
}

// Overlay is the sparse per-project edit layered onto a checkpoint definition.
type Overlay struct {
	Status       Status    `json:"status,omitempty"`
	UserPhotos   []string  `json:"user_photos"`
	UserComment  string    `json:"user_comment"`
	SelectedRoom *string   `json:"selected_room,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func (o Overlay) clone() Overlay {
	out := o
	if o.UserPhotos != nil {
		out.UserPhotos = append([]string(nil), o.UserPhotos...)
	}
	if o.SelectedRoom != nil {
		room := *o.SelectedRoom
		out.SelectedRoom = &room
	}
	return out
}

// OverlayUpdate is one partial update applied by BatchUpdate. Nil fields are
// left untouched; a non-nil empty UserPhotos clears the photo list.
type OverlayUpdate struct {
	CheckpointID string   `json:"checkpoint_id"`
	Status       *Status  `json:"status,omitempty"`
	UserPhotos   []string `json:"user_photos,omitempty"`
	UserComment  *string  `json:"user_comment,omitempty"`
}

// State is the full ledger contents: project id -> checkpoint id -> overlay.
type State struct {
	ActiveProjectID string                        `json:"active_project_id,omitempty"`
	Overlays        map[string]map[string]Overlay `json:"overlays"`
}

// Overlay implements OverlaySource over a snapshot.
func (s State) Overlay(projectID, checkpointID string) (Overlay, bool) {
	ov, ok := s.Overlays[projectID][checkpointID]
	if !ok {
		return Overlay{}, false
	}
	return ov.clone(), true
}

func (s State) clone() State {
	out := State{
		ActiveProjectID: s.ActiveProjectID,
		Overlays:        make(map[string]map[string]Overlay, len(s.Overlays)),
	}
	for projectID, overlays := range s.Overlays {
		out.Overlays[projectID] = cloneOverlays(overlays)
	}
	return out
}

func cloneOverlays(in map[string]Overlay) map[string]Overlay {
	out := make(map[string]Overlay, len(in))
	for id, ov := range in {
		out[id] = ov.clone()
	}
	return out
}

// EffectiveCheckpoint is a definition merged with its overlay. It is derived
// on every read and never persisted.
type EffectiveCheckpoint struct {
	catalog.CheckpointDefinition
	Status       Status     `json:"status,omitempty"`
	UserPhotos   []string   `json:"user_photos"`
	UserComment  string     `json:"user_comment"`
	SelectedRoom *string    `json:"selected_room,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	Touched      bool       `json:"touched"`
}

// CategoryProgress is the completion rollup of one category and phase.
type CategoryProgress struct {
	CategoryID string        `json:"category_id"`
	Phase      catalog.Phase `json:"phase"`
	Total      int           `json:"total"`
	Completed  int           `json:"completed"`
	Defects    int           `json:"defects"`
	Percentage int           `json:"percentage"`
}

// ProjectStats rolls up every category of a phase.
type ProjectStats struct {
	ProjectID  string          `json:"project_id"`
	Phase      catalog.Phase   `json:"phase"`
	Total      int             `json:"total"`
	Completed  int             `json:"completed"`
	Defects    int             `json:"defects"`
	Percentage int             `json:"percentage"`
	Categories []CategoryProgress `json:"categories"`
}
