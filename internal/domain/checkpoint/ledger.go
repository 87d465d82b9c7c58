package checkpoint

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ganot/punchlist/internal/domain/activity"
	"github.com/ganot/punchlist/internal/persist"
)

// StateVersion is the persisted version of the checkpoint store.
const StateVersion = 1

// Ledger records sparse per-project checkpoint edits. Every mutation replaces
// the in-memory state under a single lock and is then mirrored to storage.
type Ledger struct {
	mu    sync.RWMutex
	state State
	seq   uint64

	mirror   *persist.Mirror[State]
	recorder Recorder
	clock    func() time.Time
	logger   *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithMirror persists every mutation through m.
func WithMirror(m *persist.Mirror[State]) Option {
	return func(l *Ledger) { l.mirror = m }
}

// WithRecorder sends an audit entry for every write to r.
func WithRecorder(r Recorder) Option {
	return func(l *Ledger) { l.recorder = r }
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// NewLedger creates an empty ledger.
func NewLedger(logger *slog.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l := &Ledger{
		state:  State{Overlays: make(map[string]map[string]Overlay)},
		clock:  time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load rehydrates the ledger from its mirror. On error the ledger is left empty.
func (l *Ledger) Load(ctx context.Context) error {
	state, found, err := l.mirror.Hydrate(ctx, nil)
	if err != nil {
		return fmt.Errorf("hydrating checkpoint ledger: %w", err)
	}
	if !found {
		return nil
	}
	if state.Overlays == nil {
		state.Overlays = make(map[string]map[string]Overlay)
	}
	for projectID, overlays := range state.Overlays {
		if overlays == nil {
			l.logger.Warn("dropping empty project bucket", "project_id", projectID)
			delete(state.Overlays, projectID)
			continue
		}
		for checkpointID, ov := range overlays {
			if !ov.Status.Valid() {
				l.logger.Warn("dropping overlay with unknown status", "project_id", projectID, "checkpoint_id", checkpointID, "status", ov.Status)
				delete(overlays, checkpointID)
			}
		}
	}

	l.mu.Lock()
	l.state = state
	l.mu.Unlock()
	return nil
}

// mutate applies fn under the write lock. When fn reports a change the new
// state is mirrored to storage after the lock is released.
func (l *Ledger) mutate(ctx context.Context, fn func(s *State, now time.Time) bool) bool {
	l.mu.Lock()
	if !fn(&l.state, l.clock()) {
		l.mu.Unlock()
		return false
	}
	l.seq++
	seq := l.seq
	snapshot := l.state.clone()
	l.mu.Unlock()

	l.mirror.Write(ctx, seq, snapshot)
	return true
}

func (l *Ledger) record(ctx context.Context, projectID, checkpointID string, typ activity.ActivityType, summary string, details any) {
	if l.recorder == nil {
		return
	}
	var cp *string
	if checkpointID != "" {
		cp = &checkpointID
	}
	l.recorder.Record(ctx, projectID, cp, typ, summary, details)
}

func validateTarget(projectID, checkpointID string) error {
	if strings.TrimSpace(projectID) == "" {
		return ErrNoActiveProject
	}
	if strings.TrimSpace(checkpointID) == "" {
		return fmt.Errorf("%w: checkpoint id required", ErrInvalidInput)
	}
	return nil
}

// upsert returns the overlay for a checkpoint, creating the project bucket on demand.
func upsert(s *State, projectID, checkpointID string) (map[string]Overlay, Overlay) {
	if s.Overlays == nil {
		s.Overlays = make(map[string]map[string]Overlay)
	}
	overlays, ok := s.Overlays[projectID]
	if !ok || overlays == nil {
		overlays = make(map[string]Overlay)
		s.Overlays[projectID] = overlays
	}
	return overlays, overlays[checkpointID]
}

// SetActiveProject sets the scope used by Active(). An empty id clears it.
// Overlays of other projects are kept.
func (l *Ledger) SetActiveProject(ctx context.Context, projectID string) {
	l.mutate(ctx, func(s *State, _ time.Time) bool {
		if s.ActiveProjectID == projectID {
			return false
		}
		s.ActiveProjectID = projectID
		return true
	})
}

// ActiveProject returns the active project id, or "" when none is set.
func (l *Ledger) ActiveProject() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.ActiveProjectID
}

// SetStatus upserts the status of a checkpoint.
func (l *Ledger) SetStatus(ctx context.Context, projectID, checkpointID string, status Status) error {
	if err := validateTarget(projectID, checkpointID); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	l.mutate(ctx, func(s *State, now time.Time) bool {
		overlays, ov := upsert(s, projectID, checkpointID)
		ov.Status = status
		ov.Timestamp = now
		overlays[checkpointID] = ov
		return true
	})
	l.record(ctx, projectID, checkpointID, activity.TypeStatusSet,
		fmt.Sprintf("status of %s set to %s", checkpointID, statusLabel(status)),
		map[string]string{"status": string(status)})
	return nil
}

// AddPhoto appends uri to the checkpoint's photo list. Duplicates are kept.
func (l *Ledger) AddPhoto(ctx context.Context, projectID, checkpointID, uri string) error {
	if err := validateTarget(projectID, checkpointID); err != nil {
		return err
	}
	if strings.TrimSpace(uri) == "" {
		return fmt.Errorf("%w: photo uri required", ErrInvalidInput)
	}

	l.mutate(ctx, func(s *State, now time.Time) bool {
		overlays, ov := upsert(s, projectID, checkpointID)
		ov.UserPhotos = append(slices.Clip(ov.UserPhotos), uri)
		ov.Timestamp = now
		overlays[checkpointID] = ov
		return true
	})
	l.record(ctx, projectID, checkpointID, activity.TypePhotoAdded,
		fmt.Sprintf("photo added to %s", checkpointID), map[string]string{"uri": uri})
	return nil
}

// RemovePhoto removes every occurrence of uri from the checkpoint's photos.
// It reports whether anything was removed and never creates an overlay.
func (l *Ledger) RemovePhoto(ctx context.Context, projectID, checkpointID, uri string) (bool, error) {
	if err := validateTarget(projectID, checkpointID); err != nil {
		return false, err
	}

	removed := l.mutate(ctx, func(s *State, now time.Time) bool {
		ov, ok := s.Overlays[projectID][checkpointID]
		if !ok || !slices.Contains(ov.UserPhotos, uri) {
			return false
		}
		kept := make([]string, 0, len(ov.UserPhotos))
		for _, p := range ov.UserPhotos {
			if p != uri {
				kept = append(kept, p)
			}
		}
		ov.UserPhotos = kept
		ov.Timestamp = now
		s.Overlays[projectID][checkpointID] = ov
		return true
	})
	if removed {
		l.record(ctx, projectID, checkpointID, activity.TypePhotoRemoved,
			fmt.Sprintf("photo removed from %s", checkpointID), map[string]string{"uri": uri})
	}
	return removed, nil
}

// SetComment upserts the checkpoint comment.
func (l *Ledger) SetComment(ctx context.Context, projectID, checkpointID, text string) error {
	if err := validateTarget(projectID, checkpointID); err != nil {
		return err
	}

	l.mutate(ctx, func(s *State, now time.Time) bool {
		overlays, ov := upsert(s, projectID, checkpointID)
		ov.UserComment = text
		ov.Timestamp = now
		overlays[checkpointID] = ov
		return true
	})
	l.record(ctx, projectID, checkpointID, activity.TypeCommentSet,
		fmt.Sprintf("comment updated on %s", checkpointID), nil)
	return nil
}

// SetRoom upserts the room a checkpoint was inspected in. An empty room clears it.
func (l *Ledger) SetRoom(ctx context.Context, projectID, checkpointID, room string) error {
	if err := validateTarget(projectID, checkpointID); err != nil {
		return err
	}

	l.mutate(ctx, func(s *State, now time.Time) bool {
		overlays, ov := upsert(s, projectID, checkpointID)
		if room == "" {
			ov.SelectedRoom = nil
		} else {
			r := room
			ov.SelectedRoom = &r
		}
		ov.Timestamp = now
		overlays[checkpointID] = ov
		return true
	})
	l.record(ctx, projectID, checkpointID, activity.TypeRoomSet,
		fmt.Sprintf("room of %s set", checkpointID), map[string]string{"room": room})
	return nil
}

// DeleteOverlay removes the overlay of one checkpoint. It reports whether one existed.
func (l *Ledger) DeleteOverlay(ctx context.Context, projectID, checkpointID string) (bool, error) {
	if err := validateTarget(projectID, checkpointID); err != nil {
		return false, err
	}

	deleted := l.mutate(ctx, func(s *State, _ time.Time) bool {
		overlays, ok := s.Overlays[projectID]
		if !ok {
			return false
		}
		if _, ok := overlays[checkpointID]; !ok {
			return false
		}
		delete(overlays, checkpointID)
		if len(overlays) == 0 {
			delete(s.Overlays, projectID)
		}
		return true
	})
	if deleted {
		l.record(ctx, projectID, checkpointID, activity.TypeOverlayDeleted,
			fmt.Sprintf("overlay of %s deleted", checkpointID), nil)
	}
	return deleted, nil
}

// ReplaceProjectOverlays sets the raw overlays of a project and makes it the
// active project. Used by import and restore flows.
func (l *Ledger) ReplaceProjectOverlays(ctx context.Context, projectID string, overlays map[string]Overlay) error {
	if strings.TrimSpace(projectID) == "" {
		return ErrNoActiveProject
	}
	for id, ov := range overlays {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: checkpoint id required", ErrInvalidInput)
		}
		if !ov.Status.Valid() {
			return fmt.Errorf("%w: %q on %s", ErrInvalidStatus, ov.Status, id)
		}
	}

	l.mutate(ctx, func(s *State, _ time.Time) bool {
		if len(overlays) == 0 {
			delete(s.Overlays, projectID)
		} else {
			s.Overlays[projectID] = cloneOverlays(overlays)
		}
		s.ActiveProjectID = projectID
		return true
	})
	l.record(ctx, projectID, "", activity.TypeOverlaysReplaced,
		fmt.Sprintf("replaced %d overlays", len(overlays)), map[string]int{"count": len(overlays)})
	return nil
}

// PurgeProject removes every overlay of a project and clears the active
// pointer when it referenced the project.
func (l *Ledger) PurgeProject(ctx context.Context, projectID string) {
	var count int
	purged := l.mutate(ctx, func(s *State, _ time.Time) bool {
		changed := false
		if overlays, ok := s.Overlays[projectID]; ok {
			count = len(overlays)
			delete(s.Overlays, projectID)
			changed = true
		}
		if s.ActiveProjectID == projectID {
			s.ActiveProjectID = ""
			changed = true
		}
		return changed
	})
	if purged {
		l.record(ctx, projectID, "", activity.TypeOverlaysPurged,
			fmt.Sprintf("purged %d overlays", count), map[string]int{"count": count})
	}
}

// ClearAll wipes every overlay and clears the active project.
func (l *Ledger) ClearAll(ctx context.Context) {
	l.mutate(ctx, func(s *State, _ time.Time) bool {
		*s = State{Overlays: make(map[string]map[string]Overlay)}
		return true
	})
	l.record(ctx, "", "", activity.TypeLedgerCleared, "ledger cleared", nil)
}

// BatchUpdate applies several partial updates to a project in one state
// replacement. All updates share one timestamp. Nothing is applied if any
// update is invalid.
func (l *Ledger) BatchUpdate(ctx context.Context, projectID string, updates []OverlayUpdate) error {
	if strings.TrimSpace(projectID) == "" {
		return ErrNoActiveProject
	}
	for _, u := range updates {
		if strings.TrimSpace(u.CheckpointID) == "" {
			return fmt.Errorf("%w: checkpoint id required", ErrInvalidInput)
		}
		if u.Status != nil && !u.Status.Valid() {
			return fmt.Errorf("%w: %q on %s", ErrInvalidStatus, *u.Status, u.CheckpointID)
		}
	}
	if len(updates) == 0 {
		return nil
	}

	l.mutate(ctx, func(s *State, now time.Time) bool {
		for _, u := range updates {
			overlays, ov := upsert(s, projectID, u.CheckpointID)
			if u.Status != nil {
				ov.Status = *u.Status
			}
			if u.UserPhotos != nil {
				ov.UserPhotos = append([]string(nil), u.UserPhotos...)
			}
			if u.UserComment != nil {
				ov.UserComment = *u.UserComment
			}
			ov.Timestamp = now
			overlays[u.CheckpointID] = ov
		}
		return true
	})

	ids := make([]string, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.CheckpointID)
	}
	l.record(ctx, projectID, "", activity.TypeBatchUpdated,
		fmt.Sprintf("batch updated %d checkpoints", len(updates)), map[string][]string{"checkpoints": ids})
	return nil
}

// Overlay returns a copy of the overlay for a project and checkpoint.
func (l *Ledger) Overlay(projectID, checkpointID string) (Overlay, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Overlay(projectID, checkpointID)
}

// ProjectOverlays returns a copy of every overlay of a project.
func (l *Ledger) ProjectOverlays(projectID string) map[string]Overlay {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneOverlays(l.state.Overlays[projectID])
}

// ProjectIDs lists the projects that have at least one overlay.
func (l *Ledger) ProjectIDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.state.Overlays))
	for id := range l.state.Overlays {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a deep copy of the ledger state. Use it to project many
// checkpoints against one consistent view.
func (l *Ledger) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.clone()
}

func statusLabel(s Status) string {
	if s == StatusNone {
		return "untouched"
	}
	return string(s)
}
