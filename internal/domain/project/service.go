package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ganot/punchlist/internal/domain/activity"
	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/persist"
	"github.com/google/uuid"
)

// Service is the project registry. All operations are total over the
// in-memory list: unknown ids are reported through return values, not errors.
type Service struct {
	mu    sync.RWMutex
	state State
	seq   uint64

	mirror   *persist.Mirror[State]
	purger   OverlayPurger
	listener ActiveListener
	recorder Recorder
	clock    func() time.Time
	newID    func(time.Time) string
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMirror persists every registry change through m.
func WithMirror(m *persist.Mirror[State]) Option {
	return func(s *Service) { s.mirror = m }
}

// WithOverlayPurger cascades project deletion into the checkpoint ledger.
func WithOverlayPurger(p OverlayPurger) Option {
	return func(s *Service) { s.purger = p }
}

// WithActiveListener forwards active project changes to l.
func WithActiveListener(l ActiveListener) Option {
	return func(s *Service) { s.listener = l }
}

// WithRecorder sends an audit entry for every write to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithIDGenerator overrides project id generation.
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService creates an empty registry.
func NewService(logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		state:  State{Projects: []Project{}},
		clock:  time.Now,
		newID:  NewID,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID builds a project id from the creation time and a random suffix.
func NewID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// Load rehydrates the registry, dropping malformed records.
func (s *Service) Load(ctx context.Context) error {
	state, found, err := s.mirror.Hydrate(ctx, migrator(s.logger))
	if err != nil {
		return fmt.Errorf("hydrating project registry: %w", err)
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	if state.ActiveProjectID != "" && s.listener != nil {
		s.listener.SetActiveProject(ctx, state.ActiveProjectID)
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, fn func(st *State, now time.Time) bool) bool {
	s.mu.Lock()
	if !fn(&s.state, s.clock()) {
		s.mu.Unlock()
		return false
	}
	s.seq++
	seq := s.seq
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.mirror.Write(ctx, seq, snapshot)
	return true
}

func (s *Service) record(ctx context.Context, projectID string, typ activity.ActivityType, summary string, details any) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, projectID, nil, typ, summary, details)
}

func (s *Service) notifyActive(ctx context.Context, projectID string) {
	if s.listener != nil {
		s.listener.SetActiveProject(ctx, projectID)
	}
}

// Create registers a project and makes it the active one.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", ErrInvalidInput)
	}
	mode := req.FinishMode
	if mode == "" {
		mode = catalog.PhaseDraft
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: finish mode %q", ErrInvalidInput, mode)
	}

	var created Project
	s.mutate(ctx, func(st *State, now time.Time) bool {
		created = Project{
			ID:           s.newID(now),
			Title:        title,
			Address:      req.Address,
			CreatedAt:    now,
			UpdatedAt:    now,
			IsActive:     true,
			FinishMode:   mode,
			Participants: req.Participants,
		}
		created = created.clone()
		st.Projects = append(st.Projects, created)
		st.ActiveProjectID = created.ID
		return true
	})

	s.notifyActive(ctx, created.ID)
	s.record(ctx, created.ID, activity.TypeProjectCreated, fmt.Sprintf("project %q created", created.Title), nil)
	s.logger.Info("project created", "project_id", created.ID)
	out := created.clone()
	return &out, nil
}

// Get returns a project by id.
func (s *Service) Get(id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.state.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	out := s.state.Projects[i].clone()
	return &out, nil
}

// Update merges patch into a project and bumps UpdatedAt. It reports false
// when the id is unknown.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (bool, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return false, fmt.Errorf("%w: title required", ErrInvalidInput)
	}
	if patch.FinishMode != nil && !patch.FinishMode.Valid() {
		return false, fmt.Errorf("%w: finish mode %q", ErrInvalidInput, *patch.FinishMode)
	}

	updated := s.mutate(ctx, func(st *State, now time.Time) bool {
		i := st.index(id)
		if i < 0 {
			return false
		}
		p := &st.Projects[i]
		if patch.Title != nil {
			p.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Address != nil {
			if *patch.Address == "" {
				p.Address = nil
			} else {
				addr := *patch.Address
				p.Address = &addr
			}
		}
		if patch.IsActive != nil {
			p.IsActive = *patch.IsActive
		}
		if patch.FinishMode != nil {
			p.FinishMode = *patch.FinishMode
		}
		if patch.Participants != nil {
			p.Participants = append([]Participant(nil), patch.Participants...)
		}
		p.UpdatedAt = now
		return true
	})
	if updated {
		s.record(ctx, id, activity.TypeProjectUpdated, "project updated", patch)
	}
	return updated, nil
}

// Archive marks a project as archived. Only the flag changes.
func (s *Service) Archive(ctx context.Context, id string) bool {
	return s.setArchived(ctx, id, true)
}

// Unarchive clears the archived flag.
func (s *Service) Unarchive(ctx context.Context, id string) bool {
	return s.setArchived(ctx, id, false)
}

func (s *Service) setArchived(ctx context.Context, id string, archived bool) bool {
	found := false
	s.mutate(ctx, func(st *State, _ time.Time) bool {
		i := st.index(id)
		if i < 0 {
			return false
		}
		found = true
		if st.Projects[i].IsArchived == archived {
			return false
		}
		st.Projects[i].IsArchived = archived
		return true
	})
	if found {
		typ, verb := activity.TypeProjectArchived, "archived"
		if !archived {
			typ, verb = activity.TypeProjectUnarchived, "unarchived"
		}
		s.record(ctx, id, typ, "project "+verb, nil)
	}
	return found
}

// Delete removes a project, clears the active pointer if it referenced it
// and purges the project's checkpoint overlays.
func (s *Service) Delete(ctx context.Context, id string) bool {
	wasActive := false
	deleted := s.mutate(ctx, func(st *State, _ time.Time) bool {
		i := st.index(id)
		if i < 0 {
			return false
		}
		st.Projects = append(st.Projects[:i:i], st.Projects[i+1:]...)
		if st.ActiveProjectID == id {
			st.ActiveProjectID = ""
			wasActive = true
		}
		return true
	})
	if !deleted {
		return false
	}

	if s.purger != nil {
		s.purger.PurgeProject(ctx, id)
	}
	if wasActive {
		s.notifyActive(ctx, "")
	}
	s.record(ctx, id, activity.TypeProjectDeleted, "project deleted", nil)
	s.logger.Info("project deleted", "project_id", id, "was_active", wasActive)
	return true
}

// SetActive points the registry at a project. An empty id clears the
// pointer. It reports false and changes nothing for unknown ids.
func (s *Service) SetActive(ctx context.Context, id string) bool {
	ok := true
	s.mutate(ctx, func(st *State, _ time.Time) bool {
		if id != "" && st.index(id) < 0 {
			ok = false
			return false
		}
		if st.ActiveProjectID == id {
			return false
		}
		st.ActiveProjectID = id
		return true
	})
	if ok {
		s.notifyActive(ctx, id)
	}
	return ok
}

// Active returns the active project, or nil.
func (s *Service) Active() *Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.state.index(s.state.ActiveProjectID)
	if s.state.ActiveProjectID == "" || i < 0 {
		return nil
	}
	out := s.state.Projects[i].clone()
	return &out
}

// ActiveIndex returns the position of the active project in AllProjects, or -1.
func (s *Service) ActiveIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.ActiveProjectID == "" {
		return -1
	}
	return s.state.index(s.state.ActiveProjectID)
}

// ActiveProjects lists projects in use: flagged active and not archived.
func (s *Service) ActiveProjects() []Project {
	return s.filter(func(p Project) bool { return p.IsActive && !p.IsArchived })
}

// ArchivedProjects lists archived projects.
func (s *Service) ArchivedProjects() []Project {
	return s.filter(func(p Project) bool { return p.IsArchived })
}

// AllProjects lists every project in creation order.
func (s *Service) AllProjects() []Project {
	return s.filter(func(Project) bool { return true })
}

func (s *Service) filter(keep func(Project) bool) []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Project{}
	for _, p := range s.state.Projects {
		if keep(p) {
			out = append(out, p.clone())
		}
	}
	return out
}
