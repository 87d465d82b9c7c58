// Package preferences holds the inspector's view selection (ui-store).
package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/persist"
)

// StateVersion is the persisted version of the ui store.
const StateVersion = 1

// ErrInvalidInput indicates an unknown phase or category.
var ErrInvalidInput = errors.New("invalid preference")

// State is the persisted selection.
type State struct {
	Phase      catalog.Phase `json:"phase"`
	CategoryID string        `json:"category_id,omitempty"`
}

// Service keeps the selection in memory and mirrors it to storage.
type Service struct {
	mu     sync.RWMutex
	state  State
	seq    uint64
	cat    *catalog.Catalog
	mirror *persist.Mirror[State]
	logger *slog.Logger
}

// NewService creates a selection defaulting to the draft phase. cat is used
// to validate category ids and may be nil.
func NewService(cat *catalog.Catalog, mirror *persist.Mirror[State], logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		state:  State{Phase: catalog.PhaseDraft},
		cat:    cat,
		mirror: mirror,
		logger: logger,
	}
}

// Load restores the persisted selection. Stale values are reset to defaults.
func (s *Service) Load(ctx context.Context) error {
	state, found, err := s.mirror.Hydrate(ctx, nil)
	if err != nil {
		return fmt.Errorf("hydrating preferences: %w", err)
	}
	if !found {
		return nil
	}
	if !state.Phase.Valid() {
		state.Phase = catalog.PhaseDraft
	}
	if state.CategoryID != "" && s.cat != nil && !s.cat.HasCategory(state.CategoryID) {
		s.logger.Warn("dropping unknown selected category", "category_id", state.CategoryID)
		state.CategoryID = ""
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// Get returns the current selection.
func (s *Service) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetPhase selects the phase.
func (s *Service) SetPhase(ctx context.Context, phase catalog.Phase) error {
	if !phase.Valid() {
		return fmt.Errorf("%w: phase %q", ErrInvalidInput, phase)
	}
	s.update(ctx, func(st *State) { st.Phase = phase })
	return nil
}

// SetCategory selects a category. An empty id clears the selection.
func (s *Service) SetCategory(ctx context.Context, categoryID string) error {
	if categoryID != "" && s.cat != nil && !s.cat.HasCategory(categoryID) {
		return fmt.Errorf("%w: category %q", ErrInvalidInput, categoryID)
	}
	s.update(ctx, func(st *State) { st.CategoryID = categoryID })
	return nil
}

func (s *Service) update(ctx context.Context, fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	s.seq++
	seq, snapshot := s.seq, s.state
	s.mu.Unlock()

	s.mirror.Write(ctx, seq, snapshot)
}
