package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ganot/punchlist/internal/repository"
)

// MigrateFunc converts a persisted state written at version into the current shape.
type MigrateFunc[T any] func(state json.RawMessage, version int) (T, error)

// Mirror writes snapshots of an in-memory state container to a Store.
// The in-memory container stays the source of truth: write failures are
// logged and never propagate back into the mutation that produced them.
type Mirror[T any] struct {
	store   Store
	key     string
	version int
	logger  *slog.Logger

	mu      sync.Mutex
	written uint64
}

// NewMirror creates a mirror for one store key. A nil store disables writes.
func NewMirror[T any](store Store, key string, version int, logger *slog.Logger) *Mirror[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mirror[T]{store: store, key: key, version: version, logger: logger}
}

// Key returns the store key.
func (m *Mirror[T]) Key() string {
	return m.key
}

// Write serializes state and saves it. seq orders snapshots: a snapshot with
// a sequence at or below the last one written is dropped as stale.
func (m *Mirror[T]) Write(ctx context.Context, seq uint64, state T) {
	if m == nil || m.store == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if seq <= m.written {
		m.logger.Debug("dropping stale snapshot", "key", m.key, "seq", seq, "written", m.written)
		return
	}

	data, err := Encode(state, m.version)
	if err != nil {
		m.logger.Warn("failed to serialize state", "key", m.key, "error", err)
		return
	}
	if err := m.store.Save(ctx, m.key, data); err != nil {
		m.logger.Warn("failed to persist state", "key", m.key, "error", err)
		return
	}
	m.written = seq
}

// Hydrate loads the persisted state. found is false when nothing was stored.
// migrate may be nil, in which case the state is decoded as-is.
func (m *Mirror[T]) Hydrate(ctx context.Context, migrate MigrateFunc[T]) (state T, found bool, err error) {
	if m == nil || m.store == nil {
		return state, false, nil
	}

	data, err := m.store.Load(ctx, m.key)
	if errors.Is(err, repository.ErrNotFound) {
		return state, false, nil
	}
	if err != nil {
		return state, false, fmt.Errorf("loading %s: %w", m.key, err)
	}

	env, err := Decode(data)
	if err != nil {
		return state, false, fmt.Errorf("loading %s: %w", m.key, err)
	}

	if migrate != nil {
		state, err = migrate(env.State, env.Version)
		if err != nil {
			return state, false, fmt.Errorf("migrating %s from version %d: %w", m.key, env.Version, err)
		}
		return state, true, nil
	}

	if env.Version != m.version {
		m.logger.Warn("persisted state version differs", "key", m.key, "stored", env.Version, "current", m.version)
	}
	if err := json.Unmarshal(env.State, &state); err != nil {
		return state, false, fmt.Errorf("decoding %s: %w", m.key, err)
	}
	return state, true, nil
}
