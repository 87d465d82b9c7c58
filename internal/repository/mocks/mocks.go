package mocks

import (
	"context"

	"github.com/ganot/punchlist/internal/domain/activity"
	"github.com/stretchr/testify/mock"
)

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// StateStore is a mock for persist.Store.
type StateStore struct {
	mock.Mock
}

func (m *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StateStore) Save(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

// OverlayPurger is a mock for project.OverlayPurger.
type OverlayPurger struct {
	mock.Mock
}

func (m *OverlayPurger) PurgeProject(ctx context.Context, projectID string) {
	m.Called(ctx, projectID)
}
