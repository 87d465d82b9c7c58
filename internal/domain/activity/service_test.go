package activity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ganot/punchlist/internal/domain/activity"
	"github.com/ganot/punchlist/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ActivityRepository{}
	entry := &activity.ActivityEntry{
		ProjectID:    "proj1",
		ActivityType: activity.TypeStatusSet,
		Summary:      "status set",
	}

	repo.On("Log", ctx, entry).Return(nil)
	repo.On("List", ctx, activity.ListActivityOptions{ProjectID: "proj1"}).Return([]activity.ActivityEntry{*entry}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.LogActivity(ctx, entry))
	require.False(t, entry.CreatedAt.IsZero())

	entries, err := svc.GetRecentActivity(ctx, activity.ListActivityOptions{ProjectID: "proj1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	repo.AssertExpectations(t)
}

func TestActivityService_LogValidation(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	require.ErrorIs(t, svc.LogActivity(context.Background(), nil), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(context.Background(), &activity.ActivityEntry{}), activity.ErrInvalidInput)
}

func TestActivityService_RecordSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypePhotoAdded && e.Details == `{"uri":"file://a.jpg"}`
	})).Return(errors.New("db locked"))

	svc := activity.NewService(repo, nil)
	checkpointID := "f1"
	require.NotPanics(t, func() {
		svc.Record(ctx, "p1", &checkpointID, activity.TypePhotoAdded, "photo added", map[string]string{"uri": "file://a.jpg"})
	})
	repo.AssertExpectations(t)
}

func TestActivityService_NilRecordIsNoop(t *testing.T) {
	var svc *activity.Service
	require.NotPanics(t, func() {
		svc.Record(context.Background(), "p1", nil, activity.TypeLedgerCleared, "cleared", nil)
	})
}
