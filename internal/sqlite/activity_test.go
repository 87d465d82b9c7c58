package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/punchlist/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	entry1 := &activity.ActivityEntry{
		ProjectID:    "p1",
		ActivityType: activity.TypeProjectCreated,
		Summary:      "Created project",
		CreatedAt:    base,
	}
	entry2 := &activity.ActivityEntry{
		ProjectID:    "p1",
		ActivityType: activity.TypeStatusSet,
		Summary:      "Status set",
		Details:      `{"status":"defect"}`,
		CreatedAt:    base.Add(time.Minute),
	}

	require.NoError(t, repo.Log(ctx, entry1))
	require.NoError(t, repo.Log(ctx, entry2))
	require.NotZero(t, entry1.ID)

	entries, err := repo.List(ctx, activity.ListActivityOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.ActivityType, entries[0].ActivityType)
	require.Equal(t, `{"status":"defect"}`, entries[0].Details)
	require.Equal(t, entry1.ActivityType, entries[1].ActivityType)
	require.Nil(t, entries[1].CheckpointID)
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	checkpointID := "f1"
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{
		ProjectID:    "p1",
		CheckpointID: &checkpointID,
		ActivityType: activity.TypePhotoAdded,
		Summary:      "photo added",
		CreatedAt:    base,
	}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{
		ProjectID:    "p1",
		ActivityType: activity.TypeProjectUpdated,
		Summary:      "project updated",
		CreatedAt:    base.Add(time.Second),
	}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{
		ProjectID:    "p2",
		ActivityType: activity.TypeProjectCreated,
		Summary:      "project created",
		CreatedAt:    base.Add(2 * time.Second),
	}))

	typ := activity.TypePhotoAdded
	entries, err := repo.List(ctx, activity.ListActivityOptions{
		ProjectID:    "p1",
		CheckpointID: &checkpointID,
		ActivityType: &typ,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "f1", *entries[0].CheckpointID)

	entries, err = repo.List(ctx, activity.ListActivityOptions{ProjectID: "p2"})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = repo.List(ctx, activity.ListActivityOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, activity.TypeProjectUpdated, entries[0].ActivityType)

	entries, err = repo.List(ctx, activity.ListActivityOptions{Offset: 2})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, activity.TypePhotoAdded, entries[0].ActivityType)
}

func TestActivityRepository_BacksService(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	svc := activity.NewService(NewActivityRepository(db), nil)

	checkpointID := "f2"
	svc.Record(ctx, "p1", &checkpointID, activity.TypeCommentSet, "comment updated", map[string]string{"a": "b"})

	entries, err := svc.GetRecentActivity(ctx, activity.ListActivityOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.JSONEq(t, `{"a":"b"}`, entries[0].Details)
	require.False(t, entries[0].CreatedAt.IsZero())
}
