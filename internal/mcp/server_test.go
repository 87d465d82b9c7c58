package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ganot/punchlist/internal/app"
	"github.com/ganot/punchlist/internal/mcp"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	app     *app.App
	session *sdkmcp.ClientSession
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	a, err := app.Open(ctx, app.Options{Ephemeral: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	server := mcp.NewServer(mcp.Config{Services: a.Services(), TransportMode: "test", Version: "test"})
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})

	return &harness{app: a, session: session}
}

func (h *harness) call(t *testing.T, name string, args map[string]any, out any) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	result, err := h.session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, result.IsError, "%s failed: %s", name, resultText(result))
	if out != nil {
		decode(t, result.StructuredContent, out)
	}
}

// callError returns the error text of a tool call that is expected to fail.
func (h *harness) callError(t *testing.T, name string, args map[string]any) string {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	result, err := h.session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.True(t, result.IsError, "%s unexpectedly succeeded", name)
	return resultText(result)
}

func resultText(result *sdkmcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func decode(t *testing.T, in any, out any) {
	t.Helper()
	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func (h *harness) createProject(t *testing.T, title string) mcp.ProjectResult {
	t.Helper()
	var proj mcp.ProjectResult
	h.call(t, "create_project", map[string]any{"title": title}, &proj)
	return proj
}

func TestListTools(t *testing.T) {
	h := newHarness(t)

	tools, err := h.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make(map[string]bool, len(tools.Tools))
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"create_project", "update_project", "archive_project", "unarchive_project", "delete_project",
		"get_project", "list_projects", "set_active_project", "get_active_project",
		"list_categories", "get_checkpoint", "list_category_checkpoints", "search_checkpoints",
		"set_status", "add_photo", "remove_photo", "set_comment", "set_room", "delete_overlay",
		"batch_update", "replace_project_overlays", "clear_ledger",
		"category_stats", "project_stats", "get_recent_activity", "get_preferences", "set_preferences",
	} {
		require.True(t, names[want], "missing tool %s", want)
	}
}

func TestInspectionWalkthrough(t *testing.T) {
	h := newHarness(t)
	proj := h.createProject(t, "Flat 42")
	require.Equal(t, "draft", proj.FinishMode)
	require.Empty(t, proj.Participants)

	var active mcp.ActiveProjectResult
	h.call(t, "get_active_project", nil, &active)
	require.NotNil(t, active.Project)
	require.Equal(t, proj.ID, active.Project.ID)
	require.Equal(t, 0, active.Index)

	h.call(t, "set_status", map[string]any{"checkpoint_id": "floor-screed-level", "status": "complies"}, nil)
	h.call(t, "set_status", map[string]any{"checkpoint_id": "floor-screed-cracks", "status": "defect"}, nil)
	h.call(t, "add_photo", map[string]any{"checkpoint_id": "floor-screed-cracks", "uri": "photo://a"}, nil)
	h.call(t, "add_photo", map[string]any{"checkpoint_id": "floor-screed-cracks", "uri": "photo://b"}, nil)
	h.call(t, "set_comment", map[string]any{"checkpoint_id": "floor-screed-cracks", "comment": "Crack near the door"}, nil)
	h.call(t, "set_room", map[string]any{"checkpoint_id": "floor-screed-cracks", "room": "Hall"}, nil)

	var list mcp.CategoryCheckpointsResult
	h.call(t, "list_category_checkpoints", map[string]any{"category_id": "floor"}, &list)
	require.Equal(t, proj.ID, list.ProjectID)
	require.Equal(t, "draft", list.Phase)
	require.Len(t, list.Checkpoints, 3)
	require.NotEmpty(t, list.LastUpdated)

	level, cracks, delamination := list.Checkpoints[0], list.Checkpoints[1], list.Checkpoints[2]
	require.Equal(t, "floor-screed-level", level.ID)
	require.Equal(t, "complies", level.Status)
	require.Equal(t, "defect", cracks.Status)
	require.Equal(t, []string{"photo://a", "photo://b"}, cracks.UserPhotos)
	require.Equal(t, "Crack near the door", cracks.UserComment)
	require.Equal(t, "Hall", cracks.SelectedRoom)
	require.Equal(t, "Screed cracks", cracks.Title)
	require.False(t, delamination.Touched)
	require.Empty(t, delamination.Status)
	require.Equal(t, []string{}, delamination.UserPhotos)

	require.Equal(t, mcp.CategoryStatsResult{
		CategoryID: "floor", Phase: "draft", Total: 3, Completed: 2, Defects: 1, Percentage: 67,
	}, list.Stats)

	var stats mcp.ProjectStatsResult
	h.call(t, "project_stats", nil, &stats)
	require.Equal(t, proj.ID, stats.ProjectID)
	require.Equal(t, 2, stats.Completed)
	require.Equal(t, 1, stats.Defects)
	require.NotEmpty(t, stats.Categories)
}

func TestRemovePhotoOnUntouchedCheckpoint(t *testing.T) {
	h := newHarness(t)
	h.createProject(t, "Flat 1")

	var applied mcp.AppliedResult
	h.call(t, "remove_photo", map[string]any{"checkpoint_id": "doors-hardware", "uri": "photo://x"}, &applied)
	require.False(t, applied.Applied)

	var cp mcp.CheckpointResult
	h.call(t, "get_checkpoint", map[string]any{"checkpoint_id": "doors-hardware"}, &cp)
	require.False(t, cp.Touched)
	require.Empty(t, cp.UpdatedAt)
}

func TestToolErrors(t *testing.T) {
	h := newHarness(t)

	require.Contains(t, h.callError(t, "set_status", map[string]any{"checkpoint_id": "floor-screed-level", "status": "complies"}), "NO_ACTIVE_PROJECT")

	h.createProject(t, "Flat 7")
	require.Contains(t, h.callError(t, "set_status", map[string]any{"checkpoint_id": "nope", "status": "complies"}), "CHECKPOINT_NOT_FOUND")
	require.Contains(t, h.callError(t, "set_status", map[string]any{"checkpoint_id": "floor-screed-level", "status": "broken"}), "INVALID_STATUS")
	require.Contains(t, h.callError(t, "set_status", map[string]any{"project_id": "missing", "checkpoint_id": "floor-screed-level", "status": "complies"}), "PROJECT_NOT_FOUND")
	require.Contains(t, h.callError(t, "list_category_checkpoints", map[string]any{"category_id": "roof"}), "CATEGORY_NOT_FOUND")
	require.Contains(t, h.callError(t, "create_project", map[string]any{"title": "  "}), "INVALID_INPUT")
	require.Contains(t, h.callError(t, "clear_ledger", map[string]any{"confirm": false}), "INVALID_INPUT")
	require.Contains(t, h.callError(t, "list_projects", map[string]any{"filter": "recent"}), "INVALID_INPUT")
}

func TestExplicitProjectDoesNotTouchActive(t *testing.T) {
	h := newHarness(t)
	first := h.createProject(t, "First")
	second := h.createProject(t, "Second")

	h.call(t, "set_status", map[string]any{"project_id": first.ID, "checkpoint_id": "walls-plaster-vertical", "status": "defect"}, nil)

	var active mcp.ActiveProjectResult
	h.call(t, "get_active_project", nil, &active)
	require.Equal(t, second.ID, active.Project.ID)

	var onSecond mcp.CheckpointResult
	h.call(t, "get_checkpoint", map[string]any{"checkpoint_id": "walls-plaster-vertical"}, &onSecond)
	require.False(t, onSecond.Touched)

	var onFirst mcp.CheckpointResult
	h.call(t, "get_checkpoint", map[string]any{"checkpoint_id": "walls-plaster-vertical", "project_id": first.ID}, &onFirst)
	require.Equal(t, "defect", onFirst.Status)
}

func TestDeleteProjectCascades(t *testing.T) {
	h := newHarness(t)
	proj := h.createProject(t, "Doomed")
	h.call(t, "set_status", map[string]any{"checkpoint_id": "floor-screed-level", "status": "defect"}, nil)

	var applied mcp.AppliedResult
	h.call(t, "delete_project", map[string]any{"id": proj.ID}, &applied)
	require.True(t, applied.Applied)
	require.Empty(t, h.app.Ledger.ProjectOverlays(proj.ID))

	var active mcp.ActiveProjectResult
	h.call(t, "get_active_project", nil, &active)
	require.Nil(t, active.Project)
	require.Equal(t, -1, active.Index)

	h.call(t, "delete_project", map[string]any{"id": proj.ID}, &applied)
	require.False(t, applied.Applied)
}

func TestProjectLifecycle(t *testing.T) {
	h := newHarness(t)
	proj := h.createProject(t, "Flat 9")

	var updated mcp.ProjectResult
	h.call(t, "update_project", map[string]any{
		"id":           proj.ID,
		"address":      "Main st 1",
		"finish_mode":  "finish",
		"participants": []map[string]any{{"name": "Ann", "role": "buyer"}},
	}, &updated)
	require.Equal(t, "Flat 9", updated.Title)
	require.Equal(t, "Main st 1", updated.Address)
	require.Equal(t, "finish", updated.FinishMode)
	require.Equal(t, []mcp.ParticipantResult{{Name: "Ann", Role: "buyer"}}, updated.Participants)

	var archived mcp.ProjectResult
	h.call(t, "archive_project", map[string]any{"id": proj.ID}, &archived)
	require.True(t, archived.IsArchived)

	var list mcp.ProjectListResult
	h.call(t, "list_projects", map[string]any{"filter": "archived"}, &list)
	require.Len(t, list.Projects, 1)
	h.call(t, "list_projects", map[string]any{"filter": "active"}, &list)
	require.Empty(t, list.Projects)

	h.call(t, "unarchive_project", map[string]any{"id": proj.ID}, &archived)
	require.False(t, archived.IsArchived)

	var got mcp.ProjectResult
	h.call(t, "get_project", map[string]any{"id": proj.ID}, &got)
	require.Equal(t, proj.ID, got.ID)

	require.Contains(t, h.callError(t, "update_project", map[string]any{"id": "missing", "title": "x"}), "PROJECT_NOT_FOUND")
	require.Contains(t, h.callError(t, "set_active_project", map[string]any{"id": "missing"}), "PROJECT_NOT_FOUND")

	var active mcp.ActiveProjectResult
	h.call(t, "set_active_project", map[string]any{}, &active)
	require.Nil(t, active.Project)
	require.Empty(t, h.app.Ledger.ActiveProject())
}

func TestBatchAndReplace(t *testing.T) {
	h := newHarness(t)
	proj := h.createProject(t, "Batch")

	h.call(t, "batch_update", map[string]any{"updates": []map[string]any{
		{"checkpoint_id": "windows-frame-vertical", "status": "complies"},
		{"checkpoint_id": "windows-mounting-seam", "status": "defect", "user_comment": "No membrane"},
	}}, nil)

	var stats mcp.CategoryStatsResult
	h.call(t, "category_stats", map[string]any{"category_id": "windows"}, &stats)
	require.Equal(t, 2, stats.Completed)
	require.Equal(t, 100, stats.Percentage)

	require.Contains(t, h.callError(t, "batch_update", map[string]any{"updates": []map[string]any{
		{"checkpoint_id": "windows-frame-vertical", "status": "defect"},
		{"checkpoint_id": "not-in-catalog", "status": "defect"},
	}}), "CHECKPOINT_NOT_FOUND")
	h.call(t, "category_stats", map[string]any{"category_id": "windows"}, &stats)
	require.Equal(t, 1, stats.Defects)

	h.call(t, "replace_project_overlays", map[string]any{
		"project_id": proj.ID,
		"overlays": map[string]any{
			"ceiling-plaster-horizontal": map[string]any{
				"status":      "defect",
				"user_photos": []string{"photo://ceiling"},
				"timestamp":   "2024-03-01T10:00:00Z",
			},
		},
	}, nil)

	h.call(t, "category_stats", map[string]any{"category_id": "windows"}, &stats)
	require.Equal(t, 0, stats.Completed)

	var cp mcp.CheckpointResult
	h.call(t, "get_checkpoint", map[string]any{"checkpoint_id": "ceiling-plaster-horizontal"}, &cp)
	require.Equal(t, "defect", cp.Status)
	require.Equal(t, "2024-03-01T10:00:00Z", cp.UpdatedAt)

	var applied mcp.AppliedResult
	h.call(t, "delete_overlay", map[string]any{"checkpoint_id": "ceiling-plaster-horizontal"}, &applied)
	require.True(t, applied.Applied)
	h.call(t, "get_checkpoint", map[string]any{"checkpoint_id": "ceiling-plaster-horizontal"}, &cp)
	require.False(t, cp.Touched)
}

func TestClearLedger(t *testing.T) {
	h := newHarness(t)
	proj := h.createProject(t, "Clear me")
	h.call(t, "set_status", map[string]any{"checkpoint_id": "floor-screed-level", "status": "defect"}, nil)

	h.call(t, "clear_ledger", map[string]any{"confirm": true}, nil)
	require.Empty(t, h.app.Ledger.ProjectOverlays(proj.ID))
	require.Empty(t, h.app.Ledger.ActiveProject())
	require.Nil(t, h.app.Projects.Active())

	var list mcp.ProjectListResult
	h.call(t, "list_projects", nil, &list)
	require.Len(t, list.Projects, 1)
}

func TestSearchCheckpoints(t *testing.T) {
	h := newHarness(t)

	var found mcp.SearchResultList
	h.call(t, "search_checkpoints", map[string]any{"query": "delamination"}, &found)
	require.NotEmpty(t, found.Results)

	ids := make([]string, 0, len(found.Results))
	for _, r := range found.Results {
		ids = append(ids, r.CheckpointID)
	}
	require.Contains(t, ids, "floor-screed-delamination")

	h.call(t, "search_checkpoints", map[string]any{"query": "delamination", "phase": "finish"}, &found)
	for _, r := range found.Results {
		require.Equal(t, "finish", r.Phase)
	}
}

func TestPreferencesDriveDefaultPhase(t *testing.T) {
	h := newHarness(t)
	h.createProject(t, "Prefs")

	var prefs mcp.PreferencesResult
	h.call(t, "get_preferences", nil, &prefs)
	require.Equal(t, "draft", prefs.Phase)

	h.call(t, "set_preferences", map[string]any{"phase": "finish", "category_id": "doors"}, &prefs)
	require.Equal(t, mcp.PreferencesResult{Phase: "finish", CategoryID: "doors"}, prefs)

	var list mcp.CategoryCheckpointsResult
	h.call(t, "list_category_checkpoints", map[string]any{"category_id": "doors"}, &list)
	require.Equal(t, "finish", list.Phase)
	require.Len(t, list.Checkpoints, 2)

	require.Contains(t, h.callError(t, "set_preferences", map[string]any{"category_id": "roof"}), "INVALID_INPUT")
}

func TestRecentActivity(t *testing.T) {
	h := newHarness(t)
	proj := h.createProject(t, "Audited")
	h.call(t, "set_status", map[string]any{"checkpoint_id": "floor-screed-level", "status": "complies"}, nil)

	var activity mcp.ActivityListResult
	h.call(t, "get_recent_activity", map[string]any{"project_id": proj.ID}, &activity)
	require.Len(t, activity.Entries, 2)
	require.Equal(t, "status_set", activity.Entries[0].Type)
	require.Equal(t, "floor-screed-level", activity.Entries[0].CheckpointID)

	h.call(t, "get_recent_activity", map[string]any{"project_id": proj.ID, "type": "project_created"}, &activity)
	require.Len(t, activity.Entries, 1)
}

func TestCatalogResources(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var categories mcp.CategoryListResult
	h.call(t, "list_categories", nil, &categories)
	require.NotEmpty(t, categories.Version)
	require.Equal(t, "floor", categories.Categories[0].ID)

	res, err := h.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "punchlist://catalog"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	var doc struct {
		Version     string `json:"version"`
		Checkpoints []struct {
			ID string `json:"id"`
		} `json:"checkpoints"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &doc))
	require.Equal(t, categories.Version, doc.Version)
	require.Len(t, doc.Checkpoints, h.app.Catalog.Len())

	res, err = h.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "punchlist://docs/precedence"})
	require.NoError(t, err)
	require.Contains(t, res.Contents[0].Text, "user_photos")
}
