package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/punchlist/internal/domain/activity"
	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/domain/checkpoint"
	"github.com/ganot/punchlist/internal/domain/project"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultActivityLimit = 50

// handler implements every tool on top of the domain services.
type handler struct {
	cat      *catalog.Catalog
	ledger   LedgerService
	projects ProjectService
	activity ActivityService
	prefs    PreferenceService
	index    catalog.Index
	logger   *slog.Logger
}

func newHandler(s Services, logger *slog.Logger) *handler {
	return &handler{
		cat:      s.Catalog,
		ledger:   s.Ledger,
		projects: s.Projects,
		activity: s.Activity,
		prefs:    s.Preferences,
		index:    s.Index,
		logger:   logger,
	}
}

// resolveProject returns the explicit project id or falls back to the active one.
// Known registry ids are enforced when a registry is configured.
func (h *handler) resolveProject(projectID string) (string, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		projectID = h.ledger.ActiveProject()
	}
	if projectID == "" {
		return "", checkpoint.ErrNoActiveProject
	}
	if h.projects != nil {
		if _, err := h.projects.Get(projectID); err != nil {
			return "", err
		}
	}
	return projectID, nil
}

func (h *handler) resolveCheckpoint(projectID, checkpointID string) (string, string, error) {
	pid, err := h.resolveProject(projectID)
	if err != nil {
		return "", "", err
	}
	if _, err := h.cat.Checkpoint(checkpointID); err != nil {
		return "", "", err
	}
	return pid, checkpointID, nil
}

func (h *handler) resolvePhase(phase string) (catalog.Phase, error) {
	if phase == "" {
		if h.prefs != nil {
			return h.prefs.Get().Phase, nil
		}
		return catalog.PhaseDraft, nil
	}
	p := catalog.Phase(phase)
	if !p.Valid() {
		return "", fmt.Errorf("%w: phase %q", checkpoint.ErrInvalidInput, phase)
	}
	return p, nil
}

func (h *handler) requireRegistry() error {
	if h.projects == nil {
		return fmt.Errorf("%w: project registry not configured", checkpoint.ErrInvalidInput)
	}
	return nil
}

// Projects

func (h *handler) createProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateProjectInput) (*sdkmcp.CallToolResult, ProjectResult, error) {
	if err := h.requireRegistry(); err != nil {
		return nil, ProjectResult{}, toolError(err)
	}
	req := project.CreateRequest{
		Title:        in.Title,
		FinishMode:   catalog.Phase(in.FinishMode),
		Participants: toParticipants(in.Participants),
	}
	if in.Address != "" {
		addr := in.Address
		req.Address = &addr
	}
	proj, err := h.projects.Create(ctx, req)
	if err != nil {
		return nil, ProjectResult{}, toolError(err)
	}
	return nil, toProjectResult(*proj), nil
}

func (h *handler) updateProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateProjectInput) (*sdkmcp.CallToolResult, ProjectResult, error) {
	if err := h.requireRegistry(); err != nil {
		return nil, ProjectResult{}, toolError(err)
	}
	patch := project.Patch{
		Title:        in.Title,
		Address:      in.Address,
		IsActive:     in.IsActive,
		Participants: toParticipants(in.Participants),
	}
	if in.FinishMode != nil {
		mode := catalog.Phase(*in.FinishMode)
		patch.FinishMode = &mode
	}
	ok, err := h.projects.Update(ctx, in.ID, patch)
	if err != nil {
		return nil, ProjectResult{}, toolError(err)
	}
	if !ok {
		return nil, ProjectResult{}, toolError(fmt.Errorf("%w: %s", project.ErrProjectNotFound, in.ID))
	}
	return h.getProjectResult(in.ID)
}

func (h *handler) getProject(_ context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDInput) (*sdkmcp.CallToolResult, ProjectResult, error) {
	if err := h.requireRegistry(); err != nil {
		return nil, ProjectResult{}, toolError(err)
	}
	return h.getProjectResult(in.ID)
}

func (h *handler) getProjectResult(id string) (*sdkmcp.CallToolResult, ProjectResult, error) {
	proj, err := h.projects.Get(id)
	if err != nil {
		return nil, ProjectResult{}, toolError(err)
	}
	return nil, toProjectResult(*proj), nil
}

func (h *handler) listProjects(_ context.Context, _ *sdkmcp.CallToolRequest, in ListProjectsInput) (*sdkmcp.CallToolResult, ProjectListResult, error) {
	if err := h.requireRegistry(); err != nil {
		return nil, ProjectListResult{}, toolError(err)
	}
	var list []project.Project
	switch in.Filter {
	case "", "all":
		list = h.projects.AllProjects()
	case "active":
		list = h.projects.ActiveProjects()
	case "archived":
		list = h.projects.ArchivedProjects()
	default:
		return nil, ProjectListResult{}, toolError(fmt.Errorf("%w: filter %q", project.ErrInvalidInput, in.Filter))
	}
	activeID := ""
	if active := h.projects.Active(); active != nil {
		activeID = active.ID
	}
	return nil, toProjectList(list, activeID), nil
}

func (h *handler) archiveProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDInput) (*sdkmcp.CallToolResult, ProjectResult, error) {
	if err := h.requireRegistry(); err != nil {
		return nil, ProjectResult{}, toolError(err)
	}
	if !h.projects.Archive(ctx, in.ID) {
		return nil, ProjectResult{}, toolError(fmt.Errorf("%w: %s", project.ErrProjectNotFound, in.ID))
	}
	return h.getProjectResult(in.ID)
}

func (h *handler) unarchiveProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDInput) (*sdkmcp.CallToolResult, ProjectResult, error) {
	if err := h.requireRegistry(); err != nil {
		return nil, ProjectResult{}, toolError(err)
	}
	if !h.projects.Unarchive(ctx, in.ID) {
		return nil, ProjectResult{}, toolError(fmt.Errorf("%w: %s", project.ErrProjectNotFound, in.ID))
	}
	return h.getProjectResult(in.ID)
}

func (h *handler) deleteProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDInput) (*sdkmcp.CallToolResult, AppliedResult, error) {
	if err := h.requireRegistry(); err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	return nil, AppliedResult{ProjectID: in.ID, Applied: h.projects.Delete(ctx, in.ID)}, nil
}

func (h *handler) setActiveProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in SetActiveProjectInput) (*sdkmcp.CallToolResult, ActiveProjectResult, error) {
	if err := h.requireRegistry(); err != nil {
		return nil, ActiveProjectResult{}, toolError(err)
	}
	if !h.projects.SetActive(ctx, in.ID) {
		return nil, ActiveProjectResult{}, toolError(fmt.Errorf("%w: %s", project.ErrProjectNotFound, in.ID))
	}
	return h.getActiveProject(ctx, nil, EmptyInput{})
}

func (h *handler) getActiveProject(_ context.Context, _ *sdkmcp.CallToolRequest, _ EmptyInput) (*sdkmcp.CallToolResult, ActiveProjectResult, error) {
	if err := h.requireRegistry(); err != nil {
		return nil, ActiveProjectResult{}, toolError(err)
	}
	out := ActiveProjectResult{Index: h.projects.ActiveIndex()}
	if active := h.projects.Active(); active != nil {
		res := toProjectResult(*active)
		out.Project = &res
	}
	return nil, out, nil
}

// Catalog and projection

func (h *handler) listCategories(_ context.Context, _ *sdkmcp.CallToolRequest, _ EmptyInput) (*sdkmcp.CallToolResult, CategoryListResult, error) {
	out := CategoryListResult{Version: h.cat.Version(), Categories: []CategorySummaryResult{}}
	for _, c := range h.cat.Categories() {
		out.Categories = append(out.Categories, CategorySummaryResult{
			ID:          c.ID,
			Title:       c.Title,
			DraftCount:  c.DraftCount,
			FinishCount: c.FinishCount,
		})
	}
	return nil, out, nil
}

// optionalProject resolves a project for read paths, where no project just
// means the plain catalog view.
func (h *handler) optionalProject(projectID string) (string, error) {
	pid, err := h.resolveProject(projectID)
	if errors.Is(err, checkpoint.ErrNoActiveProject) && strings.TrimSpace(projectID) == "" {
		return "", nil
	}
	return pid, err
}

func (h *handler) getCheckpoint(_ context.Context, _ *sdkmcp.CallToolRequest, in GetCheckpointInput) (*sdkmcp.CallToolResult, CheckpointResult, error) {
	pid, err := h.optionalProject(in.ProjectID)
	if err != nil {
		return nil, CheckpointResult{}, toolError(err)
	}
	eff, err := checkpoint.Lookup(h.cat, h.ledger, pid, in.CheckpointID)
	if err != nil {
		return nil, CheckpointResult{}, toolError(err)
	}
	return nil, toCheckpointResult(eff), nil
}

func (h *handler) listCategoryCheckpoints(_ context.Context, _ *sdkmcp.CallToolRequest, in ListCategoryInput) (*sdkmcp.CallToolResult, CategoryCheckpointsResult, error) {
	if !h.cat.HasCategory(in.CategoryID) {
		return nil, CategoryCheckpointsResult{}, toolError(fmt.Errorf("%w: %s", catalog.ErrCategoryNotFound, in.CategoryID))
	}
	phase, err := h.resolvePhase(in.Phase)
	if err != nil {
		return nil, CategoryCheckpointsResult{}, toolError(err)
	}
	pid, err := h.optionalProject(in.ProjectID)
	if err != nil {
		return nil, CategoryCheckpointsResult{}, toolError(err)
	}

	projected := checkpoint.ProjectCategory(h.cat, h.ledger, pid, in.CategoryID, phase)
	out := CategoryCheckpointsResult{
		ProjectID:   pid,
		CategoryID:  in.CategoryID,
		Phase:       string(phase),
		Checkpoints: make([]CheckpointResult, 0, len(projected)),
		Stats:       toCategoryStatsResult(checkpoint.CategoryStats(h.cat, h.ledger, pid, in.CategoryID, phase)),
	}
	for _, eff := range projected {
		out.Checkpoints = append(out.Checkpoints, toCheckpointResult(eff))
	}
	if latest := checkpoint.LastUpdated(projected); latest != nil {
		out.LastUpdated = formatTime(*latest)
	}
	return nil, out, nil
}

func (h *handler) searchCheckpoints(ctx context.Context, _ *sdkmcp.CallToolRequest, in SearchCheckpointsInput) (*sdkmcp.CallToolResult, SearchResultList, error) {
	if h.index == nil {
		return nil, SearchResultList{}, toolError(ErrSearchUnavailable)
	}
	opts := catalog.SearchOptions{CategoryID: in.CategoryID, Limit: in.Limit}
	if in.Phase != "" {
		phase, err := h.resolvePhase(in.Phase)
		if err != nil {
			return nil, SearchResultList{}, toolError(err)
		}
		opts.Phase = phase
	}
	hits, err := h.index.Search(ctx, in.Query, opts)
	if err != nil {
		return nil, SearchResultList{}, toolError(err)
	}
	return nil, toSearchResults(hits), nil
}

func (h *handler) categoryStats(_ context.Context, _ *sdkmcp.CallToolRequest, in CategoryStatsInput) (*sdkmcp.CallToolResult, CategoryStatsResult, error) {
	if !h.cat.HasCategory(in.CategoryID) {
		return nil, CategoryStatsResult{}, toolError(fmt.Errorf("%w: %s", catalog.ErrCategoryNotFound, in.CategoryID))
	}
	pid, err := h.resolveProject(in.ProjectID)
	if err != nil {
		return nil, CategoryStatsResult{}, toolError(err)
	}
	phase, err := h.resolvePhase(in.Phase)
	if err != nil {
		return nil, CategoryStatsResult{}, toolError(err)
	}
	return nil, toCategoryStatsResult(checkpoint.CategoryStats(h.cat, h.ledger, pid, in.CategoryID, phase)), nil
}

func (h *handler) projectStats(_ context.Context, _ *sdkmcp.CallToolRequest, in ProjectStatsInput) (*sdkmcp.CallToolResult, ProjectStatsResult, error) {
	pid, err := h.resolveProject(in.ProjectID)
	if err != nil {
		return nil, ProjectStatsResult{}, toolError(err)
	}
	phase, err := h.resolvePhase(in.Phase)
	if err != nil {
		return nil, ProjectStatsResult{}, toolError(err)
	}
	return nil, toProjectStatsResult(checkpoint.Stats(h.cat, h.ledger, pid, phase)), nil
}

// Ledger writes

func (h *handler) setStatus(ctx context.Context, _ *sdkmcp.CallToolRequest, in SetStatusInput) (*sdkmcp.CallToolResult, AppliedResult, error) {
	pid, cid, err := h.resolveCheckpoint(in.ProjectID, in.CheckpointID)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	status, err := checkpoint.ParseStatus(in.Status)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	if err := h.ledger.SetStatus(ctx, pid, cid, status); err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	return nil, AppliedResult{ProjectID: pid, CheckpointID: cid, Applied: true}, nil
}

func (h *handler) addPhoto(ctx context.Context, _ *sdkmcp.CallToolRequest, in PhotoInput) (*sdkmcp.CallToolResult, AppliedResult, error) {
	pid, cid, err := h.resolveCheckpoint(in.ProjectID, in.CheckpointID)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	if err := h.ledger.AddPhoto(ctx, pid, cid, in.URI); err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	return nil, AppliedResult{ProjectID: pid, CheckpointID: cid, Applied: true}, nil
}

func (h *handler) removePhoto(ctx context.Context, _ *sdkmcp.CallToolRequest, in PhotoInput) (*sdkmcp.CallToolResult, AppliedResult, error) {
	pid, cid, err := h.resolveCheckpoint(in.ProjectID, in.CheckpointID)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	removed, err := h.ledger.RemovePhoto(ctx, pid, cid, in.URI)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	return nil, AppliedResult{ProjectID: pid, CheckpointID: cid, Applied: removed}, nil
}

func (h *handler) setComment(ctx context.Context, _ *sdkmcp.CallToolRequest, in SetCommentInput) (*sdkmcp.CallToolResult, AppliedResult, error) {
	pid, cid, err := h.resolveCheckpoint(in.ProjectID, in.CheckpointID)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	if err := h.ledger.SetComment(ctx, pid, cid, in.Comment); err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	return nil, AppliedResult{ProjectID: pid, CheckpointID: cid, Applied: true}, nil
}

func (h *handler) setRoom(ctx context.Context, _ *sdkmcp.CallToolRequest, in SetRoomInput) (*sdkmcp.CallToolResult, AppliedResult, error) {
	pid, cid, err := h.resolveCheckpoint(in.ProjectID, in.CheckpointID)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	if err := h.ledger.SetRoom(ctx, pid, cid, in.Room); err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	return nil, AppliedResult{ProjectID: pid, CheckpointID: cid, Applied: true}, nil
}

func (h *handler) deleteOverlay(ctx context.Context, _ *sdkmcp.CallToolRequest, in CheckpointRefInput) (*sdkmcp.CallToolResult, AppliedResult, error) {
	pid, err := h.resolveProject(in.ProjectID)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	deleted, err := h.ledger.DeleteOverlay(ctx, pid, in.CheckpointID)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	return nil, AppliedResult{ProjectID: pid, CheckpointID: in.CheckpointID, Applied: deleted}, nil
}

func (h *handler) batchUpdate(ctx context.Context, _ *sdkmcp.CallToolRequest, in BatchUpdateInput) (*sdkmcp.CallToolResult, AppliedResult, error) {
	pid, err := h.resolveProject(in.ProjectID)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	updates := make([]checkpoint.OverlayUpdate, 0, len(in.Updates))
	for _, item := range in.Updates {
		if _, err := h.cat.Checkpoint(item.CheckpointID); err != nil {
			return nil, AppliedResult{}, toolError(err)
		}
		u := checkpoint.OverlayUpdate{
			CheckpointID: item.CheckpointID,
			UserPhotos:   item.UserPhotos,
			UserComment:  item.UserComment,
		}
		if item.Status != nil {
			status, err := checkpoint.ParseStatus(*item.Status)
			if err != nil {
				return nil, AppliedResult{}, toolError(err)
			}
			u.Status = &status
		}
		updates = append(updates, u)
	}
	if err := h.ledger.BatchUpdate(ctx, pid, updates); err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	return nil, AppliedResult{ProjectID: pid, Applied: len(updates) > 0}, nil
}

func (h *handler) replaceProjectOverlays(ctx context.Context, _ *sdkmcp.CallToolRequest, in ReplaceOverlaysInput) (*sdkmcp.CallToolResult, AppliedResult, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, AppliedResult{}, toolError(checkpoint.ErrNoActiveProject)
	}
	pid, err := h.resolveProject(in.ProjectID)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	overlays, err := toOverlays(in.Overlays)
	if err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	if err := h.ledger.ReplaceProjectOverlays(ctx, pid, overlays); err != nil {
		return nil, AppliedResult{}, toolError(err)
	}
	if h.projects != nil {
		h.projects.SetActive(ctx, pid)
	}
	return nil, AppliedResult{ProjectID: pid, Applied: true}, nil
}

func toOverlays(in map[string]OverlayInput) (map[string]checkpoint.Overlay, error) {
	out := make(map[string]checkpoint.Overlay, len(in))
	for id, raw := range in {
		status, err := checkpoint.ParseStatus(raw.Status)
		if err != nil {
			return nil, err
		}
		ov := checkpoint.Overlay{
			Status:      status,
			UserPhotos:  raw.UserPhotos,
			UserComment: raw.UserComment,
		}
		if raw.SelectedRoom != "" {
			room := raw.SelectedRoom
			ov.SelectedRoom = &room
		}
		if raw.Timestamp != "" {
			ts, err := time.Parse(time.RFC3339Nano, raw.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("%w: timestamp of %s: %v", checkpoint.ErrInvalidInput, id, err)
			}
			ov.Timestamp = ts
		}
		out[id] = ov
	}
	return out, nil
}

func (h *handler) clearLedger(ctx context.Context, _ *sdkmcp.CallToolRequest, in ClearLedgerInput) (*sdkmcp.CallToolResult, AppliedResult, error) {
	if !in.Confirm {
		return nil, AppliedResult{}, toolError(fmt.Errorf("%w: confirm must be true", checkpoint.ErrInvalidInput))
	}
	h.ledger.ClearAll(ctx)
	if h.projects != nil {
		h.projects.SetActive(ctx, "")
	}
	h.logger.Warn("checkpoint ledger cleared")
	return nil, AppliedResult{Applied: true}, nil
}

// Activity and preferences

func (h *handler) recentActivity(ctx context.Context, _ *sdkmcp.CallToolRequest, in RecentActivityInput) (*sdkmcp.CallToolResult, ActivityListResult, error) {
	if h.activity == nil {
		return nil, ActivityListResult{Entries: []ActivityResult{}}, nil
	}
	opts := activity.ListActivityOptions{
		ProjectID: in.ProjectID,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultActivityLimit
	}
	if in.CheckpointID != "" {
		cid := in.CheckpointID
		opts.CheckpointID = &cid
	}
	if in.Type != "" {
		typ := activity.ActivityType(in.Type)
		opts.ActivityType = &typ
	}
	entries, err := h.activity.GetRecentActivity(ctx, opts)
	if err != nil {
		return nil, ActivityListResult{}, toolError(err)
	}
	return nil, toActivityList(entries), nil
}

func (h *handler) getPreferences(_ context.Context, _ *sdkmcp.CallToolRequest, _ EmptyInput) (*sdkmcp.CallToolResult, PreferencesResult, error) {
	if h.prefs == nil {
		return nil, PreferencesResult{Phase: string(catalog.PhaseDraft)}, nil
	}
	state := h.prefs.Get()
	return nil, PreferencesResult{Phase: string(state.Phase), CategoryID: state.CategoryID}, nil
}

func (h *handler) setPreferences(ctx context.Context, req *sdkmcp.CallToolRequest, in SetPreferencesInput) (*sdkmcp.CallToolResult, PreferencesResult, error) {
	if h.prefs == nil {
		return nil, PreferencesResult{}, toolError(fmt.Errorf("%w: preferences not configured", checkpoint.ErrInvalidInput))
	}
	if in.Phase != nil {
		if err := h.prefs.SetPhase(ctx, catalog.Phase(*in.Phase)); err != nil {
			return nil, PreferencesResult{}, toolError(err)
		}
	}
	if in.CategoryID != nil {
		if err := h.prefs.SetCategory(ctx, *in.CategoryID); err != nil {
			return nil, PreferencesResult{}, toolError(err)
		}
	}
	return h.getPreferences(ctx, req, EmptyInput{})
}
