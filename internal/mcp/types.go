package mcp

import (
	"time"

	"github.com/ganot/punchlist/internal/domain/activity"
	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/domain/checkpoint"
	"github.com/ganot/punchlist/internal/domain/project"
)

// Inputs

type EmptyInput struct{}

type ParticipantInput struct {
	Name string `json:"name" jsonschema:"participant name"`
	Role string `json:"role,omitempty" jsonschema:"optional role such as buyer or inspector"`
}

type CreateProjectInput struct {
	Title        string             `json:"title" jsonschema:"project title"`
	Address      string             `json:"address,omitempty" jsonschema:"optional apartment address"`
	FinishMode   string             `json:"finish_mode,omitempty" jsonschema:"draft or finish; defaults to draft"`
	Participants []ParticipantInput `json:"participants,omitempty" jsonschema:"people attending the inspection"`
}

type UpdateProjectInput struct {
	ID           string             `json:"id" jsonschema:"project id"`
	Title        *string            `json:"title,omitempty" jsonschema:"new title"`
	Address      *string            `json:"address,omitempty" jsonschema:"new address; empty string clears it"`
	IsActive     *bool              `json:"is_active,omitempty" jsonschema:"whether the project is in use"`
	FinishMode   *string            `json:"finish_mode,omitempty" jsonschema:"draft or finish"`
	Participants []ParticipantInput `json:"participants,omitempty" jsonschema:"replaces the participant list"`
}

type ProjectIDInput struct {
	ID string `json:"id" jsonschema:"project id"`
}

type ListProjectsInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"active, archived or all; defaults to all"`
}

type SetActiveProjectInput struct {
	ID string `json:"id,omitempty" jsonschema:"project id; omit to clear the active project"`
}

type GetCheckpointInput struct {
	CheckpointID string `json:"checkpoint_id" jsonschema:"catalog checkpoint id"`
	ProjectID    string `json:"project_id,omitempty" jsonschema:"project id; defaults to the active project"`
}

type ListCategoryInput struct {
	CategoryID string `json:"category_id" jsonschema:"catalog category id"`
	Phase      string `json:"phase,omitempty" jsonschema:"draft or finish; defaults to the selected phase"`
	ProjectID  string `json:"project_id,omitempty" jsonschema:"project id; defaults to the active project"`
}

type SearchCheckpointsInput struct {
	Query      string `json:"query" jsonschema:"full-text query over title, description, violation text and hint"`
	CategoryID string `json:"category_id,omitempty" jsonschema:"restrict to one category"`
	Phase      string `json:"phase,omitempty" jsonschema:"restrict to draft or finish"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
}

type SetStatusInput struct {
	ProjectID    string `json:"project_id,omitempty" jsonschema:"project id; defaults to the active project"`
	CheckpointID string `json:"checkpoint_id" jsonschema:"catalog checkpoint id"`
	Status       string `json:"status" jsonschema:"complies, defect, not_inspected or null"`
}

type PhotoInput struct {
	ProjectID    string `json:"project_id,omitempty" jsonschema:"project id; defaults to the active project"`
	CheckpointID string `json:"checkpoint_id" jsonschema:"catalog checkpoint id"`
	URI          string `json:"uri" jsonschema:"photo uri"`
}

type SetCommentInput struct {
	ProjectID    string `json:"project_id,omitempty" jsonschema:"project id; defaults to the active project"`
	CheckpointID string `json:"checkpoint_id" jsonschema:"catalog checkpoint id"`
	Comment      string `json:"comment" jsonschema:"comment text; empty clears it"`
}

type SetRoomInput struct {
	ProjectID    string `json:"project_id,omitempty" jsonschema:"project id; defaults to the active project"`
	CheckpointID string `json:"checkpoint_id" jsonschema:"catalog checkpoint id"`
	Room         string `json:"room,omitempty" jsonschema:"room name; omit to clear"`
}

type CheckpointRefInput struct {
	ProjectID    string `json:"project_id,omitempty" jsonschema:"project id; defaults to the active project"`
	CheckpointID string `json:"checkpoint_id" jsonschema:"catalog checkpoint id"`
}

type BatchItemInput struct {
	CheckpointID string   `json:"checkpoint_id" jsonschema:"catalog checkpoint id"`
	Status       *string  `json:"status,omitempty" jsonschema:"complies, defect, not_inspected or null"`
	UserPhotos   []string `json:"user_photos,omitempty" jsonschema:"replaces the photo list"`
	UserComment  *string  `json:"user_comment,omitempty" jsonschema:"replaces the comment"`
}

type BatchUpdateInput struct {
	ProjectID string           `json:"project_id,omitempty" jsonschema:"project id; defaults to the active project"`
	Updates   []BatchItemInput `json:"updates" jsonschema:"partial updates applied together"`
}

type OverlayInput struct {
	Status       string   `json:"status,omitempty" jsonschema:"complies, defect, not_inspected or empty"`
	UserPhotos   []string `json:"user_photos,omitempty" jsonschema:"photo uris in order"`
	UserComment  string   `json:"user_comment,omitempty" jsonschema:"comment text"`
	SelectedRoom string   `json:"selected_room,omitempty" jsonschema:"room name"`
	Timestamp    string   `json:"timestamp,omitempty" jsonschema:"RFC3339 time of the last edit"`
}

type ReplaceOverlaysInput struct {
	ProjectID string                  `json:"project_id" jsonschema:"project whose overlays are replaced"`
	Overlays  map[string]OverlayInput `json:"overlays" jsonschema:"overlays keyed by checkpoint id"`
}

type ClearLedgerInput struct {
	Confirm bool `json:"confirm" jsonschema:"must be true; wipes every overlay of every project"`
}

type CategoryStatsInput struct {
	ProjectID  string `json:"project_id,omitempty" jsonschema:"project id; defaults to the active project"`
	CategoryID string `json:"category_id" jsonschema:"catalog category id"`
	Phase      string `json:"phase,omitempty" jsonschema:"draft or finish; defaults to the selected phase"`
}

type ProjectStatsInput struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"project id; defaults to the active project"`
	Phase     string `json:"phase,omitempty" jsonschema:"draft or finish; defaults to the selected phase"`
}

type RecentActivityInput struct {
	ProjectID    string `json:"project_id,omitempty" jsonschema:"filter by project"`
	CheckpointID string `json:"checkpoint_id,omitempty" jsonschema:"filter by checkpoint"`
	Type         string `json:"type,omitempty" jsonschema:"filter by activity type"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of entries; defaults to 50"`
	Offset       int    `json:"offset,omitempty" jsonschema:"offset for pagination"`
}

type SetPreferencesInput struct {
	Phase      *string `json:"phase,omitempty" jsonschema:"draft or finish"`
	CategoryID *string `json:"category_id,omitempty" jsonschema:"selected category; empty string clears it"`
}

// Outputs

type ParticipantResult struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type ProjectResult struct {
	ID           string              `json:"id" jsonschema:"project id"`
	Title        string              `json:"title" jsonschema:"project title"`
	Address      string              `json:"address,omitempty" jsonschema:"apartment address"`
	CreatedAt    string              `json:"created_at" jsonschema:"RFC3339 creation time"`
	UpdatedAt    string              `json:"updated_at" jsonschema:"RFC3339 time of the last update"`
	IsActive     bool                `json:"is_active" jsonschema:"whether the project is in use"`
	IsArchived   bool                `json:"is_archived" jsonschema:"whether the project is archived"`
	FinishMode   string              `json:"finish_mode" jsonschema:"draft or finish"`
	Participants []ParticipantResult `json:"participants" jsonschema:"people attending the inspection"`
}

type ProjectListResult struct {
	Projects        []ProjectResult `json:"projects"`
	ActiveProjectID string          `json:"active_project_id,omitempty"`
}

type ActiveProjectResult struct {
	Project *ProjectResult `json:"project,omitempty" jsonschema:"active project, absent when none"`
	Index   int            `json:"index" jsonschema:"position in the full project list, -1 when none"`
}

type AppliedResult struct {
	ProjectID    string `json:"project_id,omitempty"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
	Applied      bool   `json:"applied" jsonschema:"false when the call changed nothing"`
}

type CheckpointResult struct {
	ID                string   `json:"id"`
	CategoryID        string   `json:"category_id"`
	Phase             string   `json:"phase"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	Tolerance         string   `json:"tolerance,omitempty"`
	Method            string   `json:"method,omitempty"`
	StandardReference string   `json:"standard_reference,omitempty"`
	ViolationText     string   `json:"violation_text,omitempty"`
	Hint              string   `json:"hint,omitempty"`
	ReferenceImageURL string   `json:"reference_image_url,omitempty"`
	Status            string   `json:"status,omitempty" jsonschema:"absent when never touched"`
	UserPhotos        []string `json:"user_photos"`
	UserComment       string   `json:"user_comment"`
	SelectedRoom      string   `json:"selected_room,omitempty"`
	UpdatedAt         string   `json:"updated_at,omitempty"`
	Touched           bool     `json:"touched" jsonschema:"whether the project has an overlay for this checkpoint"`
}

type CategoryStatsResult struct {
	CategoryID string `json:"category_id"`
	Phase      string `json:"phase"`
	Total      int    `json:"total"`
	Completed  int    `json:"completed"`
	Defects    int    `json:"defects"`
	Percentage int    `json:"percentage"`
}

type CategoryCheckpointsResult struct {
	ProjectID   string              `json:"project_id,omitempty"`
	CategoryID  string              `json:"category_id"`
	Phase       string              `json:"phase"`
	Checkpoints []CheckpointResult  `json:"checkpoints"`
	Stats       CategoryStatsResult `json:"stats"`
	LastUpdated string              `json:"last_updated,omitempty"`
}

type ProjectStatsResult struct {
	ProjectID  string                `json:"project_id"`
	Phase      string                `json:"phase"`
	Total      int                   `json:"total"`
	Completed  int                   `json:"completed"`
	Defects    int                   `json:"defects"`
	Percentage int                   `json:"percentage"`
	Categories []CategoryStatsResult `json:"categories"`
}

type CategorySummaryResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	DraftCount  int    `json:"draft_count"`
	FinishCount int    `json:"finish_count"`
}

type CategoryListResult struct {
	Version    string                  `json:"version"`
	Categories []CategorySummaryResult `json:"categories"`
}

type SearchHitResult struct {
	CheckpointID string  `json:"checkpoint_id"`
	CategoryID   string  `json:"category_id"`
	Phase        string  `json:"phase"`
	Title        string  `json:"title"`
	Snippet      string  `json:"snippet,omitempty"`
	Rank         float64 `json:"rank"`
}

type SearchResultList struct {
	Results []SearchHitResult `json:"results"`
}

type ActivityResult struct {
	ID           int64  `json:"id"`
	ProjectID    string `json:"project_id"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
	Type         string `json:"type"`
	Summary      string `json:"summary"`
	Details      string `json:"details,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type ActivityListResult struct {
	Entries []ActivityResult `json:"entries"`
}

type PreferencesResult struct {
	Phase      string `json:"phase"`
	CategoryID string `json:"category_id,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toProjectResult(p project.Project) ProjectResult {
	out := ProjectResult{
		ID:           p.ID,
		Title:        p.Title,
		CreatedAt:    formatTime(p.CreatedAt),
		UpdatedAt:    formatTime(p.UpdatedAt),
		IsActive:     p.IsActive,
		IsArchived:   p.IsArchived,
		FinishMode:   string(p.FinishMode),
		Participants: make([]ParticipantResult, 0, len(p.Participants)),
	}
	if p.Address != nil {
		out.Address = *p.Address
	}
	for _, part := range p.Participants {
		out.Participants = append(out.Participants, ParticipantResult{Name: part.Name, Role: part.Role})
	}
	return out
}

func toProjectList(projects []project.Project, activeID string) ProjectListResult {
	out := ProjectListResult{Projects: make([]ProjectResult, 0, len(projects)), ActiveProjectID: activeID}
	for _, p := range projects {
		out.Projects = append(out.Projects, toProjectResult(p))
	}
	return out
}

func toParticipants(in []ParticipantInput) []project.Participant {
	if in == nil {
		return nil
	}
	out := make([]project.Participant, 0, len(in))
	for _, p := range in {
		out = append(out, project.Participant{Name: p.Name, Role: p.Role})
	}
	return out
}

func toCheckpointResult(eff checkpoint.EffectiveCheckpoint) CheckpointResult {
	out := CheckpointResult{
		ID:                eff.ID,
		CategoryID:        eff.CategoryID,
		Phase:             string(eff.Phase),
		Title:             eff.Title,
		Description:       eff.Description,
		Tolerance:         eff.Tolerance,
		Method:            eff.Method,
		StandardReference: eff.StandardReference,
		ViolationText:     eff.ViolationText,
		Hint:              eff.Hint,
		Status:            string(eff.Status),
		UserPhotos:        append([]string{}, eff.UserPhotos...),
		UserComment:       eff.UserComment,
		Touched:           eff.Touched,
	}
	if eff.ReferenceImageURL != nil {
		out.ReferenceImageURL = *eff.ReferenceImageURL
	}
	if eff.SelectedRoom != nil {
		out.SelectedRoom = *eff.SelectedRoom
	}
	if eff.UpdatedAt != nil {
		out.UpdatedAt = formatTime(*eff.UpdatedAt)
	}
	return out
}

func toCategoryStatsResult(s checkpoint.CategoryProgress) CategoryStatsResult {
	return CategoryStatsResult{
		CategoryID: s.CategoryID,
		Phase:      string(s.Phase),
		Total:      s.Total,
		Completed:  s.Completed,
		Defects:    s.Defects,
		Percentage: s.Percentage,
	}
}

func toProjectStatsResult(s checkpoint.ProjectStats) ProjectStatsResult {
	out := ProjectStatsResult{
		ProjectID:  s.ProjectID,
		Phase:      string(s.Phase),
		Total:      s.Total,
		Completed:  s.Completed,
		Defects:    s.Defects,
		Percentage: s.Percentage,
		Categories: make([]CategoryStatsResult, 0, len(s.Categories)),
	}
	for _, c := range s.Categories {
		out.Categories = append(out.Categories, toCategoryStatsResult(c))
	}
	return out
}

func toSearchResults(hits []catalog.SearchResult) SearchResultList {
	out := SearchResultList{Results: make([]SearchHitResult, 0, len(hits))}
	for _, h := range hits {
		out.Results = append(out.Results, SearchHitResult{
			CheckpointID: h.CheckpointID,
			CategoryID:   h.CategoryID,
			Phase:        string(h.Phase),
			Title:        h.Title,
			Snippet:      h.Snippet,
			Rank:         h.Rank,
		})
	}
	return out
}

func toActivityList(entries []activity.ActivityEntry) ActivityListResult {
	out := ActivityListResult{Entries: make([]ActivityResult, 0, len(entries))}
	for _, e := range entries {
		r := ActivityResult{
			ID:        e.ID,
			ProjectID: e.ProjectID,
			Type:      string(e.ActivityType),
			Summary:   e.Summary,
			Details:   e.Details,
			CreatedAt: formatTime(e.CreatedAt),
		}
		if e.CheckpointID != nil {
			r.CheckpointID = *e.CheckpointID
		}
		out.Entries = append(out.Entries, r)
	}
	return out
}
