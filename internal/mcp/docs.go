package mcp

import (
	"context"
	"encoding/json"

	"github.com/ganot/punchlist/internal/domain/catalog"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const catalogResourceURI = "punchlist://catalog"

const serverInstructions = `punchlist records apartment inspection results against a fixed checkpoint catalog.

Core concepts:
- Catalog: read-only checkpoints grouped by category, each category split into a draft and a finish phase.
- Project: one apartment under inspection. Exactly one project may be active.
- Overlay: the sparse per-project edit of a checkpoint (status, photos, comment, room). Untouched checkpoints have no overlay.
- Effective checkpoint: catalog definition merged with its overlay on every read.

Default workflow:
1) Orient: get_active_project, or list_projects then set_active_project. Create one with create_project.
2) Browse: list_categories, list_category_checkpoints, search_checkpoints, get_checkpoint.
3) Record: set_status / add_photo / set_comment / set_room, or batch_update for several checkpoints at once.
4) Review: category_stats and project_stats; get_recent_activity for the audit trail.

Write tools accept project_id; when omitted they target the active project and fail with NO_ACTIVE_PROJECT if none is set.

Docs:
- punchlist://docs/index
- punchlist://docs/precedence
- punchlist://catalog (full catalog as JSON)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "punchlist://docs/index",
		Name:        "docs_index",
		Title:       "punchlist docs index",
		Description: "Entry point: tool groups and what to read when.",
		Content: `# punchlist: Agent Docs Index

## Tool groups

- Projects: ` + "`create_project`, `update_project`, `archive_project`, `unarchive_project`, `delete_project`, `get_project`, `list_projects`, `set_active_project`, `get_active_project`" + `.
- Catalog: ` + "`list_categories`, `list_category_checkpoints`, `get_checkpoint`, `search_checkpoints`" + `.
- Ledger: ` + "`set_status`, `add_photo`, `remove_photo`, `set_comment`, `set_room`, `delete_overlay`, `batch_update`, `replace_project_overlays`, `clear_ledger`" + `.
- Review: ` + "`category_stats`, `project_stats`, `get_recent_activity`, `get_preferences`, `set_preferences`" + `.

## Behaviour worth knowing

- ` + "`delete_project`" + ` also removes every overlay of that project.
- ` + "`remove_photo`" + ` on an untouched checkpoint changes nothing and reports applied=false.
- ` + "`add_photo`" + ` keeps duplicates; photos stay in insertion order.
- Progress counts only complies and defect; not_inspected is not progress.
- ` + "`replace_project_overlays`" + ` is the restore path for exported data and also makes the project active.
- ` + "`clear_ledger`" + ` wipes every project's overlays and requires confirm=true.

## Docs

- ` + "`punchlist://docs/precedence`" + ` for how overlays merge onto definitions.
- ` + "`punchlist://catalog`" + ` for the whole catalog in one read.
`,
	},
	{
		URI:         "punchlist://docs/precedence",
		Name:        "docs_precedence",
		Title:       "Overlay precedence",
		Description: "Per-field rules for merging an overlay onto a checkpoint definition.",
		Content: `# Overlay precedence

| Field | Source | Without overlay |
|---|---|---|
| id, title, description, tolerance, method, standard_reference, violation_text, hint, reference_image_url | definition only | definition |
| status | overlay | absent (never touched) |
| user_photos | overlay | empty list |
| user_comment | overlay | empty string |
| selected_room | overlay | absent |
| updated_at | overlay timestamp | absent |

Overlays never change definition fields. A definition removed from the catalog
is skipped on read even if an overlay still references it.
`,
	},
}

type catalogDocument struct {
	Version     string                         `json:"version"`
	Categories  []catalog.CategorySummary      `json:"categories"`
	Checkpoints []catalog.CheckpointDefinition `json:"checkpoints"`
}

func registerDocResources(server *sdkmcp.Server, cat *catalog.Catalog) {
	for _, doc := range docResources {
		addTextResource(server, doc, "text/markdown")
	}
	if cat == nil {
		return
	}
	data, err := json.Marshal(catalogDocument{
		Version:     cat.Version(),
		Categories:  cat.Categories(),
		Checkpoints: cat.Checkpoints(),
	})
	if err != nil {
		return
	}
	addTextResource(server, docResource{
		URI:         catalogResourceURI,
		Name:        "catalog",
		Title:       "Checkpoint catalog",
		Description: "Every checkpoint definition with its category and phase.",
		Content:     string(data),
	}, "application/json")
}

func addTextResource(server *sdkmcp.Server, doc docResource, mimeType string) {
	server.AddResource(&sdkmcp.Resource{
		URI:         doc.URI,
		Name:        doc.Name,
		Title:       doc.Title,
		Description: doc.Description,
		MIMEType:    mimeType,
		Size:        int64(len(doc.Content)),
	}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		uri := doc.URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{{
				URI:      uri,
				MIMEType: mimeType,
				Text:     doc.Content,
			}},
		}, nil
	})
}
