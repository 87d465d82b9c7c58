package mcp

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools adds every tool to the server.
func registerTools(server *sdkmcp.Server, h *handler) {
	// Projects
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create an inspection project and make it the active one",
	}, h.createProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_project",
		Description: "Patch project fields; omitted fields are left unchanged",
	}, h.updateProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "archive_project",
		Description: "Mark a project archived",
	}, h.archiveProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "unarchive_project",
		Description: "Clear the archived flag of a project",
	}, h.unarchiveProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Delete a project together with all of its checkpoint overlays",
	}, h.deleteProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get one project by id",
	}, h.getProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List projects, optionally filtered to active or archived ones",
	}, h.listProjects)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_active_project",
		Description: "Select the project that write tools target by default",
	}, h.setActiveProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_active_project",
		Description: "Get the active project and its position in the project list",
	}, h.getActiveProject)

	// Catalog
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_categories",
		Description: "List catalog categories with draft and finish checkpoint counts",
	}, h.listCategories)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_checkpoint",
		Description: "Get one checkpoint merged with the project's overlay",
	}, h.getCheckpoint)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_category_checkpoints",
		Description: "List the effective checkpoints of a category and phase in catalog order, with stats",
	}, h.listCategoryCheckpoints)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "search_checkpoints",
		Description: "Full-text search over checkpoint titles, descriptions, violation texts and hints",
	}, h.searchCheckpoints)

	// Ledger
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_status",
		Description: "Set the inspection status of a checkpoint",
	}, h.setStatus)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_photo",
		Description: "Append a photo uri to a checkpoint",
	}, h.addPhoto)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_photo",
		Description: "Remove a photo uri from a checkpoint",
	}, h.removePhoto)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_comment",
		Description: "Set the free-text comment of a checkpoint",
	}, h.setComment)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_room",
		Description: "Set or clear the room a checkpoint was inspected in",
	}, h.setRoom)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_overlay",
		Description: "Reset a checkpoint to its catalog definition",
	}, h.deleteOverlay)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "batch_update",
		Description: "Apply partial updates to several checkpoints in one write",
	}, h.batchUpdate)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "replace_project_overlays",
		Description: "Replace every overlay of a project, used to restore exported data",
	}, h.replaceProjectOverlays)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "clear_ledger",
		Description: "Delete every overlay of every project",
	}, h.clearLedger)

	// Review
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "category_stats",
		Description: "Completion stats of one category and phase",
	}, h.categoryStats)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "project_stats",
		Description: "Completion stats of every category of a phase",
	}, h.projectStats)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "List recent ledger and project changes, newest first",
	}, h.recentActivity)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_preferences",
		Description: "Get the selected phase and category",
	}, h.getPreferences)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_preferences",
		Description: "Change the selected phase and category",
	}, h.setPreferences)
}
