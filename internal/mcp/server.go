package mcp

import (
	"context"
	"log/slog"

	"github.com/ganot/punchlist/internal/domain/activity"
	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/domain/checkpoint"
	"github.com/ganot/punchlist/internal/domain/preferences"
	"github.com/ganot/punchlist/internal/domain/project"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectService defines registry operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Get(id string) (*project.Project, error)
	Update(ctx context.Context, id string, patch project.Patch) (bool, error)
	Archive(ctx context.Context, id string) bool
	Unarchive(ctx context.Context, id string) bool
	Delete(ctx context.Context, id string) bool
	SetActive(ctx context.Context, id string) bool
	Active() *project.Project
	ActiveIndex() int
	ActiveProjects() []project.Project
	ArchivedProjects() []project.Project
	AllProjects() []project.Project
}

// LedgerService defines checkpoint ledger operations needed by MCP.
type LedgerService interface {
	checkpoint.OverlaySource
	ActiveProject() string
	SetStatus(ctx context.Context, projectID, checkpointID string, status checkpoint.Status) error
	AddPhoto(ctx context.Context, projectID, checkpointID, uri string) error
	RemovePhoto(ctx context.Context, projectID, checkpointID, uri string) (bool, error)
	SetComment(ctx context.Context, projectID, checkpointID, text string) error
	SetRoom(ctx context.Context, projectID, checkpointID, room string) error
	DeleteOverlay(ctx context.Context, projectID, checkpointID string) (bool, error)
	ReplaceProjectOverlays(ctx context.Context, projectID string, overlays map[string]checkpoint.Overlay) error
	BatchUpdate(ctx context.Context, projectID string, updates []checkpoint.OverlayUpdate) error
	ClearAll(ctx context.Context)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// PreferenceService defines ui-store operations needed by MCP.
type PreferenceService interface {
	Get() preferences.State
	SetPhase(ctx context.Context, phase catalog.Phase) error
	SetCategory(ctx context.Context, categoryID string) error
}

// Services contains all domain services needed by MCP.
type Services struct {
	Catalog     *catalog.Catalog
	Ledger      LedgerService
	Projects    ProjectService
	Activity    ActivityService
	Preferences PreferenceService
	Index       catalog.Index
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "punchlist",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server, cfg.Services.Catalog)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, newHandler(cfg.Services, logger.With("transport", cfg.TransportMode)))

	return server
}
