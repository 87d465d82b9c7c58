package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ganot/punchlist/internal/domain/activity"
	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/domain/checkpoint"
	"github.com/ganot/punchlist/internal/domain/preferences"
	"github.com/ganot/punchlist/internal/domain/project"
	"github.com/ganot/punchlist/internal/mcp"
	"github.com/ganot/punchlist/internal/persist"
	"github.com/ganot/punchlist/internal/sqlite"
)

// Options selects the storage and catalog behind an App.
type Options struct {
	// DBPath is the SQLite file. ":memory:" and shared-cache URIs work too.
	DBPath string
	// Ephemeral keeps the state stores in memory. Activity and search still
	// use a private in-memory database.
	Ephemeral bool
	// CatalogPath replaces the embedded catalog when set.
	CatalogPath string
	Logger      *slog.Logger
}

// App is the fully wired set of domain services.
type App struct {
	Catalog     *catalog.Catalog
	Ledger      *checkpoint.Ledger
	Projects    *project.Service
	Preferences *preferences.Service
	Activity    *activity.Service
	Index       *sqlite.CatalogIndex

	db *sqlite.DB
}

// Open loads the catalog, opens storage, wires every service and hydrates
// persisted state. A store that cannot be read is logged and left empty; the
// next write replaces it.
func Open(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cat, err := loadCatalog(opts.CatalogPath)
	if err != nil {
		return nil, err
	}

	dsn := opts.DBPath
	if opts.Ephemeral {
		dsn = ":memory:"
	}
	if err := ensureDBDir(dsn); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(dsn)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	var store persist.Store = sqlite.NewKVStore(db)
	if opts.Ephemeral {
		store = persist.NewMemoryStore()
	}

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)

	ledger := checkpoint.NewLedger(logger,
		checkpoint.WithMirror(persist.NewMirror[checkpoint.State](store, persist.KeyCheckpoints, checkpoint.StateVersion, logger)),
		checkpoint.WithRecorder(activitySvc),
	)
	projects := project.NewService(logger,
		project.WithMirror(persist.NewMirror[project.State](store, persist.KeyProjects, project.StateVersion, logger)),
		project.WithOverlayPurger(ledger),
		project.WithActiveListener(ledger),
		project.WithRecorder(activitySvc),
	)
	prefs := preferences.NewService(cat,
		persist.NewMirror[preferences.State](store, persist.KeyUI, preferences.StateVersion, logger),
		logger,
	)

	a := &App{
		Catalog:     cat,
		Ledger:      ledger,
		Projects:    projects,
		Preferences: prefs,
		Activity:    activitySvc,
		Index:       sqlite.NewCatalogIndex(db),
		db:          db,
	}

	loaders := []struct {
		key  string
		load func(context.Context) error
	}{
		{persist.KeyCheckpoints, ledger.Load},
		{persist.KeyProjects, projects.Load},
		{persist.KeyUI, prefs.Load},
	}
	for _, l := range loaders {
		if err := l.load(ctx); err != nil {
			logger.Error("persisted state unreadable, starting empty", "key", l.key, "error", err)
		}
	}
	// The registry owns the active pointer; the ledger follows it.
	activeID := ""
	if active := projects.Active(); active != nil {
		activeID = active.ID
	}
	ledger.SetActiveProject(ctx, activeID)
	if err := a.Index.Rebuild(ctx, cat); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("punchlist ready",
		"catalog_version", cat.Version(),
		"checkpoints", cat.Len(),
		"projects", len(projects.AllProjects()),
		"ephemeral", opts.Ephemeral,
	)
	return a, nil
}

// Services exposes the app to the MCP server.
func (a *App) Services() mcp.Services {
	return mcp.Services{
		Catalog:     a.Catalog,
		Ledger:      a.Ledger,
		Projects:    a.Projects,
		Activity:    a.Activity,
		Preferences: a.Preferences,
		Index:       a.Index,
	}
}

// Close releases the database.
func (a *App) Close() error {
	return a.db.Close()
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func ensureDBDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
