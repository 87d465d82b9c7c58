// Package transfer moves one project's checkpoint overlays in and out of the
// ledger as a JSON bundle.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/domain/checkpoint"
	"github.com/ganot/punchlist/internal/domain/project"
)

// FormatVersion is the bundle layout written by Export.
const FormatVersion = 1

// ErrInvalidBundle is returned for bundles that cannot be imported.
var ErrInvalidBundle = errors.New("invalid bundle")

// Bundle is the exported form of one project.
type Bundle struct {
	Version        int                           `json:"version"`
	ExportedAt     time.Time                     `json:"exported_at"`
	CatalogVersion string                        `json:"catalog_version"`
	Project        *project.Project              `json:"project,omitempty"`
	Overlays       map[string]checkpoint.Overlay `json:"overlays"`
}

// Registry is the part of the project registry used by transfers.
type Registry interface {
	Get(id string) (*project.Project, error)
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	SetActive(ctx context.Context, id string) bool
}

// Ledger is the part of the checkpoint ledger used by transfers.
type Ledger interface {
	ProjectOverlays(projectID string) map[string]checkpoint.Overlay
	ReplaceProjectOverlays(ctx context.Context, projectID string, overlays map[string]checkpoint.Overlay) error
}

// Export captures the overlays of projectID.
func Export(reg Registry, ledger Ledger, cat *catalog.Catalog, projectID string, now time.Time) (Bundle, error) {
	proj, err := reg.Get(projectID)
	if err != nil {
		return Bundle{}, err
	}
	b := Bundle{
		Version:    FormatVersion,
		ExportedAt: now.UTC(),
		Project:    proj,
		Overlays:   ledger.ProjectOverlays(projectID),
	}
	if cat != nil {
		b.CatalogVersion = cat.Version()
	}
	if b.Overlays == nil {
		b.Overlays = map[string]checkpoint.Overlay{}
	}
	return b, nil
}

// Write encodes b as indented JSON.
func Write(w io.Writer, b Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return nil
}

// Read decodes a bundle and checks its version.
func Read(r io.Reader) (Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if b.Version < 1 || b.Version > FormatVersion {
		return Bundle{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidBundle, b.Version)
	}
	return b, nil
}

// ImportResult describes a finished import.
type ImportResult struct {
	ProjectID string
	Created   bool
	Overlays  int
	// Unknown lists overlay ids the current catalog does not define. They are
	// kept but never projected.
	Unknown []string
}

// Import replaces the overlays of a project with the bundle contents and
// makes it active. targetID overrides the bundled project id. When the target
// does not exist and the bundle carries a project, a new project is created
// from it.
func Import(ctx context.Context, reg Registry, ledger Ledger, cat *catalog.Catalog, b Bundle, targetID string) (ImportResult, error) {
	if targetID == "" && b.Project != nil {
		targetID = b.Project.ID
	}

	var res ImportResult
	_, err := reg.Get(targetID)
	switch {
	case err == nil:
		res.ProjectID = targetID
	case errors.Is(err, project.ErrProjectNotFound) && b.Project != nil:
		created, err := reg.Create(ctx, project.CreateRequest{
			Title:        b.Project.Title,
			Address:      b.Project.Address,
			FinishMode:   b.Project.FinishMode,
			Participants: b.Project.Participants,
		})
		if err != nil {
			return ImportResult{}, err
		}
		res.ProjectID = created.ID
		res.Created = true
	default:
		return ImportResult{}, err
	}

	if err := ledger.ReplaceProjectOverlays(ctx, res.ProjectID, b.Overlays); err != nil {
		return ImportResult{}, err
	}
	reg.SetActive(ctx, res.ProjectID)

	res.Overlays = len(b.Overlays)
	if cat != nil {
		for id := range b.Overlays {
			if _, err := cat.Checkpoint(id); err != nil {
				res.Unknown = append(res.Unknown, id)
			}
		}
		sort.Strings(res.Unknown)
	}
	return res, nil
}
