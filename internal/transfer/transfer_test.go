package transfer_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/domain/checkpoint"
	"github.com/ganot/punchlist/internal/domain/project"
	"github.com/ganot/punchlist/internal/transfer"
	"github.com/stretchr/testify/require"
)

type services struct {
	cat      *catalog.Catalog
	ledger   *checkpoint.Ledger
	projects *project.Service
}

func newServices(t *testing.T) services {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	ledger := checkpoint.NewLedger(nil)
	projects := project.NewService(nil, project.WithActiveListener(ledger), project.WithOverlayPurger(ledger))
	return services{cat: cat, ledger: ledger, projects: projects}
}

func TestExportImport_NewInstall(t *testing.T) {
	ctx := context.Background()
	src := newServices(t)

	addr := "Main st 1"
	proj, err := src.projects.Create(ctx, project.CreateRequest{Title: "Flat 5", Address: &addr})
	require.NoError(t, err)
	require.NoError(t, src.ledger.SetStatus(ctx, proj.ID, "floor-screed-level", checkpoint.StatusDefect))
	require.NoError(t, src.ledger.AddPhoto(ctx, proj.ID, "floor-screed-level", "photo://1"))
	require.NoError(t, src.ledger.SetStatus(ctx, proj.ID, "walls-plaster-vertical", checkpoint.StatusComplies))

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bundle, err := transfer.Export(src.projects, src.ledger, src.cat, proj.ID, now)
	require.NoError(t, err)
	require.Equal(t, transfer.FormatVersion, bundle.Version)
	require.Equal(t, src.cat.Version(), bundle.CatalogVersion)
	require.Len(t, bundle.Overlays, 2)

	var buf bytes.Buffer
	require.NoError(t, transfer.Write(&buf, bundle))
	decoded, err := transfer.Read(&buf)
	require.NoError(t, err)

	dst := newServices(t)
	res, err := transfer.Import(ctx, dst.projects, dst.ledger, dst.cat, decoded, "")
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, 2, res.Overlays)
	require.Empty(t, res.Unknown)

	imported, err := dst.projects.Get(res.ProjectID)
	require.NoError(t, err)
	require.Equal(t, "Flat 5", imported.Title)
	require.Equal(t, "Main st 1", *imported.Address)
	require.Equal(t, res.ProjectID, dst.ledger.ActiveProject())

	srcStats := checkpoint.Stats(src.cat, src.ledger, proj.ID, catalog.PhaseDraft)
	dstStats := checkpoint.Stats(dst.cat, dst.ledger, res.ProjectID, catalog.PhaseDraft)
	require.Equal(t, srcStats.Completed, dstStats.Completed)
	require.Equal(t, srcStats.Defects, dstStats.Defects)

	ov, ok := dst.ledger.Overlay(res.ProjectID, "floor-screed-level")
	require.True(t, ok)
	require.Equal(t, []string{"photo://1"}, ov.UserPhotos)
}

func TestImport_IntoExistingProject(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	target, err := s.projects.Create(ctx, project.CreateRequest{Title: "Target"})
	require.NoError(t, err)
	other, err := s.projects.Create(ctx, project.CreateRequest{Title: "Other"})
	require.NoError(t, err)
	require.NoError(t, s.ledger.SetStatus(ctx, target.ID, "doors-hardware", checkpoint.StatusDefect))

	bundle := transfer.Bundle{
		Version: transfer.FormatVersion,
		Overlays: map[string]checkpoint.Overlay{
			"ceiling-stretch-sag": {Status: checkpoint.StatusComplies},
			"retired-checkpoint":  {Status: checkpoint.StatusDefect},
		},
	}
	res, err := transfer.Import(ctx, s.projects, s.ledger, s.cat, bundle, target.ID)
	require.NoError(t, err)
	require.False(t, res.Created)
	require.Equal(t, []string{"retired-checkpoint"}, res.Unknown)

	_, ok := s.ledger.Overlay(target.ID, "doors-hardware")
	require.False(t, ok)
	require.Equal(t, target.ID, s.projects.Active().ID)
	require.Equal(t, target.ID, s.ledger.ActiveProject())
	require.NotEqual(t, other.ID, target.ID)
}

func TestImport_UnknownTargetWithoutProject(t *testing.T) {
	s := newServices(t)
	_, err := transfer.Import(context.Background(), s.projects, s.ledger, s.cat,
		transfer.Bundle{Version: 1, Overlays: map[string]checkpoint.Overlay{}}, "missing")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestRead_Rejects(t *testing.T) {
	_, err := transfer.Read(strings.NewReader("not json"))
	require.ErrorIs(t, err, transfer.ErrInvalidBundle)

	_, err = transfer.Read(strings.NewReader(`{"version": 99, "overlays": {}}`))
	require.ErrorIs(t, err, transfer.ErrInvalidBundle)
}

func TestExport_UnknownProject(t *testing.T) {
	s := newServices(t)
	_, err := transfer.Export(s.projects, s.ledger, s.cat, "missing", time.Now())
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}
