package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/stretchr/testify/require"
)

const testDataset = `
version: "t1"
categories:
  - id: floor
    title: Floor
    draft:
      - id: f1
        title: First
      - id: f2
        title: Second
    finish:
      - id: f3
        title: Third
  - id: walls
    title: Walls
`

func TestDefaultCatalogLoads(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	require.NotEmpty(t, cat.Version())
	require.NotZero(t, cat.Len())

	for _, summary := range cat.Categories() {
		require.Len(t, cat.Slice(summary.ID, catalog.PhaseDraft), summary.DraftCount)
		require.Len(t, cat.Slice(summary.ID, catalog.PhaseFinish), summary.FinishCount)
	}
}

func TestParse_AssignsCategoryAndPhase(t *testing.T) {
	cat, err := catalog.Parse([]byte(testDataset))
	require.NoError(t, err)
	require.Equal(t, "t1", cat.Version())

	def, err := cat.Checkpoint("f3")
	require.NoError(t, err)
	require.Equal(t, "floor", def.CategoryID)
	require.Equal(t, catalog.PhaseFinish, def.Phase)
	require.Equal(t, "Third", def.Title)
}

func TestSlice_PreservesOrder(t *testing.T) {
	cat, err := catalog.Parse([]byte(testDataset))
	require.NoError(t, err)

	slice := cat.Slice("floor", catalog.PhaseDraft)
	require.Len(t, slice, 2)
	require.Equal(t, "f1", slice[0].ID)
	require.Equal(t, "f2", slice[1].ID)

	require.Empty(t, cat.Slice("walls", catalog.PhaseDraft))
	require.Empty(t, cat.Slice("unknown", catalog.PhaseDraft))
}

func TestSlice_ReturnsCopy(t *testing.T) {
	cat, err := catalog.Parse([]byte(testDataset))
	require.NoError(t, err)

	slice := cat.Slice("floor", catalog.PhaseDraft)
	slice[0].Title = "mutated"

	def, err := cat.Checkpoint("f1")
	require.NoError(t, err)
	require.Equal(t, "First", def.Title)
	require.Equal(t, "First", cat.Slice("floor", catalog.PhaseDraft)[0].Title)
}

func TestCheckpoint_NotFound(t *testing.T) {
	cat, err := catalog.Parse([]byte(testDataset))
	require.NoError(t, err)

	_, err = cat.Checkpoint("missing")
	require.ErrorIs(t, err, catalog.ErrCheckpointNotFound)
}

func TestParse_RejectsDuplicates(t *testing.T) {
	_, err := catalog.Parse([]byte(`
categories:
  - id: floor
    draft:
      - id: f1
    finish:
      - id: f1
`))
	require.ErrorIs(t, err, catalog.ErrInvalidCatalog)

	_, err = catalog.Parse([]byte(`
categories:
  - id: floor
  - id: floor
`))
	require.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}

func TestParse_RejectsMissingIDs(t *testing.T) {
	_, err := catalog.Parse([]byte(`
categories:
  - id: floor
    draft:
      - title: nameless
`))
	require.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDataset), 0o600))

	cat, err := catalog.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 3, cat.Len())
	require.True(t, cat.HasCategory("walls"))
	require.False(t, cat.HasCategory("roof"))

	_, err = catalog.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestCheckpoints_CatalogOrder(t *testing.T) {
	cat, err := catalog.Parse([]byte(testDataset))
	require.NoError(t, err)

	var ids []string
	for _, def := range cat.Checkpoints() {
		ids = append(ids, def.ID)
	}
	require.Equal(t, []string{"f1", "f2", "f3"}, ids)
}
