package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDataset []byte

type sliceKey struct {
	categoryID string
	phase      Phase
}

// Catalog is the immutable reference dataset of inspection checkpoints.
// It is never mutated after Parse returns, so concurrent reads are safe.
type Catalog struct {
	version    string
	categories []Category
	byID       map[string]CheckpointDefinition
	slices     map[sliceKey][]CheckpointDefinition
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultDataset)
}

// LoadFile reads and parses a catalog dataset from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog dataset.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	cat := &Catalog{
		version:    doc.Version,
		categories: make([]Category, 0, len(doc.Categories)),
		byID:       make(map[string]CheckpointDefinition),
		slices:     make(map[sliceKey][]CheckpointDefinition),
	}

	seenCategories := make(map[string]bool, len(doc.Categories))
	for _, c := range doc.Categories {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("%w: category without id", ErrInvalidCatalog)
		}
		if seenCategories[c.ID] {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, c.ID)
		}
		seenCategories[c.ID] = true

		draft, err := cat.index(c.ID, PhaseDraft, c.Draft)
		if err != nil {
			return nil, err
		}
		finish, err := cat.index(c.ID, PhaseFinish, c.Finish)
		if err != nil {
			return nil, err
		}
		c.Draft = draft
		c.Finish = finish
		cat.categories = append(cat.categories, c)
	}

	return cat, nil
}

func (c *Catalog) index(categoryID string, phase Phase, defs []CheckpointDefinition) ([]CheckpointDefinition, error) {
	out := make([]CheckpointDefinition, 0, len(defs))
	for _, def := range defs {
		if strings.TrimSpace(def.ID) == "" {
			return nil, fmt.Errorf("%w: checkpoint without id in %s/%s", ErrInvalidCatalog, categoryID, phase)
		}
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate checkpoint %q", ErrInvalidCatalog, def.ID)
		}
		def.CategoryID = categoryID
		def.Phase = phase
		c.byID[def.ID] = def
		out = append(out, def)
	}
	c.slices[sliceKey{categoryID, phase}] = out
	return out, nil
}

// Version returns the dataset version string.
func (c *Catalog) Version() string {
	return c.version
}

// Categories returns category summaries in catalog order.
func (c *Catalog) Categories() []CategorySummary {
	out := make([]CategorySummary, 0, len(c.categories))
	for _, cat := range c.categories {
		out = append(out, CategorySummary{
			ID:          cat.ID,
			Title:       cat.Title,
			DraftCount:  len(cat.Draft),
			FinishCount: len(cat.Finish),
		})
	}
	return out
}

// HasCategory reports whether the catalog defines categoryID.
func (c *Catalog) HasCategory(categoryID string) bool {
	for _, cat := range c.categories {
		if cat.ID == categoryID {
			return true
		}
	}
	return false
}

// Checkpoint looks up a definition by id.
func (c *Catalog) Checkpoint(id string) (CheckpointDefinition, error) {
	def, ok := c.byID[id]
	if !ok {
		return CheckpointDefinition{}, fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
	}
	return def, nil
}

// Slice returns the checkpoints of one category and phase in catalog order.
// Unknown categories yield an empty slice.
func (c *Catalog) Slice(categoryID string, phase Phase) []CheckpointDefinition {
	defs := c.slices[sliceKey{categoryID, phase}]
	out := make([]CheckpointDefinition, len(defs))
	copy(out, defs)
	return out
}

// Checkpoints returns every definition, grouped by category then phase.
func (c *Catalog) Checkpoints() []CheckpointDefinition {
	out := make([]CheckpointDefinition, 0, len(c.byID))
	for _, cat := range c.categories {
		out = append(out, cat.Draft...)
		out = append(out, cat.Finish...)
	}
	return out
}

// Len returns the number of checkpoint definitions.
func (c *Catalog) Len() int {
	return len(c.byID)
}
