package catalog

// Phase identifies one of the two parallel checklists of a category.
type Phase string

const (
	PhaseDraft  Phase = "draft"
	PhaseFinish Phase = "finish"
)

// Phases lists every phase in display order.
var Phases = []Phase{PhaseDraft, PhaseFinish}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p == PhaseDraft || p == PhaseFinish
}

// CheckpointDefinition is one immutable inspection item from the catalog.
type CheckpointDefinition struct {
	ID                string  `json:"id" yaml:"id"`
	CategoryID        string  `json:"category_id" yaml:"-"`
	Phase             Phase   `json:"phase" yaml:"-"`
	Title             string  `json:"title" yaml:"title"`
	Description       string  `json:"description,omitempty" yaml:"description"`
	Tolerance         string  `json:"tolerance,omitempty" yaml:"tolerance"`
	Method            string  `json:"method,omitempty" yaml:"method"`
	StandardReference string  `json:"standard_reference,omitempty" yaml:"standard_reference"`
	ViolationText     string  `json:"violation_text,omitempty" yaml:"violation_text"`
	Hint              string  `json:"hint,omitempty" yaml:"hint"`
	ReferenceImageURL *string `json:"reference_image_url,omitempty" yaml:"reference_image_url"`
}

// Category groups checkpoints for both phases.
type Category struct {
	ID     string                 `yaml:"id"`
	Title  string                 `yaml:"title"`
	Draft  []CheckpointDefinition `yaml:"draft"`
	Finish []CheckpointDefinition `yaml:"finish"`
}

// CategorySummary is a lightweight representation for listing
type CategorySummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	DraftCount  int    `json:"draft_count"`
	FinishCount int    `json:"finish_count"`
}

// SearchResult is a catalog search hit.
type SearchResult struct {
	CheckpointID string  `json:"checkpoint_id"`
	CategoryID   string  `json:"category_id"`
	Phase        Phase   `json:"phase"`
	Title        string  `json:"title"`
	Snippet      string  `json:"snippet,omitempty"`
	Rank         float64 `json:"rank"`
}

// SearchOptions narrows a catalog search.
type SearchOptions struct {
	CategoryID string
	Phase      Phase
	Limit      int
}

type document struct {
	Version    string     `yaml:"version"`
	Categories []Category `yaml:"categories"`
}
