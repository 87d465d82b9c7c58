package catalog

import "context"

// Index provides full-text search over catalog checkpoints.
type Index interface {
	Rebuild(ctx context.Context, cat *Catalog) error
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}
