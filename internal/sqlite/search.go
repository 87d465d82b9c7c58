package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/repository"
)

const defaultSearchLimit = 20

// CatalogIndex implements catalog.Index on the checkpoints_fts table.
type CatalogIndex struct {
	db *DB
}

// NewCatalogIndex creates a new CatalogIndex
func NewCatalogIndex(db *DB) *CatalogIndex {
	return &CatalogIndex{db: db}
}

// Rebuild replaces the index contents with every checkpoint of cat.
func (r *CatalogIndex) Rebuild(ctx context.Context, cat *catalog.Catalog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin index rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM checkpoints_fts`); err != nil {
		return fmt.Errorf("failed to clear catalog index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO checkpoints_fts (
			checkpoint_id, category_id, phase, title, description, violation_text, hint
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare index insert: %w", err)
	}
	defer stmt.Close()

	for _, def := range cat.Checkpoints() {
		if _, err := stmt.ExecContext(ctx,
			def.ID,
			def.CategoryID,
			string(def.Phase),
			def.Title,
			def.Description,
			def.ViolationText,
			def.Hint,
		); err != nil {
			return fmt.Errorf("failed to index checkpoint %s: %w", def.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index rebuild: %w", err)
	}
	return nil
}

// Search performs a full-text search over checkpoint text, best match first
func (r *CatalogIndex) Search(ctx context.Context, query string, opts catalog.SearchOptions) ([]catalog.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", repository.ErrInvalidInput)
	}

	baseQuery := `
		SELECT
			checkpoint_id, category_id, phase, title,
			snippet(checkpoints_fts, 4, '[', ']', '...', 12) AS snippet,
			bm25(checkpoints_fts) AS rank
		FROM checkpoints_fts
		WHERE checkpoints_fts MATCH ?
	`
	args := []any{query}

	if opts.CategoryID != "" {
		baseQuery += " AND category_id = ?"
		args = append(args, opts.CategoryID)
	}
	if opts.Phase != "" {
		baseQuery += " AND phase = ?"
		args = append(args, string(opts.Phase))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	baseQuery += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		if isFTSQueryError(err) {
			return nil, fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	defer rows.Close()

	results := []catalog.SearchResult{}
	for rows.Next() {
		var result catalog.SearchResult
		var phase string
		if err := rows.Scan(
			&result.CheckpointID,
			&result.CategoryID,
			&phase,
			&result.Title,
			&result.Snippet,
			&result.Rank,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		result.Phase = catalog.Phase(phase)
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		if isFTSQueryError(err) {
			return nil, fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}
