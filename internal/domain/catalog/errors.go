package catalog

import "errors"

var (
	// ErrCheckpointNotFound indicates the checkpoint id is absent from the catalog.
	ErrCheckpointNotFound = errors.New("checkpoint not found in catalog")
	// ErrCategoryNotFound indicates the category id is absent from the catalog.
	ErrCategoryNotFound = errors.New("category not found in catalog")
	// ErrInvalidCatalog indicates the catalog dataset failed validation.
	ErrInvalidCatalog = errors.New("invalid catalog")
)
