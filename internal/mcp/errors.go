package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/punchlist/internal/domain/activity"
	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/domain/checkpoint"
	"github.com/ganot/punchlist/internal/domain/preferences"
	"github.com/ganot/punchlist/internal/domain/project"
	"github.com/ganot/punchlist/internal/repository"
)

// ErrSearchUnavailable is returned when no catalog index is configured.
var ErrSearchUnavailable = errors.New("catalog search unavailable")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, checkpoint.ErrNoActiveProject):
		return &APIError{Code: "NO_ACTIVE_PROJECT", Message: "no project selected", RecoveryHint: "Pass project_id or call set_active_project first"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, catalog.ErrCheckpointNotFound):
		return &APIError{Code: "CHECKPOINT_NOT_FOUND", Message: "checkpoint not in catalog", RecoveryHint: "Use list_category_checkpoints or search_checkpoints"}
	case errors.Is(err, catalog.ErrCategoryNotFound):
		return &APIError{Code: "CATEGORY_NOT_FOUND", Message: "category not in catalog", RecoveryHint: "Call list_categories for valid ids"}
	case errors.Is(err, checkpoint.ErrInvalidStatus):
		return &APIError{Code: "INVALID_STATUS", Message: err.Error(), RecoveryHint: "Use complies, defect, not_inspected or null"}
	case errors.Is(err, ErrSearchUnavailable):
		return &APIError{Code: "SEARCH_UNAVAILABLE", Message: "catalog search is not configured"}
	case errors.Is(err, checkpoint.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, preferences.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
}

func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
