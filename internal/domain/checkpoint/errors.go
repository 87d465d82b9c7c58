package checkpoint

import "errors"

var (
	// ErrNoActiveProject indicates a ledger write without a project scope.
	ErrNoActiveProject = errors.New("no active project")
	// ErrInvalidStatus indicates an unknown checkpoint status.
	ErrInvalidStatus = errors.New("invalid checkpoint status")
	// ErrInvalidInput indicates invalid ledger input.
	ErrInvalidInput = errors.New("invalid checkpoint input")
)
