package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Validation errors
	ErrTitleRequired = errors.New("a title is required to store a resource")

	// Informational errors
	ErrNoMatches = errors.New("no resources matched the query")

	// Access control errors
	ErrNotAdmin = errors.New("only the admin can manage pairing")
)
