package files

import (
	"errors"
	"strings"
)

// Errors surfaced by the core file operations. Handlers map these to HTTP
// statuses; anything else is treated as an internal error.
var (
	// ErrForbidden — the requester does not own the file. Deliberately
	// carries no detail so it never confirms another owner's file exists.
	ErrForbidden = errors.New("access to this file is denied")
	// ErrNotFound — the record does not exist, or its blob is missing.
	ErrNotFound = errors.New("file not found")
	// ErrUnsupportedMedia — preview requested for a non-previewable type.
	ErrUnsupportedMedia = errors.New("this file type cannot be previewed")
)

// ValidationError reports every constraint an upload batch violated, one
// message per problem, so the client can fix the batch and resubmit.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "upload validation failed: " + strings.Join(e.Problems, "; ")
}
