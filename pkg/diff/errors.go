package diff

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDiff is returned when body content appears before any hunk header.
	ErrMalformedDiff = errors.New("malformed diff")
	// ErrInvalidHeader is returned for hunk header lines that cannot be parsed.
	ErrInvalidHeader = errors.New("invalid hunk header")
	// ErrSelectionNotFound is returned when selected text cannot be located in the diff.
	ErrSelectionNotFound = errors.New("selection not found in diff")
	// ErrEmptySelection is returned when a selection leaves no change to apply.
	ErrEmptySelection = errors.New("selection contains no changes")
	// ErrHunkIndex is returned for hunk indices outside the document.
	ErrHunkIndex = errors.New("hunk index out of range")
)

// MalformedDiffError carries the line that could not be placed in a hunk.
type MalformedDiffError struct {
	Line   string
	Offset int
}

func (e *MalformedDiffError) Error() string {
	return fmt.Sprintf("non-hunk content body at offset %d: %q", e.Offset, e.Line)
}

func (e *MalformedDiffError) Unwrap() error {
	return ErrMalformedDiff
}
