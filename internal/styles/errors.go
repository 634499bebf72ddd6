package styles

import "errors"

var (
	// ErrEmptyID is returned when a stylesheet is registered without an
	// ID.
	ErrEmptyID = errors.New("stylesheet id must not be empty")

	// ErrNoHead is returned when the document has no head element to
	// install into.
	ErrNoHead = errors.New("document has no head element")
)
