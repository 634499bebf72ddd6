package engine

import "errors"

var (
	// ErrNoDocument is returned when the host has no document to scan.
	ErrNoDocument = errors.New("host has no document")

	// ErrUnknownItem is returned when a reveal names an item ID with no
	// placeholder in the document.
	ErrUnknownItem = errors.New("no placeholder with that item id")
)
