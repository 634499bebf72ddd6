package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate capture failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrEmptyPattern is returned when the pattern list contains an empty
	// string. An empty substring matches every URL, so every element on
	// the page would be treated as a GIF.
	ErrEmptyPattern = errors.New("invalid pattern: empty patterns match every URL")

	// ErrEmptyWord is returned when the word list contains an empty
	// string. An empty word matches every URL, so every GIF would be
	// masked regardless of content.
	ErrEmptyWord = errors.New("invalid word: empty words match every URL")

	// ErrEmptyHost is returned when the hosts map contains an empty key.
	ErrEmptyHost = errors.New("invalid hosts entry: host name is empty")
)
