// Package log provides logging with automatic redaction of blocked
// words, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic masking of blocked words in log attribute values
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Redaction
//
// The filter logs the URLs it masks, and those URLs contain the very
// words the user asked to never see. The RedactHandler masks every
// occurrence of a blocked word in attribute values, and masks the
// attributes that carry the word list itself, so log files stay
// shareable.
//
// Even in verbose mode, blocked words are masked.
//
// # Usage
//
//	// Create a redacting logger
//	logger := log.NewRedactLogger(os.Stderr, true, words) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("masked gif",
//	    "url", "https://media.tenor.com/abc/benjammin-dance.gif",
//	    // Logged as "https://media.tenor.com/abc/***-dance.gif"
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
