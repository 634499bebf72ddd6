// Package settings persists the filter's user settings as namespaced
// key-value pairs and materializes them into the View the engine scans
// with.
//
// Two stores are provided: a SQLite-backed DB for real runs and an
// in-memory store for tests and ephemeral sessions. Settings are read
// lazily; a key that was never written reads as its default
// (blockInPicker=true, caseSensitive=false, empty word list), and
// nothing is written back until Save is called.
package settings
