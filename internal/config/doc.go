// Package config provides configuration structures and utilities for gifmask.
// It defines the filter options (patterns, word list, picker behavior),
// capture settings, and per-host overrides loaded from a YAML file.
package config
