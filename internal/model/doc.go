// Package model defines the core data structures used throughout gifmask.
//
// This package contains the following main types:
//   - MaskedItem: One media candidate the filter replaced with a placeholder
//   - FilterReport: The result of filtering one document
//   - Summary: A condensed, human-readable view of a filter run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (engine, pipeline, report) need to use these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output.
package model
