// Package styles manages the filter's stylesheet elements inside a
// document head. Sheets are registered under an ID so they can be
// replaced and removed as a unit, and every sheet is parsed before
// insertion so a malformed stylesheet never reaches the tree.
package styles
