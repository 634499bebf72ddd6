// Package main provides the entry point for the gifmask CLI.
//
// gifmask is a GIF content filter for captured HTML pages. It finds GIF
// media whose URL contains a blocked word and replaces each match with a
// revealable placeholder, leaving the rest of the document untouched.
//
// Usage:
//
//	gifmask run <url|file>
//	gifmask run --words benjammin <url>
//
// See --help for all available options.
package main

// main is the entry point for gifmask.
func main() {
	Execute()
}
