// Package host adapts document sources to the engine's Host contract.
//
// Two hosts are provided. Static serves a parsed document with no
// mutation stream; the engine's initial full scan is the only scan
// that runs. Replay drives a document through a scripted sequence of
// subtree insertions, emitting one mutation per inserted node in
// script order. Replay is how a live page's streaming behavior is
// reproduced offline: each frame names an insertion target by CSS
// selector and carries an HTML fragment to append there.
//
// Replay delivery is synchronized with the consumer. After each
// frame's mutations are accepted, Replay sends an empty settle
// mutation before touching the tree again, so a tree edit never
// overlaps a scan still in flight on the consumer side.
package host
