// Package engine drives the GIF filter over a live document: it scans
// for media candidates, masks the ones whose URLs classify as blocked
// GIFs, and keeps up with subtree insertions delivered by the host.
//
// # Pipeline
//
// Every candidate (img, video, or a[href]) runs through the same
// stages:
//  1. Skip candidates a previous scan already processed.
//  2. Collect the candidate's associated URLs: its src, its first
//     source child, its href, its data-original-src, and the href of
//     an enclosing link, deduplicated in that order.
//  3. Skip unless at least one URL looks like a GIF.
//  4. Skip unless at least one URL contains a blocked word.
//  5. In the picker with picker blocking off, skip without marking, so
//     a later settings change can still pick the candidate up.
//  6. Mark the candidate processed and resolve its owner unit.
//  7. First candidate of an owner: claim the owner and build a
//     placeholder. Later candidates: hide their nearest wrapper only.
//
// Owner claiming keeps the placement invariant: one placeholder per
// owner unit, however many candidates it contains.
//
// # Concurrency
//
// The engine is an event loop. Start performs the initial scan on the
// calling goroutine, then hands the document to a single loop goroutine
// that consumes host mutations and engine commands. Each mutation is
// scanned to completion before the next is taken, in delivery order, so
// no scan ever observes another scan's partial work. Rescan, Reveal,
// Stats, and Snapshot run as commands on the loop while the engine is
// running, and directly on the calling goroutine when it is stopped.
//
// Stop drains the loop, removes every placeholder and marker, restores
// hidden elements, and uninstalls the stylesheet; the document leaves
// exactly as it arrived.
package engine
