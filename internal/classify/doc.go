// Package classify decides whether a URL looks like animated GIF media
// and whether it matches a user's blocked words.
//
// Both checks are plain substring matches against the URL string:
//   - GIF detection compares a case-folded URL against known GIF host
//     and extension fragments (tenor.com, .gif, ...).
//   - Blocked-word matching compares the URL against each word, with
//     case folding applied to both sides unless case-sensitive matching
//     is requested.
//
// Design decision: Matching is substring-only, with no word boundaries
// or globbing. The word "cat" blocks "concatenated.gif". Users rely on
// short fragments matching inside long CDN URLs, so narrowing the match
// would silently change which media gets filtered.
//
// Classification never inspects media bytes. A URL that merely looks
// GIF-like is enough; content sniffing is out of scope.
package classify
