// Package surface resolves where a media candidate sits inside a chat
// application's document: whether it is part of the GIF picker surface
// and which enclosing element owns it for deduplication purposes.
//
// The targeted applications generate their class names at build time
// ("imageWrapper_af017a"), so every structural marker here is a stable
// class-name fragment matched by substring, never a whole class name.
//
// Owner resolution walks a fixed priority of enclosing containers:
// image wrapper, embed wrapper, message article, accessories container,
// and finally the immediate parent. Each step is a fallback for the
// previous one; resolution never fails for an attached node, and the
// same input always resolves to the same owner.
package surface
