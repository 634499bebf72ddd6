// Package embed builds the placeholder panel that replaces a masked
// GIF, and implements the reveal operation that undoes it.
//
// The panel comes in two variants. In the message timeline it is an
// inline block (warning icon, title, description, reveal button)
// inserted into the message's accessories container, or directly after
// the hidden wrapper when no container exists. In the GIF picker it is
// a compact overlay appended into the result tile, which also has its
// pointer interaction blocked so the masked GIF cannot be sent by
// clicking through it.
//
// Reveal restores the hidden wrapper and every nested candidate hidden
// under the same owner, releases the owner, and detaches the panel.
// Revealed media stays visible until the next rescan; reveal clears the
// processed markers so that rescan can mask it again.
package embed
