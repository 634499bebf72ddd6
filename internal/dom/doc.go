// Package dom provides the document model the filter engine operates
// on, built on golang.org/x/net/html.
//
// A Document wraps a parsed *html.Node tree together with the URL it
// was captured from. Package-level helpers cover the node operations
// the engine needs:
//   - attribute access (Attr, SetAttr, RemoveAttr, ClassContains)
//   - traversal (Walk, Closest, ParentElement)
//   - construction and surgery (CreateElement, Text, InsertAfter, Detach)
//   - CSS selector matching (Compile, Matcher) via cascadia
//   - inline style editing (StyleProperty, SetStyleProperty) via douceur
//
// All state the engine records lives in the tree itself, as attributes
// and inline styles, so a filtered document can be re-serialized with
// Render and carries its masking with it.
package dom
