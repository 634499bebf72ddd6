package surface

import (
	"golang.org/x/net/html"

	"github.com/nao1215/gifmask/internal/dom"
)

// Default class-name fragments for the supported chat applications.
const (
	// DefaultTileMarker marks one result tile in the GIF picker grid.
	DefaultTileMarker = "result"

	// DefaultImageWrapperMarker marks the wrapper around an inline image.
	DefaultImageWrapperMarker = "imageWrapper"

	// DefaultEmbedWrapperMarker marks the wrapper around a rich embed.
	DefaultEmbedWrapperMarker = "embedWrapper"

	// DefaultAccessoriesMarker marks the container for a message's
	// attachments and embeds.
	DefaultAccessoriesMarker = "messageAccessories"
)

// DefaultPickerMarkers returns the class fragments that identify the
// GIF picker surface. Any ancestor matching one of them places a
// candidate inside the picker.
func DefaultPickerMarkers() []string {
	return []string{"picker"}
}

// Detector resolves picker membership and owner units for media
// candidates. A Detector is immutable after construction and safe for
// concurrent use.
type Detector struct {
	pickerMarkers []string
	tileMarker    string
	imageWrapper  string
	embedWrapper  string
	accessories   string
	article       dom.Matcher
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithPickerMarkers replaces the picker surface class fragments.
func WithPickerMarkers(markers []string) DetectorOption {
	return func(det *Detector) {
		det.pickerMarkers = append([]string(nil), markers...)
	}
}

// WithTileMarker replaces the picker result tile class fragment.
func WithTileMarker(marker string) DetectorOption {
	return func(det *Detector) {
		det.tileMarker = marker
	}
}

// WithWrapperMarkers replaces the image and embed wrapper class
// fragments.
func WithWrapperMarkers(image, embed string) DetectorOption {
	return func(det *Detector) {
		det.imageWrapper = image
		det.embedWrapper = embed
	}
}

// WithAccessoriesMarker replaces the accessories container class
// fragment.
func WithAccessoriesMarker(marker string) DetectorOption {
	return func(det *Detector) {
		det.accessories = marker
	}
}

// NewDetector creates a Detector with the default markers.
func NewDetector(opts ...DetectorOption) *Detector {
	det := &Detector{
		pickerMarkers: DefaultPickerMarkers(),
		tileMarker:    DefaultTileMarker,
		imageWrapper:  DefaultImageWrapperMarker,
		embedWrapper:  DefaultEmbedWrapperMarker,
		accessories:   DefaultAccessoriesMarker,
		article:       dom.MustCompile("article"),
	}
	for _, opt := range opts {
		opt(det)
	}
	return det
}

// InPickerSurface reports whether n sits inside the GIF picker surface.
// Detached nodes are never in the picker.
func (det *Detector) InPickerSurface(n *html.Node) bool {
	return dom.Closest(n, func(a *html.Node) bool {
		for _, marker := range det.pickerMarkers {
			if dom.ClassContains(a, marker) {
				return true
			}
		}
		return false
	}) != nil
}

// OwnerUnit resolves the element that owns n for deduplication.
//
// In picker context the owner is the enclosing result tile, falling
// back to the immediate parent. In the normal timeline the owner is
// resolved in priority order: image wrapper, embed wrapper, message
// article, accessories container, immediate parent. A candidate with no
// parent resolves to nil and is skipped by callers.
func (det *Detector) OwnerUnit(n *html.Node, inPicker bool) *html.Node {
	if n == nil {
		return nil
	}
	if inPicker {
		if tile := det.closestFragment(n, det.tileMarker); tile != nil {
			return tile
		}
		return dom.ParentElement(n)
	}
	if w := det.closestFragment(n, det.imageWrapper); w != nil {
		return w
	}
	if w := det.closestFragment(n, det.embedWrapper); w != nil {
		return w
	}
	if a := dom.Closest(n, det.article.Match); a != nil {
		return a
	}
	if acc := det.closestFragment(n, det.accessories); acc != nil {
		return acc
	}
	return dom.ParentElement(n)
}

// NearestWrapper returns the closest image or embed wrapper around n,
// or n itself when no wrapper encloses it. Secondary candidates under
// an already claimed owner hide exactly this element.
func (det *Detector) NearestWrapper(n *html.Node) *html.Node {
	if w := dom.Closest(n, func(a *html.Node) bool {
		return dom.ClassContains(a, det.imageWrapper) || dom.ClassContains(a, det.embedWrapper)
	}); w != nil {
		return w
	}
	return n
}

// AccessoriesContainer returns the enclosing accessories container, or
// nil when the candidate sits outside one. The placeholder builder uses
// it as the insertion point for inline panels.
func (det *Detector) AccessoriesContainer(n *html.Node) *html.Node {
	return det.closestFragment(n, det.accessories)
}

func (det *Detector) closestFragment(n *html.Node, fragment string) *html.Node {
	if fragment == "" {
		return nil
	}
	return dom.Closest(n, func(a *html.Node) bool {
		return dom.ClassContains(a, fragment)
	})
}
