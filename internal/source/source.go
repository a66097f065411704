// Package source abstracts where comic panels come from: individual image
// files (uploads or a directory) or the pages of a comic PDF.
package source

import "image"

// PanelSource yields the ordered panels of one comic.
type PanelSource interface {
	Count() int
	// Panel decodes panel i (0-based) at its source resolution.
	Panel(i int) (image.Image, error)
	Close() error
}
