package params

import "github.com/rotblauer/orthod/tiles"

// ImageMaxPixels caps the pixel area of a candidate composite.
// Levels whose bounding box covers more than this many pixels are
// skipped without fetching anything.
const ImageMaxPixels int64 = 8192 * 8192 * 8

// RetrieverConfig tunes the coarse-until-feasible zoom scan.
type RetrieverConfig struct {
	// MaxZoom is where the scan starts. MinZoom is the last level tried
	// before giving up.
	MaxZoom tiles.Zoom
	MinZoom tiles.Zoom

	// MaxPixels caps composite area per level.
	MaxPixels int64

	// Workers bounds concurrent tile fetches within a row.
	// 1 keeps fetching strictly serial, left to right, which stops a row
	// at the first missing tile instead of fetching the rest of it.
	Workers int
}

func DefaultRetrieverConfig() *RetrieverConfig {
	return &RetrieverConfig{
		MaxZoom:   tiles.MaxZoom,
		MinZoom:   tiles.MinZoom,
		MaxPixels: ImageMaxPixels,
		Workers:   1,
	}
}
