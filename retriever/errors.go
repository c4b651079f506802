package retriever

import "errors"

var (
	// ErrDegenerateBoundingBox means the box collapsed to a pixel extent of
	// one or less at the finest candidate level. Coarser levels only shrink
	// it further, so the whole retrieval aborts without scanning them.
	ErrDegenerateBoundingBox = errors.New("degenerate bounding box")

	// ErrNoAvailableImagery means every candidate level was abandoned.
	ErrNoAvailableImagery = errors.New("no available imagery")
)
