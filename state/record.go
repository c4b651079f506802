package state

import (
	"strconv"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/rotblauer/orthod/conceptual"
	"github.com/rotblauer/orthod/geo"
	"github.com/rotblauer/orthod/retriever"
	"github.com/rotblauer/orthod/tiles"
)

// Record is the persisted form of one retrieval attempt.
type Record struct {
	// ID is the request hash; identical requests collide on purpose.
	ID     string              `json:"id"`
	Source conceptual.SourceID `json:"source"`
	Report *retriever.Report   `json:"report"`

	// Name is the geocoded (or coordinate) name component, when naming ran.
	Name string `json:"name,omitempty"`
	// Path is where the composite landed on disk, empty on failure.
	Path string `json:"path,omitempty"`
	// S3Key is set when the composite was also uploaded.
	S3Key string `json:"s3_key,omitempty"`
}

// RequestID hashes the parameters that determine a retrieval's content.
// It doubles as the in-flight dedupe key.
func RequestID(source conceptual.SourceID, box geo.BoundingBox, maxZoom, minZoom tiles.Zoom) (string, error) {
	h, err := hashstructure.Hash(struct {
		Source  conceptual.SourceID
		Box     geo.BoundingBox
		MaxZoom tiles.Zoom
		MinZoom tiles.Zoom
	}{source, box, maxZoom, minZoom}, hashstructure.FormatV2, nil)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(h, 16), nil
}
