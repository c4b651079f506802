package params

import (
	"os"
	"strings"

	"github.com/rotblauer/orthod/conceptual"
)

// TileSourceConfig describes one quadkey-addressed imagery endpoint.
type TileSourceConfig struct {
	ID conceptual.SourceID

	// URLTemplate builds a tile URL. {q} is replaced with the quadkey
	// and {s} with one of Subdomains, round robin.
	URLTemplate string
	Subdomains  []string

	// NullKey is a quadkey the service is guaranteed not to have imagery
	// for. Fetching it yields the canonical placeholder tile, which is the
	// byte pattern every fetched tile gets compared against for validity.
	// All 1s addresses the antimeridian edge of the southern clip boundary
	// at a depth nothing publishes there.
	NullKey string

	UserAgent string

	// MetadataURL, when set, is queried once at startup for the current
	// imageUrl and imageUrlSubdomains. URLTemplate stays as the fallback.
	MetadataURL string
}

func DefaultTileSourceConfig() *TileSourceConfig {
	return &TileSourceConfig{
		ID:          "ve-aerial",
		URLTemplate: "http://{s}.ortho.tiles.virtualearth.net/tiles/h{q}.jpeg?g=131",
		Subdomains:  []string{"h0", "h1", "h2", "h3"},
		NullKey:     strings.Repeat("1", 21),
		UserAgent:   "orthod/0.1 (+https://github.com/rotblauer/orthod)",
		MetadataURL: os.Getenv("ORTHOD_METADATA_URL"),
	}
}
