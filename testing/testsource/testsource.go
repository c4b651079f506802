// Package testsource runs a fake quadkey tile server for tests.
//
// The server speaks the h{quadkey}.jpeg scheme. Tiles marked present
// answer with deterministic PNG art; everything else answers with the
// placeholder body, the way the real service answers off the edge of
// coverage.
package testsource

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rotblauer/orthod/geo"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/tiles"
)

// NullKey is the null quadkey the fixture server recognizes.
var NullKey = strings.Repeat("1", 21)

// NullTile is the placeholder body for tiles the server does not have.
// Deliberately not a decodable image.
var NullTile = []byte("placeholder-tile-bytes")

// Server serves PNG tiles for the tiles in has, the placeholder for
// everything else, and counts requests.
type Server struct {
	*httptest.Server
	has map[string]bool

	Hits  atomic.Int64
	Nulls atomic.Int64
}

func NewServer(t *testing.T, has map[string]bool) *Server {
	t.Helper()
	ts := &Server{has: has}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.Hits.Add(1)
		qk := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/h"), ".jpeg")
		if qk == NullKey {
			ts.Nulls.Add(1)
			w.Write(NullTile)
			return
		}
		tile, z, err := tiles.QuadKeyToTile(tiles.QuadKey(qk))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if ts.has[Key(z, tile)] {
			w.Write(TilePNG(tile))
			return
		}
		w.Write(NullTile)
	}))
	t.Cleanup(ts.Server.Close)
	return ts
}

// SourceConfig points a tile source at the fixture server.
func (ts *Server) SourceConfig() *params.TileSourceConfig {
	return &params.TileSourceConfig{
		ID:          "test-aerial",
		URLTemplate: ts.URL + "/h{q}.jpeg",
		NullKey:     NullKey,
		UserAgent:   "orthod/test",
	}
}

// Key is the quadkey string for a tile, the present-tile map key.
func Key(z tiles.Zoom, t tiles.Tile) string {
	return tiles.TileToQuadKey(t, z).String()
}

// Rect marks a rectangle of tiles present, corners inclusive.
func Rect(z tiles.Zoom, x0, y0, x1, y1 int) map[string]bool {
	has := map[string]bool{}
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			has[Key(z, tiles.Tile{X: x, Y: y})] = true
		}
	}
	return has
}

// TilePNG renders a tile as a solid color keyed off its address.
func TilePNG(t tiles.Tile) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	c := color.RGBA{R: uint8(t.X % 251), G: uint8(t.Y % 251), B: 10, A: 255}
	for i := range img.Pix {
		switch i % 4 {
		case 0:
			img.Pix[i] = c.R
		case 1:
			img.Pix[i] = c.G
		case 2:
			img.Pix[i] = c.B
		case 3:
			img.Pix[i] = c.A
		}
	}
	buf := bytes.NewBuffer([]byte{})
	if err := png.Encode(buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// BoxFromPixels converts two global pixel corners at a zoom level to
// a geographic bounding box.
func BoxFromPixels(z tiles.Zoom, p1, p2 tiles.Pixel) geo.BoundingBox {
	lat1, lon1 := tiles.PixelToLatLon(p1, z)
	lat2, lon2 := tiles.PixelToLatLon(p2, z)
	return geo.NewBoundingBox(lat1, lon1, lat2, lon2)
}
