package tiles

import (
	"strconv"
	"testing"

	"github.com/paulmach/orb/maptile"
)

func TestTileToQuadKey(t *testing.T) {
	for _, tc := range []struct {
		tile Tile
		z    Zoom
		want QuadKey
	}{
		// tileY=0101, tileX=0011; pairs (y,x) MSB first:
		// (0,0)=0 (1,0)=2 (0,1)=1 (1,1)=3.
		{Tile{3, 5}, 4, "0213"},
		{Tile{3, 5}, 3, "213"},
		{Tile{0, 0}, 1, "0"},
		{Tile{1, 0}, 1, "1"},
		{Tile{0, 1}, 1, "2"},
		{Tile{1, 1}, 1, "3"},
		{Tile{0, 0}, 8, "00000000"},
		{Tile{255, 255}, 8, "33333333"},
	} {
		if got := TileToQuadKey(tc.tile, tc.z); got != tc.want {
			t.Errorf("TileToQuadKey(%+v, %d) = %q, want %q", tc.tile, tc.z, got, tc.want)
		}
	}
}

func TestQuadKeyZoom(t *testing.T) {
	if z := QuadKey("0213").Zoom(); z != 4 {
		t.Errorf("Zoom() = %d, want 4", z)
	}
}

func TestQuadKeyRoundTrip(t *testing.T) {
	// Exhaustive through level 4, sampled at finer levels.
	for z := MinZoom; z <= 4; z++ {
		n := 1 << z
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				in := Tile{x, y}
				q := TileToQuadKey(in, z)
				if q.Zoom() != z {
					t.Fatalf("quadkey %q has zoom %d, want %d", q, q.Zoom(), z)
				}
				out, outZ, err := QuadKeyToTile(q)
				if err != nil {
					t.Fatalf("QuadKeyToTile(%q): %v", q, err)
				}
				if out != in || outZ != z {
					t.Fatalf("round trip %+v@%d -> %q -> %+v@%d", in, z, q, out, outZ)
				}
			}
		}
	}
	for _, tc := range []struct {
		tile Tile
		z    Zoom
	}{
		{Tile{35210, 21493}, 16},
		{Tile{0, (1 << 23) - 1}, 23},
		{Tile{(1 << 23) - 1, 0}, 23},
		{Tile{5241314, 3592877}, 23},
	} {
		q := TileToQuadKey(tc.tile, tc.z)
		out, outZ, err := QuadKeyToTile(q)
		if err != nil {
			t.Fatalf("QuadKeyToTile(%q): %v", q, err)
		}
		if out != tc.tile || outZ != tc.z {
			t.Errorf("round trip %+v@%d -> %q -> %+v@%d", tc.tile, tc.z, q, out, outZ)
		}
	}
}

func TestQuadKeyToTileRejectsBadDigit(t *testing.T) {
	for _, q := range []QuadKey{"4", "01a3", "0213 "} {
		if _, _, err := QuadKeyToTile(q); err == nil {
			t.Errorf("QuadKeyToTile(%q) = nil error, want bad-digit error", q)
		}
	}
}

// TestQuadKeyAgainstMaptile cross-checks the encoding against
// paulmach/orb/maptile, which represents quadkeys as base-4 integers.
func TestQuadKeyAgainstMaptile(t *testing.T) {
	for _, tc := range []struct {
		tile Tile
		z    Zoom
	}{
		{Tile{3, 5}, 4},
		{Tile{0, 0}, 6},
		{Tile{63, 63}, 6},
		{Tile{1023, 512}, 10},
		{Tile{35210, 21493}, 16},
	} {
		q := TileToQuadKey(tc.tile, tc.z)
		mine, err := strconv.ParseUint(string(q), 4, 64)
		if err != nil {
			t.Fatalf("ParseUint(%q, 4): %v", q, err)
		}
		theirs := maptile.New(uint32(tc.tile.X), uint32(tc.tile.Y), maptile.Zoom(tc.z)).Quadkey()
		if mine != theirs {
			t.Errorf("quadkey mismatch for %+v@%d: %q (=%d) vs maptile %d", tc.tile, tc.z, q, mine, theirs)
		}
	}
}
