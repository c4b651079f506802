package tiles

import (
	"fmt"
	"strings"
)

// QuadKey addresses a tile by interleaving the bits of its Y and X
// coordinates, one base-4 digit per zoom level, most significant level
// first. The key's length is its zoom level, so a quadkey alone fully
// identifies (tile, zoom).
//
// Digit at level i = (yBit << 1) | xBit:
//
//	0 1
//	2 3
type QuadKey string

func (q QuadKey) String() string {
	return string(q)
}

// Zoom returns the zoom level encoded by the key; it is the key's length.
func (q QuadKey) Zoom() Zoom {
	return Zoom(len(q))
}

// TileToQuadKey encodes a tile coordinate at zoom z.
// QuadKey <-> (Tile, Zoom) is a bijection; it round-trips exactly
// with QuadKeyToTile.
func TileToQuadKey(t Tile, z Zoom) QuadKey {
	var sb strings.Builder
	sb.Grow(int(z))
	for i := z; i > 0; i-- {
		digit := byte('0')
		mask := 1 << (i - 1)
		if t.X&mask != 0 {
			digit++
		}
		if t.Y&mask != 0 {
			digit += 2
		}
		sb.WriteByte(digit)
	}
	return QuadKey(sb.String())
}

// QuadKeyToTile decodes a quadkey into its tile coordinate and zoom.
// The only failure is a malformed digit outside '0'..'3'.
func QuadKeyToTile(q QuadKey) (Tile, Zoom, error) {
	t := Tile{}
	z := q.Zoom()
	for i := z; i > 0; i-- {
		mask := 1 << (i - 1)
		switch q[z-i] {
		case '0':
			// NW quadrant, both bits clear.
		case '1':
			t.X |= mask
		case '2':
			t.Y |= mask
		case '3':
			t.X |= mask
			t.Y |= mask
		default:
			return Tile{}, 0, fmt.Errorf("invalid quadkey %q: digit %q", q, q[z-i])
		}
	}
	return t, z, nil
}
