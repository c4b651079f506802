// Package tiles implements the quadtree tile coordinate system used by
// Bing-style aerial imagery services: the deterministic, invertible mapping
// between geodetic coordinates, map pixels, tile coordinates, and quadkeys
// at a given zoom level.
//
// Everything here is pure arithmetic. Out-of-range numeric inputs are
// clipped, never rejected.
//
// https://learn.microsoft.com/en-us/bingmaps/articles/bing-maps-tile-system
package tiles

import "math"

const (
	// TileDim is the pixel edge of one (square) tile.
	TileDim = 256

	// EarthRadius is the WGS-84 semi-major axis, in meters.
	EarthRadius = 6378137.0

	// MinLat and MaxLat bound the Web-Mercator projection; beyond them the
	// cylinder runs off to infinity and the map becomes non-square.
	MinLat = -85.05112878
	MaxLat = 85.05112878

	MinLon = -180.0
	MaxLon = 180.0
)

// Pixel is an (x, y) position within the full map raster at some zoom,
// origin at the upper-left (northwest) corner.
type Pixel struct {
	X, Y int
}

// Tile is an (x, y) tile index at some zoom. Tile (0, 0) is northwest.
type Tile struct {
	X, Y int
}

// Clip bounds v to [min, max]. Idempotent.
func Clip(v, min, max float64) float64 {
	return math.Min(math.Max(v, min), max)
}

// MapSize returns the edge, in pixels, of the full map raster at zoom z.
func MapSize(z Zoom) int {
	return TileDim << z
}

// GroundResolution returns the ground distance, in meters, spanned by one
// pixel at the given latitude and zoom.
func GroundResolution(lat float64, z Zoom) float64 {
	lat = Clip(lat, MinLat, MaxLat)
	return math.Cos(lat*math.Pi/180) * 2 * math.Pi * EarthRadius / float64(MapSize(z))
}

// MapScale returns the denominator of the representative map scale
// (1 : MapScale) at the given latitude, zoom, and screen resolution.
func MapScale(lat float64, z Zoom, dpi int) float64 {
	return GroundResolution(lat, z) * float64(dpi) / 0.0254
}

// LatLonToPixel projects a geodetic coordinate onto the map raster at zoom z
// with the standard Web-Mercator forward projection.
// Inputs are clipped to the projection's valid ranges; the result always
// lies within [0, MapSize(z)-1] on both axes.
func LatLonToPixel(lat, lon float64, z Zoom) Pixel {
	lat = Clip(lat, MinLat, MaxLat)
	lon = Clip(lon, MinLon, MaxLon)

	x := (lon + 180) / 360
	sinLat := math.Sin(lat * math.Pi / 180)
	y := 0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)

	size := float64(MapSize(z))
	return Pixel{
		X: int(Clip(x*size+0.5, 0, size-1)),
		Y: int(Clip(y*size+0.5, 0, size-1)),
	}
}

// PixelToLatLon inverts LatLonToPixel, returning the geodetic coordinate of
// a map pixel at zoom z. Pixel inputs are clipped to [0, MapSize(z)-1].
func PixelToLatLon(p Pixel, z Zoom) (lat, lon float64) {
	size := float64(MapSize(z))
	x := (Clip(float64(p.X), 0, size-1) / size) - 0.5
	y := 0.5 - (Clip(float64(p.Y), 0, size-1) / size)

	lat = 90 - 360*math.Atan(math.Exp(-y*2*math.Pi))/math.Pi
	lon = 360 * x
	return lat, lon
}

// PixelToTile returns the tile containing a pixel.
// The mapping is zoom-independent: tiles are always 256 px on a side.
func PixelToTile(p Pixel) Tile {
	return Tile{X: p.X / TileDim, Y: p.Y / TileDim}
}

// TileToPixel returns the upper-left pixel of a tile.
func TileToPixel(t Tile) Pixel {
	return Pixel{X: t.X * TileDim, Y: t.Y * TileDim}
}
