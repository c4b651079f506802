package tiles

import (
	"math"
	"testing"
)

func TestClipIdempotent(t *testing.T) {
	cases := []float64{-1000, -180, -85.05112878, -0.0001, 0, 42.1, 85.05112878, 90, 181, 99999}
	for _, v := range cases {
		once := Clip(v, MinLat, MaxLat)
		twice := Clip(once, MinLat, MaxLat)
		if once != twice {
			t.Errorf("clip not idempotent for %v: %v != %v", v, once, twice)
		}
		if once < MinLat || once > MaxLat {
			t.Errorf("clip out of range for %v: %v", v, once)
		}
	}
}

func TestMapSize(t *testing.T) {
	if got := MapSize(1); got != 512 {
		t.Errorf("MapSize(1) = %d, want 512", got)
	}
	if got := MapSize(23); got != 2147483648 {
		t.Errorf("MapSize(23) = %d, want 2147483648", got)
	}
}

func TestGroundResolution(t *testing.T) {
	// 2*pi*EarthRadius / 512, the equatorial circumference over the
	// level-1 map width.
	want := 78271.51696402048
	got := GroundResolution(0, 1)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("GroundResolution(0, 1) = %v, want %v", got, want)
	}
	// Shrinks by cos(lat).
	at60 := GroundResolution(60, 1)
	if math.Abs(at60-want*0.5) > 1e-6 {
		t.Errorf("GroundResolution(60, 1) = %v, want %v", at60, want*0.5)
	}
	// Out-of-range latitudes clip instead of blowing up.
	if r := GroundResolution(-90, 5); r <= 0 || math.IsNaN(r) {
		t.Errorf("GroundResolution(-90, 5) = %v", r)
	}
}

func TestMapScale(t *testing.T) {
	// ~1:295 million at level 1 on the equator at 96 dpi.
	got := MapScale(0, 1, 96)
	want := 78271.51696402048 * 96 / 0.0254
	if math.Abs(got-want) > 1e-3 {
		t.Errorf("MapScale(0, 1, 96) = %v, want %v", got, want)
	}
}

func TestLatLonToPixel(t *testing.T) {
	for _, tc := range []struct {
		name     string
		lat, lon float64
		z        Zoom
		want     Pixel
	}{
		{"origin level 1", 0, 0, 1, Pixel{256, 256}},
		{"origin level 3", 0, 0, 3, Pixel{1024, 1024}},
		{"northwest corner", MaxLat, MinLon, 5, Pixel{0, 0}},
		{"southeast corner clips to edge", MinLat, MaxLon, 5, Pixel{MapSize(5) - 1, MapSize(5) - 1}},
		{"lat beyond range clips", 90, 0, 2, Pixel{512, 0}},
		{"lon beyond range clips", 0, 500, 2, Pixel{1023, 512}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := LatLonToPixel(tc.lat, tc.lon, tc.z)
			if got != tc.want {
				t.Errorf("LatLonToPixel(%v, %v, %d) = %+v, want %+v", tc.lat, tc.lon, tc.z, got, tc.want)
			}
		})
	}
}

// TestPixelRange drives boundary and out-of-range geodetic inputs through
// the forward projection and asserts the result stays on the map.
func TestPixelRange(t *testing.T) {
	lats := []float64{-90, MinLat, -45, 0, 45, MaxLat, 90}
	lons := []float64{-200, MinLon, -90, 0, 90, MaxLon, 200}
	for _, z := range []Zoom{1, 5, 12, 23} {
		size := MapSize(z)
		for _, lat := range lats {
			for _, lon := range lons {
				p := LatLonToPixel(lat, lon, z)
				if p.X < 0 || p.X > size-1 || p.Y < 0 || p.Y > size-1 {
					t.Fatalf("pixel out of range at z=%d lat=%v lon=%v: %+v", z, lat, lon, p)
				}
			}
		}
	}
}

func TestPixelToLatLonRoundTrip(t *testing.T) {
	// One pixel at level 15 is ~4.8 m on the equator, ~4e-5 degrees.
	// Half a pixel of slop covers the int truncation.
	const z = Zoom(15)
	tolerance := 360.0 / float64(MapSize(z))
	for _, tc := range []struct{ lat, lon float64 }{
		{0, 0},
		{47.6062, -122.3321},
		{-33.8688, 151.2093},
		{84.99, 179.99},
		{-84.99, -179.99},
	} {
		p := LatLonToPixel(tc.lat, tc.lon, z)
		lat, lon := PixelToLatLon(p, z)
		if math.Abs(lat-tc.lat) > tolerance || math.Abs(lon-tc.lon) > tolerance {
			t.Errorf("round trip drifted: (%v, %v) -> %+v -> (%v, %v)", tc.lat, tc.lon, p, lat, lon)
		}
	}
}

func TestPixelToLatLonClipsInput(t *testing.T) {
	lat1, lon1 := PixelToLatLon(Pixel{-100, -100}, 1)
	lat2, lon2 := PixelToLatLon(Pixel{0, 0}, 1)
	if lat1 != lat2 || lon1 != lon2 {
		t.Errorf("negative pixels should clip to origin: (%v, %v) != (%v, %v)", lat1, lon1, lat2, lon2)
	}
}

func TestTileContainment(t *testing.T) {
	for _, z := range []Zoom{1, 4, 10, 23} {
		max := (1 << z) - 1
		for _, tile := range []Tile{
			{0, 0},
			{1, 0},
			{max / 2, max / 3},
			{max, max},
		} {
			if got := PixelToTile(TileToPixel(tile)); got != tile {
				t.Errorf("z=%d: PixelToTile(TileToPixel(%+v)) = %+v", z, tile, got)
			}
		}
	}
	// Every pixel of a tile maps back to it, including the far corner.
	corner := Pixel{3*TileDim - 1, 2*TileDim - 1}
	if got := PixelToTile(corner); got != (Tile{2, 1}) {
		t.Errorf("PixelToTile(%+v) = %+v, want {2 1}", corner, got)
	}
}
