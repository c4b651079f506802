package geo

import (
	"math"
	"testing"
)

func TestFromCenter(t *testing.T) {
	// A 1000 x 500 m box around a point in Missoula.
	b := FromCenter(46.8721, -113.9940, 1000, 500)

	if b.Lat1 <= b.Lat2 {
		t.Fatalf("corner order: lat1 %v should be north of lat2 %v", b.Lat1, b.Lat2)
	}
	if b.Lon1 >= b.Lon2 {
		t.Fatalf("corner order: lon1 %v should be west of lon2 %v", b.Lon1, b.Lon2)
	}

	w, h := b.DimensionsMeters()
	if math.Abs(w-1000) > 10 {
		t.Fatalf("width %v m, want ~1000", w)
	}
	if math.Abs(h-500) > 5 {
		t.Fatalf("height %v m, want ~500", h)
	}
}

func TestFromCenterNormalizesLongitude(t *testing.T) {
	b := FromCenter(10, 190, 100, 100)
	lat, lon := b.Center()
	if math.Abs(lon - -170) > 1e-6 {
		t.Fatalf("longitude not normalized: %v", lon)
	}
	if math.Abs(lat-10) > 1e-6 {
		t.Fatalf("latitude changed: %v", lat)
	}
}

func TestParseCorners(t *testing.T) {
	b, err := ParseCorners([]string{"46.9", "-114.0", "46.8", "-113.9"})
	if err != nil {
		t.Fatal(err)
	}
	if b.Lat1 != 46.9 || b.Lon1 != -114.0 || b.Lat2 != 46.8 || b.Lon2 != -113.9 {
		t.Fatalf("unexpected box: %+v", b)
	}

	cases := [][]string{
		{"46.9", "-114.0", "46.8"},
		{"46.9", "-114.0", "46.8", "-113.9", "extra"},
		{"46.9", "not-a-number", "46.8", "-113.9"},
	}
	for _, args := range cases {
		if _, err := ParseCorners(args); err == nil {
			t.Fatalf("want error for args %v", args)
		}
	}
}

func TestParseCenter(t *testing.T) {
	b, err := ParseCenter([]string{"46.8721", "-113.9940", "1000", "500"})
	if err != nil {
		t.Fatal(err)
	}
	w, h := b.DimensionsMeters()
	if math.Abs(w-1000) > 10 || math.Abs(h-500) > 5 {
		t.Fatalf("unexpected dimensions: %v x %v", w, h)
	}

	if _, err := ParseCenter([]string{"46.8", "-113.9", "0", "500"}); err == nil {
		t.Fatal("want error for zero width")
	}
	if _, err := ParseCenter([]string{"46.8", "-113.9", "1000", "-500"}); err == nil {
		t.Fatal("want error for negative height")
	}
}

func TestParseBBox(t *testing.T) {
	b, err := ParseBBox("46.9,-114.0,46.8,-113.9")
	if err != nil {
		t.Fatal(err)
	}
	if b.Lat1 != 46.9 || b.Lon2 != -113.9 {
		t.Fatalf("unexpected box: %+v", b)
	}
	if _, err := ParseBBox("46.9,-114.0,46.8"); err == nil {
		t.Fatal("want error for 3 values")
	}
	if _, err := ParseBBox("a,b,c,d"); err == nil {
		t.Fatal("want error for non-numeric values")
	}
}

func TestOrbBound(t *testing.T) {
	// Corners in "wrong" order still produce a sorted bound.
	b := NewBoundingBox(46.8, -113.9, 46.9, -114.0)
	bound := b.Orb()
	if bound.Min[0] != -114.0 || bound.Min[1] != 46.8 {
		t.Fatalf("unexpected min: %v", bound.Min)
	}
	if bound.Max[0] != -113.9 || bound.Max[1] != 46.9 {
		t.Fatalf("unexpected max: %v", bound.Max)
	}
}
