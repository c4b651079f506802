// Package geo holds the geodetic edge of the system: bounding boxes as
// callers hand them in, parsing, and the center-plus-extent expansion.
//
// The expansion is a flat-earth local approximation. It is good at
// building-to-city scale and drifts at continental scale; nothing
// downstream depends on it being a geodesic.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/rotblauer/orthod/tiles"
)

// BoundingBox is two opposite geodetic corners, in the order the caller
// gave them. Callers are not required to normalize; consumers that need
// min/max extents sort for themselves.
type BoundingBox struct {
	Lat1 float64 `json:"lat1"`
	Lon1 float64 `json:"lon1"`
	Lat2 float64 `json:"lat2"`
	Lon2 float64 `json:"lon2"`
}

func NewBoundingBox(lat1, lon1, lat2, lon2 float64) BoundingBox {
	return BoundingBox{Lat1: lat1, Lon1: lon1, Lat2: lat2, Lon2: lon2}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("%v,%v,%v,%v", b.Lat1, b.Lon1, b.Lat2, b.Lon2)
}

// Center returns the box's midpoint in degrees.
func (b BoundingBox) Center() (lat, lon float64) {
	return (b.Lat1 + b.Lat2) / 2, (b.Lon1 + b.Lon2) / 2
}

// CenterLatLng returns the box's midpoint as a normalized s2 coordinate.
func (b BoundingBox) CenterLatLng() s2.LatLng {
	lat, lon := b.Center()
	return s2.LatLngFromDegrees(lat, lon).Normalized()
}

// Orb returns the box as an orb.Bound, corners sorted min/max,
// points in (lon, lat) order per orb convention.
func (b BoundingBox) Orb() orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Min(b.Lon1, b.Lon2), math.Min(b.Lat1, b.Lat2)},
		Max: orb.Point{math.Max(b.Lon1, b.Lon2), math.Max(b.Lat1, b.Lat2)},
	}
}

// DimensionsMeters measures the box's east-west and north-south spans
// through its center, in meters.
func (b BoundingBox) DimensionsMeters() (w, h float64) {
	cLat, cLon := b.Center()
	bound := b.Orb()
	w = orbgeo.Distance(orb.Point{bound.Min[0], cLat}, orb.Point{bound.Max[0], cLat})
	h = orbgeo.Distance(orb.Point{cLon, bound.Min[1]}, orb.Point{cLon, bound.Max[1]})
	return w, h
}

// FromCenter expands a center point and a width/height in meters into a
// bounding box. One degree of latitude spans (2π/360)·R meters; the
// reciprocal converts a north-south shift in meters to degrees, and
// east-west shifts stretch by 1/cos(lat) on top of that.
func FromCenter(lat, lon, widthMeters, heightMeters float64) BoundingBox {
	ll := s2.LatLngFromDegrees(lat, lon).Normalized()
	lat, lon = ll.Lat.Degrees(), ll.Lng.Degrees()

	degPerMeter := 1 / (2 * math.Pi / 360 * tiles.EarthRadius)
	dLat := heightMeters / 2 * degPerMeter
	dLon := widthMeters / 2 * degPerMeter / math.Cos(lat*math.Pi/180)

	return NewBoundingBox(lat+dLat, lon-dLon, lat-dLat, lon+dLon)
}

func parseFloat(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return f, nil
}

// ParseCorners parses four corner values, lat1 lon1 lat2 lon2.
func ParseCorners(args []string) (BoundingBox, error) {
	if len(args) != 4 {
		return BoundingBox{}, fmt.Errorf("want 4 values (lat1 lon1 lat2 lon2), got %d", len(args))
	}
	names := []string{"lat1", "lon1", "lat2", "lon2"}
	vals := [4]float64{}
	for i, arg := range args {
		f, err := parseFloat(names[i], arg)
		if err != nil {
			return BoundingBox{}, err
		}
		vals[i] = f
	}
	return NewBoundingBox(vals[0], vals[1], vals[2], vals[3]), nil
}

// ParseCenter parses center-plus-extent values, lat lon widthMeters
// heightMeters, and expands them with FromCenter.
func ParseCenter(args []string) (BoundingBox, error) {
	if len(args) != 4 {
		return BoundingBox{}, fmt.Errorf("want 4 values (lat lon width height), got %d", len(args))
	}
	names := []string{"lat", "lon", "width", "height"}
	vals := [4]float64{}
	for i, arg := range args {
		f, err := parseFloat(names[i], arg)
		if err != nil {
			return BoundingBox{}, err
		}
		vals[i] = f
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return BoundingBox{}, fmt.Errorf("width and height must be positive meters")
	}
	return FromCenter(vals[0], vals[1], vals[2], vals[3]), nil
}

// ParseBBox parses a comma-separated "lat1,lon1,lat2,lon2" string,
// the shape the web daemon takes in its query params.
func ParseBBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("want 4 comma-separated values, got %d", len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return ParseCorners(parts)
}
