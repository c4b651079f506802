// Package names turns retrievals into filesystem-safe names,
// place-flavored when a reverse geocoder is available.
package names

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
	"github.com/rotblauer/orthod/geo"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/rgeo"
	"github.com/rotblauer/orthod/tiles"
)

// Namer builds name components for retrieved imagery.
type Namer struct {
	// Geocoder contributes place names when set.
	// Nil falls back to coordinate naming.
	Geocoder rgeo.ReverseGeocoder

	cache *lru.Cache[string, string]
}

// NewNamer wraps a geocoder with lookup memoization by center
// coordinate. A nil geocoder is allowed.
func NewNamer(g rgeo.ReverseGeocoder) *Namer {
	// lru.New errors only on size <= 0.
	c, _ := lru.New[string, string](params.GeocodeCacheSize)
	return &Namer{Geocoder: g, cache: c}
}

// ForBox names a bounding box, city-province-country style when the
// geocoder knows the place, center coordinates otherwise.
func (n *Namer) ForBox(box geo.BoundingBox) string {
	if n == nil || n.Geocoder == nil {
		return Coordinate(box)
	}
	key := Coordinate(box)
	if n.cache != nil {
		if name, ok := n.cache.Get(key); ok {
			return name
		}
	}
	lat, lon := box.Center()
	loc, err := n.Geocoder.GetLocation(orb.Point{lon, lat})
	if err != nil {
		slog.Warn("Reverse geocode failed", "error", err)
		return Coordinate(box)
	}
	parts := []string{}
	for _, p := range []string{loc.City, loc.Province, loc.Country} {
		if s := Sanitize(p); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return Coordinate(box)
	}
	name := strings.Join(parts, "-")
	if n.cache != nil {
		n.cache.Add(key, name)
	}
	return name
}

// Coordinate names a box by its center point.
func Coordinate(box geo.BoundingBox) string {
	lat, lon := box.Center()
	return strconv.FormatFloat(lat, 'f', 5, 64) + "_" + strconv.FormatFloat(lon, 'f', 5, 64)
}

// Sanitize lowercases s and collapses anything outside [a-z0-9] into
// single dashes, with none left dangling at either end.
func Sanitize(s string) string {
	s = strings.ToLower(s)
	sb := strings.Builder{}
	pendingDash := false
	for _, r := range s {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingDash = sb.Len() > 0
			continue
		}
		if pendingDash {
			sb.WriteByte('-')
			pendingDash = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ImageFilename is the output filename for a retrieved composite.
func ImageFilename(z tiles.Zoom, name string) string {
	if name == "" {
		return fmt.Sprintf("aerialImage_%d.jpeg", z)
	}
	return fmt.Sprintf("aerialImage_%d_%s.jpeg", z, name)
}
