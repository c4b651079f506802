package names

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/rotblauer/orthod/geo"
	srgeo "github.com/sams96/rgeo"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Missoula", "missoula"},
		{"United States of America", "united-states-of-america"},
		{"Provence-Alpes-Côte d'Azur", "provence-alpes-c-te-d-azur"},
		{"  --weird__ input!! ", "weird-input"},
		{"", ""},
		{"!!!", ""},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Errorf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

type fakeGeocoder struct {
	loc   srgeo.Location
	err   error
	calls int
}

func (f *fakeGeocoder) GetLocation(pt orb.Point) (srgeo.Location, error) {
	f.calls++
	return f.loc, f.err
}

func TestForBox(t *testing.T) {
	box := geo.NewBoundingBox(46.88, -114.00, 46.87, -113.99)

	n := &Namer{Geocoder: &fakeGeocoder{loc: srgeo.Location{
		City:     "Missoula",
		Province: "Montana",
		Country:  "United States of America",
	}}}
	if got, want := n.ForBox(box), "missoula-montana-united-states-of-america"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// Geocoder errors fall back to coordinates.
	n = &Namer{Geocoder: &fakeGeocoder{err: errors.New("country not found")}}
	if got, want := n.ForBox(box), Coordinate(box); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// So does no geocoder at all.
	var nn *Namer
	if got, want := nn.ForBox(box), Coordinate(box); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestForBoxMemoized(t *testing.T) {
	box := geo.NewBoundingBox(46.88, -114.00, 46.87, -113.99)
	fg := &fakeGeocoder{loc: srgeo.Location{Country: "Norway"}}
	n := NewNamer(fg)
	for i := 0; i < 3; i++ {
		if got, want := n.ForBox(box), "norway"; got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
	if fg.calls != 1 {
		t.Errorf("geocoder called %d times, want 1", fg.calls)
	}
}

func TestCoordinate(t *testing.T) {
	box := geo.NewBoundingBox(46.88, -114.00, 46.86, -113.98)
	if got, want := Coordinate(box), "46.87000_-113.99000"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestImageFilename(t *testing.T) {
	if got, want := ImageFilename(16, ""), "aerialImage_16.jpeg"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := ImageFilename(16, "missoula-montana"), "aerialImage_16_missoula-montana.jpeg"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
