package cmd

import (
	"testing"

	"github.com/rotblauer/orthod/tiles"
)

func TestResRows(t *testing.T) {
	rows := resRows(0, 96)
	if want := int(tiles.MaxZoom); len(rows) != want {
		t.Fatalf("got %d rows, want %d", len(rows), want)
	}
	// Zoom 1 at the equator is the canonical 78271.517 m/px.
	if got := rows[0][1]; got != "78271.517" {
		t.Errorf("zoom 1 resolution: got %s", got)
	}
	// Each level halves the one above; spot-check the bottom of the pyramid.
	last := rows[len(rows)-1]
	if last[0] != "23" {
		t.Errorf("last row zoom: got %s", last[0])
	}
	if got := last[1]; got != "0.019" {
		t.Errorf("zoom 23 resolution: got %s", got)
	}
}
