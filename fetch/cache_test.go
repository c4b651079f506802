package fetch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotblauer/orthod/tiles"
)

// countingSource serves canned tiles and counts upstream fetches.
type countingSource struct {
	tiles   map[tiles.QuadKey][]byte
	fetches atomic.Int32
}

func (s *countingSource) Fetch(ctx context.Context, qk tiles.QuadKey) ([]byte, error) {
	s.fetches.Add(1)
	return s.tiles[qk], nil
}

func (s *countingSource) Null(ctx context.Context) ([]byte, error) {
	return []byte("placeholder"), nil
}

type mapTileStore struct {
	m map[string][]byte
}

func (s *mapTileStore) ReadTile(z tiles.Zoom, qk tiles.QuadKey) ([]byte, error) {
	return s.m[qk.String()], nil
}

func (s *mapTileStore) WriteTile(z tiles.Zoom, qk tiles.QuadKey, b []byte) error {
	s.m[qk.String()] = b
	return nil
}

func TestMemCache(t *testing.T) {
	upstream := &countingSource{tiles: map[tiles.QuadKey][]byte{
		"0213": []byte("a"),
		"0231": []byte("b"),
	}}
	cache := NewMemCache(upstream, time.Minute)
	defer cache.Stop()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		b, err := cache.Fetch(ctx, "0213")
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "a" {
			t.Fatalf("unexpected tile: %s", b)
		}
	}
	if n := upstream.fetches.Load(); n != 1 {
		t.Fatalf("upstream fetched %d times, want 1", n)
	}

	if _, err := cache.Fetch(ctx, "0231"); err != nil {
		t.Fatal(err)
	}
	if n := upstream.fetches.Load(); n != 2 {
		t.Fatalf("upstream fetched %d times, want 2", n)
	}

	// Null passes through the embedded source.
	b, err := cache.Null(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "placeholder" {
		t.Fatalf("unexpected null tile: %s", b)
	}
}

func TestDBCache(t *testing.T) {
	upstream := &countingSource{tiles: map[tiles.QuadKey][]byte{
		"0213": []byte("a"),
	}}
	store := &mapTileStore{m: map[string][]byte{}}
	cache := NewDBCache(upstream, store)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		b, err := cache.Fetch(ctx, "0213")
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "a" {
			t.Fatalf("unexpected tile: %s", b)
		}
	}
	if n := upstream.fetches.Load(); n != 1 {
		t.Fatalf("upstream fetched %d times, want 1", n)
	}
	if string(store.m["0213"]) != "a" {
		t.Fatal("tile not persisted")
	}
}
