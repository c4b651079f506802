package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rotblauer/orthod/tiles"
)

// MemCache wraps a Source with an expiring in-memory tile cache.
type MemCache struct {
	Source
	cache *ttlcache.Cache[string, []byte]
}

func NewMemCache(source Source, ttl time.Duration) *MemCache {
	cache := ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](ttl),
	)
	go cache.Start()
	return &MemCache{Source: source, cache: cache}
}

func (c *MemCache) Fetch(ctx context.Context, qk tiles.QuadKey) ([]byte, error) {
	if item := c.cache.Get(qk.String()); item != nil {
		return item.Value(), nil
	}
	b, err := c.Source.Fetch(ctx, qk)
	if err != nil {
		return nil, err
	}
	c.cache.Set(qk.String(), b, ttlcache.DefaultTTL)
	return b, nil
}

// Stop stops the cache's expiration loop.
func (c *MemCache) Stop() {
	c.cache.Stop()
}

// A TileStore persists raw tiles by zoom and quadkey.
// A read miss is (nil, nil), not an error.
type TileStore interface {
	ReadTile(z tiles.Zoom, qk tiles.QuadKey) ([]byte, error)
	WriteTile(z tiles.Zoom, qk tiles.QuadKey, b []byte) error
}

// DBCache wraps a Source with a persistent tile store.
// Placeholders get cached too; deciding validity is the caller's business.
type DBCache struct {
	Source
	store TileStore
}

func NewDBCache(source Source, store TileStore) *DBCache {
	return &DBCache{Source: source, store: store}
}

func (c *DBCache) Fetch(ctx context.Context, qk tiles.QuadKey) ([]byte, error) {
	if b, err := c.store.ReadTile(qk.Zoom(), qk); err == nil && b != nil {
		return b, nil
	} else if err != nil {
		slog.Warn("Tile cache read failed", "quadkey", qk, "error", err)
	}
	b, err := c.Source.Fetch(ctx, qk)
	if err != nil {
		return nil, err
	}
	if err := c.store.WriteTile(qk.Zoom(), qk, b); err != nil {
		slog.Warn("Tile cache write failed", "quadkey", qk, "error", err)
	}
	return b, nil
}
