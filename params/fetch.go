package params

import "time"

// FetchConfig bounds the HTTP client behind tile fetches.
type FetchConfig struct {
	// Timeout bounds a single tile request. An expired request is a
	// transport failure, which reads the same as a missing tile.
	Timeout time.Duration

	// RPS and Burst configure the client-side rate limiter.
	// RPS 0 means unlimited.
	RPS   float64
	Burst int
}

func DefaultFetchConfig() *FetchConfig {
	return &FetchConfig{
		Timeout: 10 * time.Second,
		RPS:     0,
		Burst:   1,
	}
}

// CacheConfig layers caches over a tile source.
type CacheConfig struct {
	// MemTTL is the lifetime of tiles in the in-memory cache.
	// 0 disables it.
	MemTTL time.Duration

	// Persistent enables the bbolt-backed tile cache under the datadir.
	Persistent bool
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		MemTTL:     15 * time.Minute,
		Persistent: false,
	}
}

// CacheLastRetrievedTTL bounds how long a completed retrieval is
// answerable from memory without re-running the scan.
var CacheLastRetrievedTTL = 5 * time.Minute

// TileProxyCacheSize is the entry cap on the daemon's tile proxy LRU.
var TileProxyCacheSize = 1024

// GeocodeCacheSize caps the memoized reverse geocode lookups.
var GeocodeCacheSize = 4096
