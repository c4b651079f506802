// Package cache holds process-wide caches shared by the API and daemon.
package cache

import (
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/state"
)

// LastRetrievedTTLCache remembers completed retrievals by request ID,
// so repeated identical requests can be answered from the stored image
// instead of re-running the level scan.
var LastRetrievedTTLCache = ttlcache.New[string, *state.Record](
	ttlcache.WithTTL[string, *state.Record](params.CacheLastRetrievedTTL))

func SetLastRetrieved(id string, r *state.Record) {
	LastRetrievedTTLCache.Set(id, r, ttlcache.DefaultTTL)
}

// GetLastRetrieved returns the cached record for a request ID, or nil.
func GetLastRetrieved(id string) *state.Record {
	item := LastRetrievedTTLCache.Get(id)
	if item == nil {
		return nil
	}
	return item.Value()
}

// tileProxyCache backs the daemon's raw tile proxy.
// lru.Cache is not safe for concurrent use, so all access
// goes through tileProxyMu.
var (
	tileProxyMu    sync.Mutex
	tileProxyCache = lru.New(params.TileProxyCacheSize)
)

func GetTile(key string) ([]byte, bool) {
	tileProxyMu.Lock()
	defer tileProxyMu.Unlock()
	v, ok := tileProxyCache.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func SetTile(key string, b []byte) {
	tileProxyMu.Lock()
	defer tileProxyMu.Unlock()
	tileProxyCache.Add(key, b)
}
