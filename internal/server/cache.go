package server

import (
	"time"

	"github.com/cwbudde/weberfit/internal/weber"
	"github.com/patrickmn/go-cache"
)

// DefaultCacheTTL is how long a finished result answers identical requests
const DefaultCacheTTL = 30 * time.Minute

// ResultCache memoises solve results by request fingerprint (see cacheKey).
// Solves are deterministic, so a hit is exactly what a rerun would produce.
type ResultCache struct {
	results *cache.Cache
}

// NewResultCache creates a cache whose entries expire after ttl
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{
		results: cache.New(ttl, 2*ttl),
	}
}

// Get returns a copy of the cached result for key
func (rc *ResultCache) Get(key string) (weber.Result, bool) {
	v, ok := rc.results.Get(key)
	if !ok {
		return weber.Result{}, false
	}
	res, ok := v.(weber.Result)
	return res, ok
}

// Set stores res under key with the default expiration
func (rc *ResultCache) Set(key string, res weber.Result) {
	rc.results.SetDefault(key, res)
}

// Len returns the number of cached results, including expired ones not yet evicted
func (rc *ResultCache) Len() int {
	return rc.results.ItemCount()
}

// Flush drops every cached result
func (rc *ResultCache) Flush() {
	rc.results.Flush()
}
