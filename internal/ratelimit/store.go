package ratelimit

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Record tracks one client's submissions inside the current window.
type Record struct {
	WindowStart time.Time
	Count       int
}

// Store holds per-client window records. Implementations do not need to be
// safe for concurrent use; the Limiter serializes access. Expiry inside the
// store is housekeeping only — the Limiter treats stale records as absent
// regardless of whether the store evicted them.
type Store interface {
	Get(clientID string) (Record, bool)
	Set(clientID string, rec Record, ttl time.Duration)
	Sweep()
}

// CacheStore is a Store backed by an in-memory TTL cache. Entries carry the
// window duration as their lifetime so a sweep drops exactly the expired ones.
type CacheStore struct {
	cache *gocache.Cache
}

func NewCacheStore() *CacheStore {
	// No internal janitor; the Limiter drives Sweep on its own schedule
	return &CacheStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

func (s *CacheStore) Get(clientID string) (Record, bool) {
	v, ok := s.cache.Get(clientID)
	if !ok {
		return Record{}, false
	}
	return v.(Record), true
}

func (s *CacheStore) Set(clientID string, rec Record, ttl time.Duration) {
	s.cache.Set(clientID, rec, ttl)
}

func (s *CacheStore) Sweep() {
	s.cache.DeleteExpired()
}

// Len reports the number of live records, expired ones included until swept.
func (s *CacheStore) Len() int {
	return s.cache.ItemCount()
}
