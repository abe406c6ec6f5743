package gateway

import (
	"strconv"
	"sync"
	"time"
)

// dedupeCache is a TTL-based cache of recently dispatched events, keyed by
// event name and sequence number. A RESUME can replay events the handlers
// already saw; the cache keeps those replays from repeating side effects.
//
// Entries expire after TTL and are pruned lazily on each check.
type dedupeCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
}

func newDedupeCache(ttl time.Duration) *dedupeCache {
	return &dedupeCache{
		ttl:  ttl,
		seen: make(map[string]time.Time),
	}
}

// check records the (event, seq) pair and returns true if it was already
// seen within the TTL. Events without a sequence number are never deduped.
func (c *dedupeCache) check(event string, seq int64) bool {
	if seq == 0 {
		return false
	}
	key := event + ":" + strconv.FormatInt(seq, 10)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, at := range c.seen {
		if now.Sub(at) > c.ttl {
			delete(c.seen, k)
		}
	}
	if at, ok := c.seen[key]; ok && now.Sub(at) <= c.ttl {
		return true
	}
	c.seen[key] = now
	return false
}
