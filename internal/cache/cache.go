// Package cache implements the Result Cache: a bounded, in-process
// fingerprint → response-body map with TTL expiry and insertion-order
// eviction on overflow.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type entry struct {
	fingerprint string
	body        []byte
	insertedAt  time.Time
	expiresAt   time.Time
}

// Cache is the Result Cache. A zero-value Cache is not usable; build one
// with New. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	logger  zerolog.Logger
	enabled bool
	ttl     time.Duration
	maxKeys int

	// order tracks insertion order for overflow eviction; index maps a
	// fingerprint to its list element so Get/Set are O(1).
	order *list.List
	index map[string]*list.Element

	stopSweep chan struct{}
	sweepOnce sync.Once

	hits   int64
	writes int64
}

// New builds a Cache. When enabled is false, Get always misses and Set
// is a no-op, the global disable switch.
func New(logger zerolog.Logger, enabled bool, ttl time.Duration, maxKeys int) *Cache {
	return &Cache{
		logger:    logger.With().Str("component", "cache").Logger(),
		enabled:   enabled,
		ttl:       ttl,
		maxKeys:   maxKeys,
		order:     list.New(),
		index:     make(map[string]*list.Element),
		stopSweep: make(chan struct{}),
	}
}

// Get returns the cached body for fingerprint, if present and unexpired.
// The returned slice is the stored slice itself — callers must treat it
// as immutable and not mutate it in place.
func (c *Cache) Get(fp string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	c.mu.RLock()
	el, ok := c.index[fp]
	if !ok {
		c.mu.RUnlock()
		return nil, false
	}
	e := el.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.mu.RUnlock()
		return nil, false
	}
	body := e.body
	c.mu.RUnlock()

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return body, true
}

// Set stores body under fp with TTL CacheTTL, evicting the oldest entry
// if the cache is at capacity. A no-op when the cache is disabled.
func (c *Cache) Set(fp string, body []byte) {
	if !c.enabled {
		return
	}

	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[fp]; ok {
		c.order.Remove(el)
		delete(c.index, fp)
	}

	for c.maxKeys > 0 && c.order.Len() >= c.maxKeys {
		c.evictOldestLocked()
	}

	e := &entry{fingerprint: fp, body: body, insertedAt: now, expiresAt: now.Add(c.ttl)}
	el := c.order.PushBack(e)
	c.index[fp] = el
	c.writes++
}

// Clear empties the cache and returns the number of entries removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.order.Len()
	c.order = list.New()
	c.index = make(map[string]*list.Element)
	return n
}

// Size returns the current entry count, including not-yet-swept expired
// entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// Enabled, TTL, and MaxKeys expose the cache's static configuration for
// the /data/3.0/cache/info admin endpoint.
func (c *Cache) Enabled() bool      { return c.enabled }
func (c *Cache) TTL() time.Duration { return c.ttl }
func (c *Cache) MaxKeys() int       { return c.maxKeys }

// HitCount and WriteCount back the Telemetry snapshot.
func (c *Cache) HitCount() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits
}

func (c *Cache) WriteCount() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.writes
}

// evictOldestLocked removes the front (oldest-inserted) entry. Caller
// must hold c.mu.
func (c *Cache) evictOldestLocked() {
	front := c.order.Front()
	if front == nil {
		return
	}
	e := front.Value.(*entry)
	c.order.Remove(front)
	delete(c.index, e.fingerprint)
}

// RunSweeper periodically removes expired entries so Size() reflects
// live entries even without read traffic. Blocks until ctx-independent
// Stop is called; run it in its own goroutine.
func (c *Cache) RunSweeper(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopSweep:
			return
		}
	}
}

// Stop halts the sweeper goroutine started by RunSweeper. Safe to call
// more than once.
func (c *Cache) Stop() {
	c.sweepOnce.Do(func() { close(c.stopSweep) })
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	var next *list.Element
	for el := c.order.Front(); el != nil; el = next {
		next = el.Next()
		e := el.Value.(*entry)
		if now.After(e.expiresAt) {
			c.order.Remove(el)
			delete(c.index, e.fingerprint)
		}
	}
}
