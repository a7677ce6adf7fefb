package cache_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alfreddev/weatherproxy/internal/cache"
)

func newCache(enabled bool, ttl time.Duration, maxKeys int) *cache.Cache {
	return cache.New(zerolog.Nop(), enabled, ttl, maxKeys)
}

func TestCacheRoundTrip(t *testing.T) {
	c := newCache(true, time.Hour, 100)
	c.Set("fp1", []byte(`{"temp":72}`))

	body, ok := c.Get("fp1")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(body) != `{"temp":72}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	c := newCache(true, time.Millisecond, 100)
	c.Set("fp1", []byte("x"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("fp1"); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestCacheDisabledAlwaysMisses(t *testing.T) {
	c := newCache(false, time.Hour, 100)
	c.Set("fp1", []byte("x"))
	if _, ok := c.Get("fp1"); ok {
		t.Fatal("expected disabled cache to miss")
	}
	if c.Size() != 0 {
		t.Fatalf("expected disabled Set to be a no-op, size=%d", c.Size())
	}
}

func TestCacheEvictsOldestOnOverflow(t *testing.T) {
	c := newCache(true, time.Hour, 2)
	c.Set("fp1", []byte("a"))
	c.Set("fp2", []byte("b"))
	c.Set("fp3", []byte("c"))

	if _, ok := c.Get("fp1"); ok {
		t.Fatal("expected oldest entry evicted")
	}
	if _, ok := c.Get("fp2"); !ok {
		t.Fatal("expected fp2 to survive")
	}
	if _, ok := c.Get("fp3"); !ok {
		t.Fatal("expected fp3 to survive")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size=2, got %d", c.Size())
	}
}

func TestCacheClearReturnsCount(t *testing.T) {
	c := newCache(true, time.Hour, 100)
	c.Set("fp1", []byte("a"))
	c.Set("fp2", []byte("b"))

	if n := c.Clear(); n != 2 {
		t.Fatalf("expected Clear to report 2, got %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache after Clear, got size=%d", c.Size())
	}
}

func TestCacheHitAndWriteCounters(t *testing.T) {
	c := newCache(true, time.Hour, 100)
	c.Set("fp1", []byte("a"))
	c.Get("fp1")
	c.Get("fp1")
	c.Get("missing")

	if c.WriteCount() != 1 {
		t.Fatalf("expected 1 write, got %d", c.WriteCount())
	}
	if c.HitCount() != 2 {
		t.Fatalf("expected 2 hits, got %d", c.HitCount())
	}
}
