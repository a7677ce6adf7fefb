// Package telemetry tracks request counts, cache effectiveness, and
// response-time distribution for the JSON stats surface, and mirrors
// the same measurements to Prometheus for scrape-based observability.
package telemetry

import "sync/atomic"

// Counter is a monotonically increasing value, safe for concurrent use.
type Counter struct{ value int64 }

func (c *Counter) Inc()         { atomic.AddInt64(&c.value, 1) }
func (c *Counter) Add(n int64)  { atomic.AddInt64(&c.value, n) }
func (c *Counter) Value() int64 { return atomic.LoadInt64(&c.value) }

// Gauge is a value that can go up and down, safe for concurrent use.
type Gauge struct{ value int64 }

func (g *Gauge) Inc()         { atomic.AddInt64(&g.value, 1) }
func (g *Gauge) Dec()         { atomic.AddInt64(&g.value, -1) }
func (g *Gauge) Set(v int64)  { atomic.StoreInt64(&g.value, v) }
func (g *Gauge) Value() int64 { return atomic.LoadInt64(&g.value) }

// Reservoir tracks a response-time distribution as cumulative sum,
// minimum, and maximum — average is derived as sum/count at read time.
type Reservoir struct {
	sum   int64
	count int64
	min   int64
	max   int64
}

// Observe records one response-time sample in milliseconds.
func (r *Reservoir) Observe(ms int64) {
	atomic.AddInt64(&r.sum, ms)
	atomic.AddInt64(&r.count, 1)

	for {
		cur := atomic.LoadInt64(&r.min)
		if cur != 0 && cur <= ms {
			break
		}
		if atomic.CompareAndSwapInt64(&r.min, cur, ms) {
			break
		}
	}
	for {
		cur := atomic.LoadInt64(&r.max)
		if cur >= ms {
			break
		}
		if atomic.CompareAndSwapInt64(&r.max, cur, ms) {
			break
		}
	}
}

// ReservoirSnapshot is a read-only view of a Reservoir.
type ReservoirSnapshot struct {
	Sum     int64
	Count   int64
	Min     int64
	Max     int64
	Average float64
}

func (r *Reservoir) Snapshot() ReservoirSnapshot {
	count := atomic.LoadInt64(&r.count)
	sum := atomic.LoadInt64(&r.sum)
	avg := 0.0
	if count > 0 {
		avg = float64(sum) / float64(count)
	}
	return ReservoirSnapshot{
		Sum:     sum,
		Count:   count,
		Min:     atomic.LoadInt64(&r.min),
		Max:     atomic.LoadInt64(&r.max),
		Average: avg,
	}
}

// Telemetry is the process-wide stats registry for one gateway
// instance. All fields are safe for concurrent use; Snapshot is
// read-only and safe for concurrent readers.
type Telemetry struct {
	TotalRequests Counter
	CacheHits     Counter
	CacheWrites   Counter
	UpstreamCalls Counter
	Errors        Counter
	InFlight      Gauge
	ResponseTime  Reservoir
}

// New builds an empty Telemetry registry.
func New() *Telemetry {
	return &Telemetry{}
}

// Snapshot is a read-only, point-in-time view of every tracked measure.
type Snapshot struct {
	TotalRequests int64             `json:"totalRequests"`
	CacheHits     int64             `json:"cacheHits"`
	CacheWrites   int64             `json:"cacheWrites"`
	UpstreamCalls int64             `json:"upstreamCalls"`
	Errors        int64             `json:"errors"`
	InFlight      int64             `json:"inFlight"`
	CacheHitRate  float64           `json:"cacheHitRate"`
	ResponseTime  ReservoirSnapshot `json:"responseTimeMs"`
}

// Snapshot returns a consistent-enough read of all counters. Individual
// fields may be observed at slightly different instants under
// concurrent writers; safe for concurrent readers, not a stronger
// atomicity guarantee.
func (t *Telemetry) Snapshot() Snapshot {
	total := t.TotalRequests.Value()
	hits := t.CacheHits.Value()
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return Snapshot{
		TotalRequests: total,
		CacheHits:     hits,
		CacheWrites:   t.CacheWrites.Value(),
		UpstreamCalls: t.UpstreamCalls.Value(),
		Errors:        t.Errors.Value(),
		InFlight:      t.InFlight.Value(),
		CacheHitRate:  hitRate,
		ResponseTime:  t.ResponseTime.Snapshot(),
	}
}
