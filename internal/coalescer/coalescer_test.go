package coalescer_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alfreddev/weatherproxy/internal/coalescer"
)

func TestGetOrStartInvokesProduceOnce(t *testing.T) {
	c := coalescer.New()
	var calls int64

	const n = 50
	var wg sync.WaitGroup
	results := make([]coalescer.Result, n)

	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = c.GetOrStart("fp1", func() coalescer.Result {
				atomic.AddInt64(&calls, 1)
				return coalescer.Result{Body: []byte("shared")}
			})
		}(i)
	}
	close(start)
	wg.Wait()

	if calls != 1 {
		t.Fatalf("expected produce invoked once, got %d", calls)
	}
	for i, r := range results {
		if string(r.Body) != "shared" {
			t.Fatalf("waiter %d got different outcome: %+v", i, r)
		}
	}
}

func TestGetOrStartDeliversErrorToAllWaiters(t *testing.T) {
	c := coalescer.New()
	wantErr := errors.New("upstream exhausted")

	var wg sync.WaitGroup
	errs := make([]error, 10)
	start := make(chan struct{})
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			r := c.GetOrStart("fp-err", func() coalescer.Result {
				return coalescer.Result{Err: wantErr}
			})
			errs[i] = r.Err
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != wantErr {
			t.Fatalf("waiter %d expected shared error, got %v", i, err)
		}
	}
}

func TestGetOrStartRemovesEntryAfterCompletion(t *testing.T) {
	c := coalescer.New()
	c.GetOrStart("fp1", func() coalescer.Result { return coalescer.Result{Body: []byte("x")} })
	if c.InFlightCount() != 0 {
		t.Fatalf("expected entry removed after completion, got %d in flight", c.InFlightCount())
	}
}

func TestGetOrStartDistinctFingerprintsRunIndependently(t *testing.T) {
	c := coalescer.New()
	var calls int64
	c.GetOrStart("fp1", func() coalescer.Result {
		atomic.AddInt64(&calls, 1)
		return coalescer.Result{}
	})
	c.GetOrStart("fp2", func() coalescer.Result {
		atomic.AddInt64(&calls, 1)
		return coalescer.Result{}
	})
	if calls != 2 {
		t.Fatalf("expected 2 independent calls, got %d", calls)
	}
}
