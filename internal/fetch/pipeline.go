// Package fetch implements the Fetch Pipeline: the top-level
// orchestration of one logical GetWeather request across the Result
// Cache, In-Flight Coalescer, Credential Selector, and Upstream Client.
package fetch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/alfreddev/weatherproxy/internal/apierrors"
	"github.com/alfreddev/weatherproxy/internal/cache"
	"github.com/alfreddev/weatherproxy/internal/coalescer"
	"github.com/alfreddev/weatherproxy/internal/credential"
	"github.com/alfreddev/weatherproxy/internal/fingerprint"
	"github.com/alfreddev/weatherproxy/internal/ledger"
	"github.com/alfreddev/weatherproxy/internal/telemetry"
	"github.com/alfreddev/weatherproxy/internal/upstream"
)

// Pipeline wires every subsystem GetWeather needs: cache lookup,
// coalescing, credential iteration with bounded retry, ledger updates,
// and telemetry.
type Pipeline struct {
	cache      *cache.Cache
	coalescer  *coalescer.Coalescer
	selector   *credential.Selector
	ledger     ledger.Ledger
	upstream   *upstream.Client
	telemetry  *telemetry.Telemetry
	prometheus *telemetry.PrometheusMirror
	logger     zerolog.Logger
	loc        *time.Location

	retryCount int
	retryDelay time.Duration
}

// Config bundles the pipeline's tunable knobs, mirroring the
// API_RETRY_COUNT/API_RETRY_DELAY env keys. ApiTimeout is applied by the
// upstream Client, not here.
type Config struct {
	RetryCount int
	RetryDelay time.Duration
}

// New builds a Pipeline. prometheus may be nil when METRICS_ENABLED is
// false.
func New(
	c *cache.Cache,
	co *coalescer.Coalescer,
	sel *credential.Selector,
	led ledger.Ledger,
	up *upstream.Client,
	tel *telemetry.Telemetry,
	prom *telemetry.PrometheusMirror,
	logger zerolog.Logger,
	loc *time.Location,
	cfg Config,
) *Pipeline {
	return &Pipeline{
		cache:      c,
		coalescer:  co,
		selector:   sel,
		ledger:     led,
		upstream:   up,
		telemetry:  tel,
		prometheus: prom,
		logger:     logger.With().Str("component", "fetch").Logger(),
		loc:        loc,
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
	}
}

// GetWeather runs the full pipeline for params and returns the upstream
// response body verbatim on success.
func (p *Pipeline) GetWeather(ctx context.Context, params fingerprint.Params) ([]byte, error) {
	start := time.Now()
	p.telemetry.TotalRequests.Inc()

	fp := fingerprint.Of(params)

	if body, hit := p.cache.Get(fp); hit {
		p.telemetry.CacheHits.Inc()
		p.recordLatency(start)
		if p.prometheus != nil {
			p.prometheus.Observe(true, false, 0, false, time.Since(start).Milliseconds())
		}
		return body, nil
	}

	var upstreamCalls int
	var produced bool
	result := p.coalescer.GetOrStart(fp, func() coalescer.Result {
		body, calls, err := p.fetch(context.WithoutCancel(ctx), fp, params)
		upstreamCalls = calls
		produced = true
		return coalescer.Result{Body: body, Err: err}
	})

	p.recordLatency(start)
	if result.Err != nil {
		p.telemetry.Errors.Inc()
	}
	if p.prometheus != nil {
		p.prometheus.Observe(false, produced && result.Err == nil, upstreamCalls, result.Err != nil, time.Since(start).Milliseconds())
	}
	return result.Body, result.Err
}

// Snapshot returns the Telemetry snapshot with its in-flight gauge
// sourced from the Coalescer, the authoritative count of distinct
// fingerprints currently coalescing a fetch.
func (p *Pipeline) Snapshot() telemetry.Snapshot {
	inFlight := int64(p.coalescer.InFlightCount())
	if p.prometheus != nil {
		p.prometheus.SetInFlight(inFlight)
	}
	snap := p.telemetry.Snapshot()
	snap.InFlight = inFlight
	return snap
}

// fetch runs the credential retry/failover loop. The Coalescer runs at
// most one fetch per fingerprint at a time.
func (p *Pipeline) fetch(ctx context.Context, fp string, params fingerprint.Params) ([]byte, int, error) {
	var lastErr error
	upstreamCalls := 0

	for attempt := 1; attempt <= p.retryCount; attempt++ {
		day := credential.DayKey(time.Now(), p.loc)

		candidates, err := p.selector.SelectAll(ctx, day)
		if err != nil {
			lastErr = err
			if attempt < p.retryCount {
				p.sleep(attempt)
			}
			continue
		}

		for _, cand := range candidates {
			upstreamCalls++
			body, err := p.upstream.Fetch(ctx, cand.Credential.Secret, params)
			if err == nil {
				if _, incErr := p.ledger.IncrementUsage(ctx, cand.Credential.ID, day); incErr != nil {
					p.logger.Warn().Err(incErr).Str("credential", cand.Credential.ID).Msg("usage increment failed")
				}
				p.telemetry.UpstreamCalls.Inc()
				p.cache.Set(fp, body)
				p.telemetry.CacheWrites.Inc()
				return body, upstreamCalls, nil
			}

			p.telemetry.UpstreamCalls.Inc()
			if _, incErr := p.ledger.IncrementError(ctx, cand.Credential.ID, day); incErr != nil {
				p.logger.Warn().Err(incErr).Str("credential", cand.Credential.ID).Msg("error increment failed")
			}
			lastErr = err
		}

		if attempt < p.retryCount {
			p.sleep(attempt)
		}
	}

	if lastErr == nil {
		lastErr = &apierrors.NoCredentialsAvailable{}
	}
	return nil, upstreamCalls, lastErr
}

// sleep applies linear backoff: RetryDelay × attempt, not exponential.
func (p *Pipeline) sleep(attempt int) {
	time.Sleep(p.retryDelay * time.Duration(attempt))
}

func (p *Pipeline) recordLatency(start time.Time) {
	p.telemetry.ResponseTime.Observe(time.Since(start).Milliseconds())
}
