// Package upstream provides the single shared HTTP client used for
// every call to the weather provider's API, so connections are reused
// across requests and credentials rather than dialed per request.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/alfreddev/weatherproxy/internal/apierrors"
	"github.com/alfreddev/weatherproxy/internal/fingerprint"
)

const baseURL = "https://api.openweathermap.org/data/3.0/onecall"

// PoolConfig tunes the shared transport. Mirrors the knobs a
// connection-pool manager exposes per host, specialized here to the
// one upstream host the gateway talks to.
type PoolConfig struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	DialTimeout         time.Duration
	KeepAlive           time.Duration
	MaxRedirects        int
}

// DefaultPoolConfig returns production-grade pool defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxIdleConns:        128,
		MaxIdleConnsPerHost: 32,
		MaxConnsPerHost:     64,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialTimeout:         10 * time.Second,
		KeepAlive:           30 * time.Second,
		MaxRedirects:        5,
	}
}

// Metrics tracks connection pool utilization for the Telemetry surface.
type Metrics struct {
	activeConnections int64
	totalRequests     int64
	totalErrors       int64
	connectionReuses  int64
}

func (m *Metrics) Snapshot() (active, total, errs, reuses int64) {
	return atomic.LoadInt64(&m.activeConnections),
		atomic.LoadInt64(&m.totalRequests),
		atomic.LoadInt64(&m.totalErrors),
		atomic.LoadInt64(&m.connectionReuses)
}

// Client is the shared upstream HTTP client. One instance per process,
// reused across every credential and request.
type Client struct {
	http    *http.Client
	timeout time.Duration
	metrics *Metrics
	baseURL string
}

// New builds a Client with a pooled transport and the given per-request
// timeout (ApiTimeout). timeout bounds each individual upstream attempt
// independently of caller cancellation (see the Fetch Pipeline).
func New(cfg PoolConfig, timeout time.Duration) *Client {
	dialer := &net.Dialer{Timeout: cfg.DialTimeout, KeepAlive: cfg.KeepAlive}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
	}

	metrics := &Metrics{}
	maxRedirects := cfg.MaxRedirects

	return &Client{
		http: &http.Client{
			Transport: &metricsRoundTripper{inner: transport, metrics: metrics},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		timeout: timeout,
		metrics: metrics,
		baseURL: baseURL,
	}
}

// Metrics returns the pool's connection metrics.
func (c *Client) Metrics() *Metrics { return c.metrics }

// CloseIdleConnections closes the pool's idle connections. Called
// during graceful shutdown, after the HTTP server stops accepting new
// requests and in-flight calls have drained.
func (c *Client) CloseIdleConnections() { c.http.CloseIdleConnections() }

// RedirectHostForTest points the client at a different base URL. Test
// use only — production wiring never calls this.
func (c *Client) RedirectHostForTest(url string) { c.baseURL = url }

// Fetch issues one onecall request using secret as the appid, bounded
// by the client's configured ApiTimeout regardless of ctx's deadline.
// The timeout is detached from ctx's own cancellation: once dispatched,
// a caller disconnect or client-side cancel must not abort the call,
// since the cache-fill and ledger-increment side effects on success
// still have to complete. Returns the response body on 2xx; otherwise
// an *apierrors.UpstreamHTTPError (non-2xx) or
// *apierrors.UpstreamTransportError (network/timeout failure).
func (c *Client) Fetch(ctx context.Context, secret string, p fingerprint.Params) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, &apierrors.UpstreamTransportError{Cause: err}
	}
	req.URL.RawQuery = buildQuery(secret, p).Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		// *url.Error's message embeds the request URL, which carries the
		// secret as appid; keep only the underlying cause.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &apierrors.UpstreamTransportError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apierrors.UpstreamTransportError{Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apierrors.UpstreamHTTPError{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}

// metricsRoundTripper wraps the shared transport to track connection
// pool utilization without touching request/response bodies.
type metricsRoundTripper struct {
	inner   http.RoundTripper
	metrics *Metrics
}

func (m *metricsRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt64(&m.metrics.activeConnections, 1)
	defer atomic.AddInt64(&m.metrics.activeConnections, -1)
	atomic.AddInt64(&m.metrics.totalRequests, 1)

	resp, err := m.inner.RoundTrip(req)
	if err != nil {
		atomic.AddInt64(&m.metrics.totalErrors, 1)
		return nil, err
	}
	if !resp.Close {
		atomic.AddInt64(&m.metrics.connectionReuses, 1)
	}
	return resp, nil
}
