package upstream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alfreddev/weatherproxy/internal/apierrors"
	"github.com/alfreddev/weatherproxy/internal/fingerprint"
	"github.com/alfreddev/weatherproxy/internal/upstream"
)

func TestFetchReturnsBodyOn2xx(t *testing.T) {
	// upstream.baseURL is a compile-time constant pointed at the real
	// OpenWeatherMap host, so this exercises buildQuery/metrics wiring
	// against a local server by swapping the client's base URL with
	// RedirectHostForTest instead.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appid") != "secret-1" {
			t.Errorf("expected appid=secret-1, got %q", r.URL.Query().Get("appid"))
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"temp":72}`))
	}))
	defer srv.Close()

	c := upstream.New(upstream.DefaultPoolConfig(), 2*time.Second)
	c.RedirectHostForTest(srv.URL)

	body, err := c.Fetch(context.Background(), "secret-1", fingerprint.Params{Lat: 1, Lon: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"temp":72}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestFetchSurfacesUpstreamHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"cod":429}`))
	}))
	defer srv.Close()

	c := upstream.New(upstream.DefaultPoolConfig(), 2*time.Second)
	c.RedirectHostForTest(srv.URL)

	_, err := c.Fetch(context.Background(), "secret-1", fingerprint.Params{Lat: 1, Lon: 2})
	var httpErr *apierrors.UpstreamHTTPError
	if err == nil {
		t.Fatal("expected error")
	}
	if ue, ok := err.(*apierrors.UpstreamHTTPError); ok {
		httpErr = ue
	}
	if httpErr == nil || httpErr.Status != http.StatusTooManyRequests {
		t.Fatalf("expected UpstreamHTTPError 429, got %v", err)
	}
}

func TestFetchSurfacesTransportError(t *testing.T) {
	c := upstream.New(upstream.DefaultPoolConfig(), 2*time.Second)
	c.RedirectHostForTest("http://127.0.0.1:1")

	_, err := c.Fetch(context.Background(), "secret-1", fingerprint.Params{Lat: 1, Lon: 2})
	if _, ok := err.(*apierrors.UpstreamTransportError); !ok {
		t.Fatalf("expected UpstreamTransportError, got %T: %v", err, err)
	}
}
