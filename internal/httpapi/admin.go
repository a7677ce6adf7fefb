package httpapi

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/alfreddev/weatherproxy/internal/apierrors"
	"github.com/alfreddev/weatherproxy/internal/cache"
	"github.com/alfreddev/weatherproxy/internal/fetch"
	"github.com/alfreddev/weatherproxy/internal/fingerprint"
	appmiddleware "github.com/alfreddev/weatherproxy/internal/middleware"
)

// adminHandlers bundles the operational surface: cache management,
// stats, and health family. All return JSON (except /stats/export with
// format=csv, which writes CSV); none check appid.
type adminHandlers struct {
	cache     *cache.Cache
	pipeline  *fetch.Pipeline
	startedAt time.Time
	version   string
}

func newAdminHandlers(c *cache.Cache, p *fetch.Pipeline, version string) *adminHandlers {
	return &adminHandlers{cache: c, pipeline: p, startedAt: time.Now(), version: version}
}

func (a *adminHandlers) clearCache(w http.ResponseWriter, r *http.Request) {
	n := a.cache.Clear()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cleared": n,
	})
}

type warmupLocation struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Units string  `json:"units,omitempty"`
	Lang  string  `json:"lang,omitempty"`
}

type warmupRequest struct {
	Locations []warmupLocation `json:"locations"`
}

func (a *adminHandlers) warmupCache(w http.ResponseWriter, r *http.Request) {
	requestID := appmiddleware.RequestIDFromContext(r.Context())

	var req warmupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, requestID, &apierrors.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}
	if len(req.Locations) == 0 {
		writeError(w, requestID, &apierrors.ValidationError{Field: "locations", Message: "must not be empty"})
		return
	}
	if len(req.Locations) > 100 {
		writeError(w, requestID, &apierrors.ValidationError{Field: "locations", Message: "max 100 entries"})
		return
	}

	warmed := 0
	failed := 0
	for _, loc := range req.Locations {
		params := fingerprint.Params{Lat: loc.Lat, Lon: loc.Lon, Units: loc.Units, Lang: loc.Lang}
		if _, err := a.pipeline.GetWeather(r.Context(), params); err != nil {
			failed++
			continue
		}
		warmed++
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"warmed":  warmed,
		"failed":  failed,
	})
}

func (a *adminHandlers) cacheInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"enabled": a.cache.Enabled(),
		"size":    a.cache.Size(),
		"maxKeys": a.cache.MaxKeys(),
		"ttlSec":  a.cache.TTL().Seconds(),
		"hits":    a.cache.HitCount(),
		"writes":  a.cache.WriteCount(),
	})
}

func (a *adminHandlers) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.pipeline.Snapshot())
}

func (a *adminHandlers) statsDetailed(w http.ResponseWriter, r *http.Request) {
	snap := a.pipeline.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"telemetry": snap,
		"cache": map[string]interface{}{
			"size":    a.cache.Size(),
			"maxKeys": a.cache.MaxKeys(),
			"enabled": a.cache.Enabled(),
		},
		"uptimeSec": time.Since(a.startedAt).Seconds(),
	})
}

func (a *adminHandlers) statsKeys(w http.ResponseWriter, r *http.Request) {
	snap := a.pipeline.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalRequests": snap.TotalRequests,
		"cacheHits":     snap.CacheHits,
		"cacheWrites":   snap.CacheWrites,
		"upstreamCalls": snap.UpstreamCalls,
		"errors":        snap.Errors,
		"inFlight":      snap.InFlight,
	})
}

func (a *adminHandlers) statsCache(w http.ResponseWriter, r *http.Request) {
	snap := a.pipeline.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hitRate": snap.CacheHitRate,
		"hits":    snap.CacheHits,
		"writes":  snap.CacheWrites,
		"size":    a.cache.Size(),
	})
}

func (a *adminHandlers) statsPerformance(w http.ResponseWriter, r *http.Request) {
	snap := a.pipeline.Snapshot()
	writeJSON(w, http.StatusOK, snap.ResponseTime)
}

func (a *adminHandlers) statsExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	snap := a.pipeline.Snapshot()

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"totalRequests", "cacheHits", "cacheWrites", "upstreamCalls", "errors", "inFlight", "cacheHitRate"})
		_ = cw.Write([]string{
			strconv.FormatInt(snap.TotalRequests, 10), strconv.FormatInt(snap.CacheHits, 10), strconv.FormatInt(snap.CacheWrites, 10),
			strconv.FormatInt(snap.UpstreamCalls, 10), strconv.FormatInt(snap.Errors, 10), strconv.FormatInt(snap.InFlight, 10),
			strconv.FormatFloat(snap.CacheHitRate, 'f', 2, 64),
		})
		cw.Flush()
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

func (a *adminHandlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (a *adminHandlers) healthDetailed(w http.ResponseWriter, r *http.Request) {
	snap := a.pipeline.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"uptimeSec": time.Since(a.startedAt).Seconds(),
		"telemetry": snap,
	})
}

func (a *adminHandlers) ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"ready": true})
}

func (a *adminHandlers) live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"alive": true})
}

func (a *adminHandlers) uptime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"uptimeSec": time.Since(a.startedAt).Seconds()})
}

func (a *adminHandlers) versionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"version": a.version})
}
