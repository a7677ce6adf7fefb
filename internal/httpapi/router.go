package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	gocors "github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/alfreddev/weatherproxy/internal/cache"
	"github.com/alfreddev/weatherproxy/internal/fetch"
	appmiddleware "github.com/alfreddev/weatherproxy/internal/middleware"
)

// Options configures the router's cross-cutting concerns.
type Options struct {
	AppID           string
	CORSOrigin      string
	RequestIDHeader string
	RateLimitMax    int
	RateLimitEnable bool
	MetricsEnabled  bool
	MetricsHandler  http.Handler // serves /metrics; ignored when MetricsEnabled is false
	Version         string
}

// New builds the full chi.Router: middleware chain, the weather proxy
// route, and the admin/stats/health/metrics families.
func New(pipeline *fetch.Pipeline, c *cache.Cache, logger zerolog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(gocors.Handler(gocors.Options{
		AllowedOrigins:   []string{opts.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(appmiddleware.RequestID(opts.RequestIDHeader))
	r.Use(appmiddleware.Recoverer(logger))
	r.Use(appmiddleware.RequestLogger(logger))
	r.Use(appmiddleware.BodySizeLimit(1 << 20))

	limiter := appmiddleware.NewRateLimiter(logger, opts.RateLimitEnable, opts.RateLimitMax)
	r.Use(limiter.Handler)

	weather := &weatherHandler{pipeline: pipeline, appID: opts.AppID}
	r.Get("/data/3.0/onecall", weather.ServeHTTP)

	admin := newAdminHandlers(c, pipeline, opts.Version)
	r.Route("/data/3.0/cache", func(cr chi.Router) {
		cr.Delete("/", admin.clearCache)
		cr.Post("/warmup", admin.warmupCache)
		cr.Get("/info", admin.cacheInfo)
	})

	r.Get("/stats", admin.stats)
	r.Get("/stats/detailed", admin.statsDetailed)
	r.Get("/stats/keys", admin.statsKeys)
	r.Get("/stats/cache", admin.statsCache)
	r.Get("/stats/performance", admin.statsPerformance)
	r.Get("/stats/export", admin.statsExport)

	r.Get("/health", admin.health)
	r.Get("/health/detailed", admin.healthDetailed)
	r.Get("/ready", admin.ready)
	r.Get("/live", admin.live)
	r.Get("/uptime", admin.uptime)
	r.Get("/version", admin.versionInfo)

	if opts.MetricsEnabled && opts.MetricsHandler != nil {
		r.Get("/metrics", opts.MetricsHandler.ServeHTTP)
	}

	return r
}
