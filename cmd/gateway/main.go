package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alfreddev/weatherproxy/internal/cache"
	"github.com/alfreddev/weatherproxy/internal/coalescer"
	"github.com/alfreddev/weatherproxy/internal/config"
	"github.com/alfreddev/weatherproxy/internal/credential"
	"github.com/alfreddev/weatherproxy/internal/fetch"
	"github.com/alfreddev/weatherproxy/internal/httpapi"
	"github.com/alfreddev/weatherproxy/internal/ledger"
	"github.com/alfreddev/weatherproxy/internal/logger"
	"github.com/alfreddev/weatherproxy/internal/telemetry"
	"github.com/alfreddev/weatherproxy/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		println("config error: " + err.Error())
		os.Exit(1)
	}

	log := logger.New(cfg)
	log.Info().Str("env", cfg.Env).Int("credentials", len(cfg.Credentials)).Msg("weatherproxy starting")

	rdb, err := ledger.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid REDIS_URL")
	}
	if err := ledger.Ping(rdb); err != nil {
		log.Warn().Err(err).Msg("redis ping failed — ledger calls will fail until it recovers")
	} else {
		log.Info().Msg("redis connected")
	}

	led := ledger.NewRedis(rdb, log)

	pool := credential.NewPool(cfg.Credentials)
	loc := credential.ResolveLocation(cfg.TimeZoneName)
	sel := credential.NewSelector(pool, led, int64(cfg.DailyLimit), int64(cfg.MaxErrors), loc)

	resultCache := cache.New(log, cfg.CacheEnabled, cfg.CacheTTL, cfg.CacheMaxKeys)
	go resultCache.RunSweeper(time.Minute)
	defer resultCache.Stop()

	co := coalescer.New()
	up := upstream.New(upstream.DefaultPoolConfig(), cfg.APITimeout)
	tel := telemetry.New()

	var reg *prometheus.Registry
	var prom *telemetry.PrometheusMirror
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		prom = telemetry.NewPrometheusMirror(reg)
	}

	pipeline := fetch.New(resultCache, co, sel, led, up, tel, prom, log, loc, fetch.Config{
		RetryCount: cfg.RetryCount,
		RetryDelay: cfg.RetryDelay,
	})

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = telemetry.Handler(reg)
	}

	router := httpapi.New(pipeline, resultCache, log, httpapi.Options{
		AppID:           cfg.AppIDKey,
		CORSOrigin:      cfg.CORSOrigin,
		RequestIDHeader: cfg.RequestIDHeader,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitEnable: true,
		MetricsEnabled:  cfg.MetricsEnabled,
		MetricsHandler:  metricsHandler,
		Version:         "1.0.0",
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.APITimeout + 10*time.Second,
		IdleTimeout:  cfg.KeepAliveTimeout,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("weatherproxy listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-done
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GracefulTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	up.CloseIdleConnections()
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close failed")
	}

	log.Info().Msg("weatherproxy stopped gracefully")
}
