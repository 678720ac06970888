package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/okoro-dev/realtyhub/internal/cache"
	"github.com/okoro-dev/realtyhub/internal/config"
	"github.com/okoro-dev/realtyhub/internal/db"
	httpx "github.com/okoro-dev/realtyhub/internal/http"
	"github.com/okoro-dev/realtyhub/internal/observability"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// tracing
	shutdownTracer, err := observability.InitTracer(context.Background(), "realtyhub", cfg.OTLPEndpoint)

	if err != nil {
		log.Error("failed to init tracer", "err", err)
		os.Exit(1)
	}

	// metrics
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// database
	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("failed to connect to postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	seedCtx, seedCancel := config.WithTimeout(5 * time.Second)
	err = db.EnsureAdminAccount(seedCtx, pool, cfg)
	seedCancel()

	if err != nil {
		log.Error("failed to seed admin account", "err", err)
		os.Exit(1)
	}

	// listing cache; degraded but functional without redis
	listings := cache.NewListingCache(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, 30*time.Second)
	defer listings.Close()

	pingCtx, pingCancel := config.WithTimeout(2 * time.Second)
	if err := listings.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, listing cache disabled", "err", err)
		listings = nil
	}
	pingCancel()

	router := httpx.NewRouter(log, pool, listings, prom, reg, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
