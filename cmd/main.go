package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/podiumlab/podium/internal/adapters/http/api"
	"github.com/podiumlab/podium/internal/adapters/repository"
	app "github.com/podiumlab/podium/internal/app"
	"github.com/podiumlab/podium/internal/cache"
	"github.com/podiumlab/podium/internal/config"
	"github.com/podiumlab/podium/pkg/logger"
	"github.com/podiumlab/podium/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// A local .env is optional; absence is not an error.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithWorkers(cfg.BundleWorkers),
		app.WithPageSizes(cfg.DefaultPageSize, cfg.MaxPageSize),
	}

	// Storage backend: postgres when configured, in-memory otherwise.
	if cfg.DatabaseURL != "" {
		store, err := repository.NewPGStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error(ctx, "postgres store unavailable", logger.Error(err))
			return
		}
		defer store.Close()
		opts = append(opts, app.WithStore(store))
		log.Info(ctx, "using postgres population store")
	}

	// Cache backend: shared Redis when configured, in-process otherwise.
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, ttl, log.Named("cache"))
		if err := rc.Ping(ctx); err != nil {
			// An unreachable cache must not block correctness; fall back to
			// the in-process cache and keep serving.
			log.Warn(ctx, "redis unreachable; falling back to in-memory cache",
				logger.String("addr", cfg.RedisAddr), logger.Error(err))
			opts = append(opts, app.WithCache(cache.NewMemory(cache.WithTTL(ttl))))
		} else {
			opts = append(opts, app.WithCache(rc))
			log.Info(ctx, "using redis bundle cache", logger.String("addr", cfg.RedisAddr))
		}
	} else {
		opts = append(opts, app.WithCache(cache.NewMemory(cache.WithTTL(ttl))))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, cfg.DefaultPageSize, cfg.MaxPageSize)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater periodically refreshes runtime gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
