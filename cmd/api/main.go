package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/eventreg/internal/config"
	"github.com/geocoder89/eventreg/internal/db"
	httpx "github.com/geocoder89/eventreg/internal/http"
	"github.com/geocoder89/eventreg/internal/http/handlers"
	"github.com/geocoder89/eventreg/internal/http/middlewares"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/geocoder89/eventreg/internal/redisclient"
	"github.com/geocoder89/eventreg/internal/repo/memory"
	"github.com/geocoder89/eventreg/internal/repo/postgres"
	"github.com/geocoder89/eventreg/internal/repo/sqlite"
	"github.com/geocoder89/eventreg/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type storeWithPing interface {
	service.Store
	handlers.Pinger
}

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", observability.Err(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// no endpoint, no exporter: otelgin then runs against the global no-op provider
	if cfg.OTLPEndpoint != "" {
		stopTracing, err := observability.StartTracing(context.Background(), observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Env:         cfg.Env,
			Endpoint:    cfg.OTLPEndpoint,
		})
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := stopTracing(ctx); err != nil {
				log.Error("tracer shutdown failed", observability.Err(err))
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	store, closeStore, err := openStore(cfg, prom, log)
	if err != nil {
		return err
	}
	defer closeStore()

	ready := map[string]handlers.Pinger{"db": store}

	var limiter middlewares.Limiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middlewares.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

		if cfg.RedisAddr != "" {
			rdb := redisclient.New(redisclient.Config{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			defer func() { _ = rdb.Close() }()

			limiter = middlewares.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)
			ready["redis"] = rdb
			log.Info("rate limiting via redis", "addr", cfg.RedisAddr)
		}
	}

	var draining atomic.Bool

	// set up routers with the log
	router := httpx.NewRouter(cfg, log, httpx.Dependencies{
		Service:  service.NewEventService(store),
		Prom:     prom,
		Gatherer: reg,
		Limiter:  limiter,
		Ready:    ready,
		Draining: &draining,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)

	// start server using a concurrent go-routine driven anonymous function.
	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "driver", cfg.DBDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-stop:
	}

	log.Info("server shutting down")
	draining.Store(true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

// openStore connects the configured backend and applies the schema when
// AUTO_MIGRATE is on.
func openStore(cfg config.Config, prom *observability.Prom, log *slog.Logger) (storeWithPing, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		if cfg.AutoMigrate {
			if err := db.MigratePostgresUp(cfg.DBURL); err != nil {
				return nil, nil, err
			}
		}

		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return postgres.NewStore(pool, prom), pool.Close, nil

	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}

		if cfg.AutoMigrate {
			if err := db.MigrateSQLiteUp(sqlDB); err != nil {
				_ = sqlDB.Close()
				return nil, nil, err
			}
		}

		return sqlite.NewStore(sqlDB, prom), func() { _ = sqlDB.Close() }, nil

	default:
		log.Warn("using the in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}
}
