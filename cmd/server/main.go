package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/brickfolio/brickfolio/internal/cache"
	"github.com/brickfolio/brickfolio/internal/config"
	"github.com/brickfolio/brickfolio/internal/database"
	"github.com/brickfolio/brickfolio/internal/modules/analysis"
	"github.com/brickfolio/brickfolio/internal/modules/products"
	"github.com/brickfolio/brickfolio/internal/modules/vouchers"
	"github.com/brickfolio/brickfolio/internal/scheduler"
	"github.com/brickfolio/brickfolio/internal/server"
	"github.com/brickfolio/brickfolio/internal/valuation"
	"github.com/brickfolio/brickfolio/pkg/logger"
)

const cacheTTL = 6 * time.Hour // matches the default revaluation cadence

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet
		panic(err)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting Brickfolio")

	// Initialize database
	db, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "catalog.db"),
		Profile: database.ProfileStandard,
		Name:    "catalog",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Metrics cache: Redis when configured, in-process otherwise
	var metricsCache cache.MetricsCache = cache.NewMemoryCache()
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cacheTTL)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).
				Msg("Redis unreachable, falling back to in-memory cache")
		} else {
			metricsCache = redisCache
			log.Info().Str("addr", cfg.RedisAddr).Msg("Redis metrics cache connected")
		}
		cancel()
	}

	// Repositories and services
	valuationCfg := valuation.DefaultConfig()
	productRepo := products.NewRepository(db.Conn(), log)
	voucherRepo := vouchers.NewRepository(db.Conn(), log)
	analysisSvc := analysis.NewService(valuationCfg, productRepo, voucherRepo,
		metricsCache, cfg.BatchWorkerCount, log)

	// Background jobs
	sched := scheduler.New(log)
	revalue := scheduler.NewRevalueJob(valuationCfg, productRepo, metricsCache, log)
	if err := sched.AddJob(cfg.RevalueSchedule, revalue); err != nil {
		log.Fatal().Err(err).Msg("Failed to register revaluation job")
	}
	if err := sched.AddJob(cfg.MaintSchedule, scheduler.NewMaintenanceJob(db, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port: cfg.Port,
		Log:  log,
		DB:   db,
		Modules: server.Modules{
			Products: products.NewHandlers(productRepo, metricsCache, log),
			Vouchers: vouchers.NewHandlers(voucherRepo, log),
			Analysis: analysis.NewHandlers(analysisSvc, log),
		},
		DevMode: cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
