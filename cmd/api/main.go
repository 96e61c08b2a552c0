// Command api is the Burkina Watch risk and alerting API server.
//
// Usage:
//
//	burkinawatch-api
//	API_PORT=8080 burkinawatch-api

// @title Burkina Watch Risk API
// @version 1.0.0
// @description Risk-zone analysis and geofenced push-notification fan-out for the citizen incident-reporting platform.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Burkina Watch
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/api"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/api/handler"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/cache"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/config"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/db"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/listener"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/maintenance"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/observability"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/push"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/risk"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Metrics and cache
	metrics := observability.New(prometheus.DefaultRegisterer)
	appCache := cache.New(cfg.CacheEnabled, cfg.CacheEvictInterval)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Store adapters
	incidents := store.NewIncidents(pool.Pool)
	subscriptions := store.NewSubscriptions(pool.Pool)
	profiles := store.NewProfiles(pool.Pool)

	// Risk analyzer
	analyzer := risk.NewService(incidents, metrics, logger)

	// Push fan-out engine (disabled when VAPID keys are missing)
	var engine *push.Engine
	if cfg.PushEnabled() {
		transport := push.NewWebPushTransport(cfg.VAPIDSubscriber, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
		engine = push.NewEngine(subscriptions, transport, metrics, logger, cfg.FanoutBatchSize)
		logger.Info("Push fan-out engine ready")
	} else {
		engine = push.NewEngine(subscriptions, push.NopTransport{}, metrics, logger, cfg.FanoutBatchSize)
		logger.Info("Push delivery disabled (no VAPID keys), dispatches are logged only")
	}

	// Start LISTEN/NOTIFY consumer: fan out as soon as a report lands
	go listener.Start(ctx, cfg.DatabaseURL, incidents, engine, logger)

	// Maintenance tickers: zone-cache warmup + subscription cleanup
	go maintenance.Start(ctx, clockwork.NewRealClock(), maintenance.Config{
		ZoneRefreshInterval: cfg.ZoneRefreshInterval,
		CleanupInterval:     cfg.CleanupInterval,
	}, maintenance.Tasks{
		RefreshZones: func(ctx context.Context) error {
			result, err := analyzer.Zones(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			data, err := risk.MarshalZones(result.Zones)
			if err != nil {
				return err
			}
			appCache.Set(cache.KeyRiskZones, data, cfg.ZoneCacheTTL)
			return nil
		},
		CleanupSubscriptions: subscriptions.Cleanup,
	}, logger)

	// Create router
	h := handler.New(pool, appCache, cfg, analyzer, engine, incidents, profiles)
	router := api.NewRouter(h, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Burkina Watch Risk API",
			"addr", addr,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
