// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simonepenna/adibodyes/internal/api"
	"github.com/simonepenna/adibodyes/internal/cache"
	"github.com/simonepenna/adibodyes/internal/config"
	"github.com/simonepenna/adibodyes/internal/gls"
	"github.com/simonepenna/adibodyes/internal/repository/postgres"
	"github.com/simonepenna/adibodyes/internal/service"
	"github.com/simonepenna/adibodyes/internal/sheets"
	"github.com/simonepenna/adibodyes/internal/shopify"
	"github.com/simonepenna/adibodyes/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	shopifyClient := shopify.NewClient(cfg.Shopify)

	carrierClient, err := gls.NewClient(cfg.GLS)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize GLS client")
	}
	soapClient := gls.NewSOAPClient(cfg.GLS)

	levelReader, err := sheets.NewService(ctx, cfg.Sheets)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize Sheets service")
	}

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, running without it")
		reportCache = cache.NewNoopReportCache()
	}

	// The snapshot store is optional: without a database the server still
	// serves live reports, just no history.
	var snapshots postgres.SnapshotRepository
	if cfg.Database.Host != "" {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Database unavailable, report history disabled")
		} else {
			defer db.Close()
			snapshots = postgres.NewSnapshotRepository(db)
			if err := snapshots.EnsureSchema(ctx); err != nil {
				logger.Log.Fatal().Err(err).Msg("Failed to prepare snapshot schema")
			}
		}
	}

	var snapshotStore service.SnapshotStore
	if snapshots != nil {
		snapshotStore = snapshots
	}

	stockService := service.NewStockService(
		shopifyClient,
		carrierClient,
		levelReader,
		reportCache,
		snapshotStore,
		cfg.Forecast,
		cfg.Sheets,
		cfg.Shopify.BackorderTags,
	)
	fulfillmentService := service.NewFulfillmentService(shopifyClient, soapClient, reportCache)

	services := &api.Services{
		Stock:       stockService,
		Fulfillment: fulfillmentService,
	}
	if snapshots != nil {
		services.Snapshots = snapshots
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
