package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/newkenyan/property-search/internal/adapter/httpserver"
	"github.com/newkenyan/property-search/internal/adapter/repository/cache"
	mongoRepo "github.com/newkenyan/property-search/internal/adapter/repository/mongodb"
	"github.com/newkenyan/property-search/internal/config"
	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/platform/metrics"
	"github.com/newkenyan/property-search/internal/platform/tracer"
	"github.com/newkenyan/property-search/internal/search/usecase"
)

const serviceName = "property-search"

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Application starting", zap.String("service_name", serviceName))

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	tp := tracer.InitTracer(serviceName, cfg.OTELExporterEndpoint, appLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			appLogger.Error("Failed to shut down tracer provider", zap.Error(err))
		}
	}()

	mongoCtx, mongoCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer mongoCancel()
	mongoClient, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := mongoClient.Ping(mongoCtx, nil); err != nil {
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDatabase)
	appLogger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	listingRepo, err := mongoRepo.NewListingRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create listing repository", zap.Error(err))
	}
	locationRepo, err := mongoRepo.NewLocationRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create location repository", zap.Error(err))
	}
	locations := cache.NewLocationCache(locationRepo, cfg.LocationCacheTTL)

	var resultCache *cache.ResultCache
	if cfg.RedisAddress != "" {
		resultCache, err = cache.NewResultCache(cfg.RedisAddress, cfg.ResultCacheTTL, appLogger)
		if err != nil {
			appLogger.Warn("Result cache unavailable, serving without it", zap.Error(err))
			resultCache = nil
		} else {
			defer resultCache.Close()
		}
	}

	matcher := usecase.NewMatcher(listingRepo, appLogger, cfg.MatchPageSize)
	broadener := usecase.NewBroadener(matcher, locations, appLogger)
	searchService := usecase.NewSearchService(
		locations, matcher, broadener, appLogger,
		cfg.StoreTimeout, cfg.BroadenMinimum, cfg.BroadenCap,
	)

	mm := metrics.NewMetricsManager(cfg.ServiceName)
	metrics.StartMetricsServer(cfg.PrometheusMetricsPort, appLogger, mm.Registry)

	handler := httpserver.NewSearchHandler(searchService, resultCache, mm, appLogger)
	server := httpserver.NewServer(cfg.HTTPPort, handler, appLogger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		appLogger.Fatal("HTTP server failed", zap.Error(err))
	case sig := <-quit:
		appLogger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Application stopped")
}
