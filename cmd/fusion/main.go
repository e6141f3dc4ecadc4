package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/civicsignal/incident-fusion/internal/adapter/feed"
	fsadapter "github.com/civicsignal/incident-fusion/internal/adapter/firestore"
	"github.com/civicsignal/incident-fusion/internal/adapter/gemini"
	httpadapter "github.com/civicsignal/incident-fusion/internal/adapter/http"
	kafkaadapter "github.com/civicsignal/incident-fusion/internal/adapter/kafka"
	"github.com/civicsignal/incident-fusion/internal/adapter/mapbox"
	"github.com/civicsignal/incident-fusion/internal/config"
	"github.com/civicsignal/incident-fusion/internal/domain"
	"github.com/civicsignal/incident-fusion/internal/observability"
	"github.com/civicsignal/incident-fusion/internal/pipeline"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reverse geocoding (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Text generation and media verification (feature-flagged via
	// GEMINI_ENABLED / GEMINI_API_KEY).
	var generator domain.TextGenerator
	var verifier domain.MediaVerifier
	if cfg.GeminiEnabled {
		client := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout, logger)
		generator = client
		verifier = client
		logger.Info("gemini enabled", "model", cfg.GeminiModel)
	} else {
		logger.Warn("gemini disabled, summaries will carry fallback text")
	}

	// Document store (feature-flagged via FIRESTORE_ENABLED / FIRESTORE_PROJECT).
	var store pipeline.Store
	if cfg.FirestoreEnabled {
		fsStore, err := fsadapter.NewStore(ctx, cfg.FirestoreProject, cfg.SourceCity, logger)
		if err != nil {
			logger.Error("failed to create firestore store", "error", err)
			os.Exit(1)
		}
		defer fsStore.Close()
		store = fsStore
		logger.Info("firestore persistence enabled", "project", cfg.FirestoreProject)
	} else {
		logger.Info("firestore persistence disabled")
	}

	// Summary sink (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka summary sink enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka summary sink disabled")
	}

	fetcher := feed.NewClient(cfg.FeedURL, cfg.FeedTimeout, logger)
	transformer := pipeline.NewTransformer(geocoder, cfg.SourceCity, logger)
	summarizer := domain.NewSummarizer(generator, cfg.GeohashPrecision, logger)

	p := pipeline.New(fetcher, transformer, summarizer, store, publisher,
		logger, metrics, cfg.ClusterRadiusKm, cfg.PollInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, verifier, cfg.MaxMediaBytes, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the fusion pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
