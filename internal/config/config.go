package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL      string
	FeedTimeout  time.Duration
	PollInterval time.Duration
	SourceCity   string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Engine tuning.
	ClusterRadiusKm  float64
	GeohashPrecision int

	// Firestore document store (enabled when a project is set).
	FirestoreProject string
	FirestoreEnabled bool

	// Gemini text generation and media verification.
	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration
	GeminiEnabled bool

	// Mapbox reverse geocoding.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Kafka summary sink.
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool

	// Media intake.
	MaxMediaBytes int64
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	feedTimeout, err := envDuration("FEED_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	pollInterval, err := envDuration("POLL_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	geminiTimeout, err := envDuration("GEMINI_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := envDuration("MAPBOX_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	clusterRadius, err := envFloat("CLUSTER_RADIUS_KM", 5)
	if err != nil {
		return nil, err
	}
	geohashPrecision, err := envInt("GEOHASH_PRECISION", 9)
	if err != nil {
		return nil, err
	}
	mapboxCacheSize, err := envInt("MAPBOX_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	maxMediaBytes, err := envInt("MAX_MEDIA_BYTES", 8<<20)
	if err != nil {
		return nil, err
	}

	firestoreProject := os.Getenv("FIRESTORE_PROJECT")
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		FeedURL:      os.Getenv("FEED_URL"),
		FeedTimeout:  feedTimeout,
		PollInterval: pollInterval,
		SourceCity:   envOrDefault("SOURCE_CITY", "bangalore"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ClusterRadiusKm:  clusterRadius,
		GeohashPrecision: geohashPrecision,

		FirestoreProject: firestoreProject,
		FirestoreEnabled: envFlag("FIRESTORE_ENABLED", firestoreProject != ""),

		GeminiAPIKey:  geminiAPIKey,
		GeminiModel:   envOrDefault("GEMINI_MODEL", "gemini-1.5-pro"),
		GeminiTimeout: geminiTimeout,
		GeminiEnabled: envFlag("GEMINI_ENABLED", geminiAPIKey != ""),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   envFlag("MAPBOX_ENABLED", mapboxToken != ""),
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,

		KafkaBrokers:   brokers,
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "incident-summaries"),
		KafkaEnabled:   envFlag("KAFKA_ENABLED", len(brokers) > 0),

		MaxMediaBytes: int64(maxMediaBytes),
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.FeedURL == "" {
		return errors.New("FEED_URL is required")
	}
	if _, err := url.ParseRequestURI(c.FeedURL); err != nil {
		return fmt.Errorf("invalid FEED_URL: %w", err)
	}
	if c.GeohashPrecision > 12 {
		return errors.New("GEOHASH_PRECISION must be at most 12")
	}
	if c.FirestoreEnabled && c.FirestoreProject == "" {
		return errors.New("FIRESTORE_ENABLED is true but FIRESTORE_PROJECT is not set")
	}
	if c.GeminiEnabled && c.GeminiAPIKey == "" {
		return errors.New("GEMINI_ENABLED is true but GEMINI_API_KEY is not set")
	}
	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}

// envFlag parses explicit true/false overrides, falling back to the derived
// default (usually "the credential is present").
func envFlag(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return fallback
	}
}

func parseBrokers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
