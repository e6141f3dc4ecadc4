package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeedURL = "http://feed.example.com/api/twitter-feed"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FEED_URL", testFeedURL)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testFeedURL, cfg.FeedURL)
	assert.Equal(t, 10*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, "bangalore", cfg.SourceCity)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5.0, cfg.ClusterRadiusKm)
	assert.Equal(t, 9, cfg.GeohashPrecision)
	assert.False(t, cfg.FirestoreEnabled)
	assert.False(t, cfg.GeminiEnabled)
	assert.Equal(t, "gemini-1.5-pro", cfg.GeminiModel)
	assert.Equal(t, 30*time.Second, cfg.GeminiTimeout)
	assert.False(t, cfg.MapboxEnabled)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "incident-summaries", cfg.KafkaSinkTopic)
	assert.Equal(t, int64(8<<20), cfg.MaxMediaBytes)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("FEED_URL", testFeedURL)
	t.Setenv("FEED_TIMEOUT", "20s")
	t.Setenv("POLL_INTERVAL", "1m")
	t.Setenv("SOURCE_CITY", "mysore")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CLUSTER_RADIUS_KM", "2.5")
	t.Setenv("GEOHASH_PRECISION", "7")
	t.Setenv("FIRESTORE_PROJECT", "city-incidents")
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("MAPBOX_TOKEN", "pk.test")
	t.Setenv("MAPBOX_CACHE_SIZE", "50")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "summaries")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, cfg.FeedTimeout)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, "mysore", cfg.SourceCity)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 2.5, cfg.ClusterRadiusKm)
	assert.Equal(t, 7, cfg.GeohashPrecision)
	assert.True(t, cfg.FirestoreEnabled)
	assert.Equal(t, "city-incidents", cfg.FirestoreProject)
	assert.True(t, cfg.GeminiEnabled)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, 50, cfg.MapboxCacheSize)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "summaries", cfg.KafkaSinkTopic)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			"missing feed url",
			map[string]string{},
			"FEED_URL is required",
		},
		{
			"malformed feed url",
			map[string]string{"FEED_URL": "not a url"},
			"invalid FEED_URL",
		},
		{
			"bad poll interval",
			map[string]string{"FEED_URL": testFeedURL, "POLL_INTERVAL": "soon"},
			"invalid POLL_INTERVAL",
		},
		{
			"negative poll interval",
			map[string]string{"FEED_URL": testFeedURL, "POLL_INTERVAL": "-5s"},
			"invalid POLL_INTERVAL",
		},
		{
			"bad geohash precision",
			map[string]string{"FEED_URL": testFeedURL, "GEOHASH_PRECISION": "40"},
			"GEOHASH_PRECISION",
		},
		{
			"gemini enabled without key",
			map[string]string{"FEED_URL": testFeedURL, "GEMINI_ENABLED": "true"},
			"GEMINI_API_KEY is not set",
		},
		{
			"mapbox enabled without token",
			map[string]string{"FEED_URL": testFeedURL, "MAPBOX_ENABLED": "true"},
			"MAPBOX_TOKEN is not set",
		},
		{
			"firestore enabled without project",
			map[string]string{"FEED_URL": testFeedURL, "FIRESTORE_ENABLED": "true"},
			"FIRESTORE_PROJECT is not set",
		},
		{
			"kafka enabled without brokers",
			map[string]string{"FEED_URL": testFeedURL, "KAFKA_ENABLED": "true"},
			"KAFKA_BROKERS is not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_FlagOverrides(t *testing.T) {
	t.Setenv("FEED_URL", testFeedURL)
	t.Setenv("MAPBOX_TOKEN", "pk.test")
	t.Setenv("MAPBOX_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	t.Setenv("KAFKA_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.MapboxEnabled, "explicit false overrides token presence")
	assert.False(t, cfg.KafkaEnabled, "explicit false overrides broker presence")
}
