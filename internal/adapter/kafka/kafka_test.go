package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsignal/incident-fusion/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	resolution := time.Date(2025, 6, 14, 11, 0, 0, 0, time.UTC)
	summary := domain.ClusterSummary{
		ClusterID:      1,
		Summary:        "Severe congestion around Silk Board junction.",
		Advice:         "Avoid the Outer Ring Road until evening.",
		Occurrences:    3,
		ResolutionTime: resolution,
		Coordinates:    &domain.Coordinate{Lat: 12.9166, Lng: 77.6228},
		Categories:     []string{"traffic"},
		SourceCity:     "bangalore",
		Geohash:        "tdnu285up",
	}

	msg, err := serializeToMessage(summary)
	require.NoError(t, err)

	assert.Equal(t, []byte("tdnu285up"), msg.Key)
	assert.Contains(t, string(msg.Value), `"summary":"Severe congestion around Silk Board junction."`)
	assert.Contains(t, string(msg.Value), `"categories":["traffic"]`)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "source_city", msg.Headers[0].Key)
	assert.Equal(t, []byte("bangalore"), msg.Headers[0].Value)
	assert.Equal(t, "resolution_time", msg.Headers[1].Key)
	assert.Equal(t, []byte(resolution.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_NoGeohashFallsBackToClusterID(t *testing.T) {
	summary := domain.ClusterSummary{
		ClusterID: 4,
		Summary:   "Garbage accumulation reported.",
	}

	msg, err := serializeToMessage(summary)
	require.NoError(t, err)
	assert.Equal(t, []byte("4"), msg.Key)
}
