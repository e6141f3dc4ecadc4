package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls int
	place string
	err   error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (string, error) {
	m.calls++
	return m.place, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{place: "Koramangala, Bengaluru, Karnataka, India"}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	p1, err := cached.ReverseGeocode(context.Background(), 12.9352, 77.6245)
	require.NoError(t, err)
	assert.Equal(t, inner.place, p1)

	p2, err := cached.ReverseGeocode(context.Background(), 12.9352, 77.6245)
	require.NoError(t, err)
	assert.Equal(t, inner.place, p2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedGeocoder_NearbyCoordinatesShareEntry(t *testing.T) {
	inner := &countingGeocoder{place: "Silk Board, Bengaluru"}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	// Within the rounding precision: same key.
	_, _ = cached.ReverseGeocode(context.Background(), 12.91661, 77.62281)
	_, _ = cached.ReverseGeocode(context.Background(), 12.91663, 77.62279)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{place: "Somewhere, Bengaluru"}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ReverseGeocode(context.Background(), 12.9166, 77.6228)
	_, _ = cached.ReverseGeocode(context.Background(), 12.9698, 77.7500)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{place: ""}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ReverseGeocode(context.Background(), 12.9166, 77.6228)
	_, _ = cached.ReverseGeocode(context.Background(), 12.9166, 77.6228)

	assert.Equal(t, 2, inner.calls, "empty responses should be retried")
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("mapbox down")}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.ReverseGeocode(context.Background(), 12.9166, 77.6228)
	require.Error(t, err)

	_, _ = cached.ReverseGeocode(context.Background(), 12.9166, 77.6228)
	assert.Equal(t, 2, inner.calls)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", "Place A")
	c.put("b", "Place B")

	place, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "Place A", place)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", "Place A")
	c.put("b", "Place B")
	c.put("c", "Place C") // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	place, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "Place B", place)

	place, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "Place C", place)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", "Place A")
	c.put("b", "Place B")

	// Access "a" to promote it
	c.get("a")

	// Insert "c", which should evict "b" (LRU), not "a"
	c.put("c", "Place C")

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", "Place A1")
	c.put("a", "Place A2")

	place, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "Place A2", place)
}
