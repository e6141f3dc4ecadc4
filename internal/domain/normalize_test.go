package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		report   RawReport
		expected *Coordinate
	}{
		{
			"coordinates sequence",
			RawReport{"coordinates": []any{12.9716, 77.5946}},
			&Coordinate{Lat: 12.9716, Lng: 77.5946},
		},
		{
			"coordinates sequence of strings",
			RawReport{"coordinates": []any{"12.9716", "77.5946"}},
			&Coordinate{Lat: 12.9716, Lng: 77.5946},
		},
		{
			"coordinates mapping lat/lng",
			RawReport{"coordinates": map[string]any{"lat": 12.9716, "lng": 77.5946}},
			&Coordinate{Lat: 12.9716, Lng: 77.5946},
		},
		{
			"coordinates mapping latitude/longitude",
			RawReport{"coordinates": map[string]any{"latitude": 12.9716, "longitude": 77.5946}},
			&Coordinate{Lat: 12.9716, Lng: 77.5946},
		},
		{
			"top-level latitude/longitude",
			RawReport{"latitude": 12.9716, "longitude": 77.5946},
			&Coordinate{Lat: 12.9716, Lng: 77.5946},
		},
		{
			"top-level lat/lng",
			RawReport{"lat": 12.9716, "lng": 77.5946},
			&Coordinate{Lat: 12.9716, Lng: 77.5946},
		},
		{
			"sequence wins over top-level fields",
			RawReport{
				"coordinates": []any{1.0, 2.0},
				"latitude":    12.9716,
				"longitude":   77.5946,
			},
			&Coordinate{Lat: 1, Lng: 2},
		},
		{
			"non-numeric sequence falls through to next shape",
			RawReport{
				"coordinates": []any{"north", "east"},
				"lat":         12.9716,
				"lng":         77.5946,
			},
			&Coordinate{Lat: 12.9716, Lng: 77.5946},
		},
		{
			"partial mapping rejected",
			RawReport{"coordinates": map[string]any{"lat": 12.9716}},
			nil,
		},
		{
			"no location fields",
			RawReport{"text": "traffic jam"},
			nil,
		},
		{
			"never defaults to origin",
			RawReport{},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeCoordinates(tt.report)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, *tt.expected, *result)
		})
	}
}

func TestNormalizeCoordinates_Idempotent(t *testing.T) {
	report := RawReport{"coordinates": []any{12.9716, 77.5946}}

	first := NormalizeCoordinates(report)
	second := NormalizeCoordinates(report)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		report   RawReport
		expected string
	}{
		{
			"primary field only",
			RawReport{"text": "Heavy traffic on ORR"},
			"heavy traffic on orr",
		},
		{
			"primary and secondary concatenated",
			RawReport{"text": "Flooding near", "title": "Underpass alert"},
			"flooding near underpass alert",
		},
		{
			"all primary fields contribute",
			RawReport{"text": "a", "description": "b", "message": "c", "content": "d"},
			"a b c d",
		},
		{
			"fallback over remaining scalars when content empty",
			RawReport{"note_b": "water", "note_a": "rising", "count": 3.0},
			"3 rising water",
		},
		{
			"fallback skips excluded fields",
			RawReport{
				"id":           "t-1",
				"image_url":    "http://example.com/a.jpg",
				"lat":          12.9,
				"lng":          77.5,
				"fetched_at":   "2025-08-30T10:00:00Z",
				"api_endpoint": "http://feed",
				"remark":       "power cut",
			},
			"power cut",
		},
		{
			"nested values ignored in fallback",
			RawReport{"meta": map[string]any{"x": "y"}, "remark": "garbage pileup"},
			"garbage pileup",
		},
		{
			"empty report",
			RawReport{},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractText(tt.report))
		})
	}
}

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		name     string
		report   RawReport
		expected string
	}{
		{"location field", RawReport{"location": "Koramangala"}, "Koramangala"},
		{"address fallback", RawReport{"address": "100 Ft Road"}, "100 Ft Road"},
		{"place fallback", RawReport{"place": "Majestic"}, "Majestic"},
		{"source city fallback", RawReport{"source_city": "bangalore"}, "bangalore"},
		{"location wins over address", RawReport{"location": "Indiranagar", "address": "CMH Road"}, "Indiranagar"},
		{"missing", RawReport{}, "Unknown"},
		{"blank string ignored", RawReport{"location": "  "}, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractLocation(tt.report))
		})
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected float64
		ok       bool
	}{
		{"float64", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"numeric string", "77.5946", 77.5946, true},
		{"padded string", " 12.97 ", 12.97, true},
		{"word", "north", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := toFloat(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}
