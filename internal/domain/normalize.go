package domain

import (
	"sort"
	"strconv"
	"strings"
)

// primaryTextFields are the canonical content fields; secondaryTextFields are
// metadata that still carries useful signal. Both are concatenated whenever
// present. excludedTextFields never contribute to the scalar fallback:
// identifiers, media URLs, and coordinate/timestamp fields would only add
// noise to keyword matching.
var (
	primaryTextFields   = []string{"text", "description", "message", "content"}
	secondaryTextFields = []string{"details", "info", "title", "summary"}

	excludedTextFields = map[string]bool{
		"id":                     true,
		"source_id":              true,
		"edit_history_tweet_ids": true,
		"image_url":              true,
		"media_url":              true,
		"coordinates":            true,
		"lat":                    true,
		"lng":                    true,
		"latitude":               true,
		"longitude":              true,
		"fetched_at":             true,
		"stored_at":              true,
		"timestamp":              true,
		"api_endpoint":           true,
	}
)

// locationFields are probed in order for a human-readable place name.
var locationFields = []string{"location", "address", "place", "source_city"}

// NormalizeCoordinates extracts a coordinate pair from a raw report.
// Candidate shapes are tried in a fixed precedence; the first one whose
// values convert to float64 wins. A non-numeric candidate is rejected and
// the next shape tried. Returns nil when no shape yields a pair.
func NormalizeCoordinates(r RawReport) *Coordinate {
	// 1. "coordinates" as a [lat, lng] sequence.
	if seq, ok := r["coordinates"].([]any); ok && len(seq) >= 2 {
		if lat, okLat := toFloat(seq[0]); okLat {
			if lng, okLng := toFloat(seq[1]); okLng {
				return &Coordinate{Lat: lat, Lng: lng}
			}
		}
	}

	// 2. "coordinates" as a mapping with lat/latitude and lng/longitude keys.
	if m, ok := r["coordinates"].(map[string]any); ok {
		if c := coordinateFromMap(m); c != nil {
			return c
		}
	}

	// 3. Top-level latitude + longitude.
	if c := coordinateFromKeys(r, "latitude", "longitude"); c != nil {
		return c
	}

	// 4. Top-level lat + lng.
	return coordinateFromKeys(r, "lat", "lng")
}

func coordinateFromMap(m map[string]any) *Coordinate {
	if c := coordinateFromKeys(m, "lat", "lng"); c != nil {
		return c
	}
	return coordinateFromKeys(m, "latitude", "longitude")
}

func coordinateFromKeys(m map[string]any, latKey, lngKey string) *Coordinate {
	latVal, okLat := m[latKey]
	lngVal, okLng := m[lngKey]
	if !okLat || !okLng {
		return nil
	}
	lat, okLat := toFloat(latVal)
	lng, okLng := toFloat(lngVal)
	if !okLat || !okLng {
		return nil
	}
	return &Coordinate{Lat: lat, Lng: lng}
}

// toFloat converts JSON-decoded scalar values to float64. Strings are parsed
// because some upstream sources quote their numbers.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ExtractText assembles the free text used for categorization: primary
// content fields, then secondary metadata fields. If all of those are empty
// it falls back to every remaining scalar field except the exclusion list,
// because heterogeneous sources do not guarantee a canonical text field.
// The result is lower-cased.
func ExtractText(r RawReport) string {
	var parts []string
	for _, key := range primaryTextFields {
		if s := scalarString(r[key]); s != "" {
			parts = append(parts, s)
		}
	}
	for _, key := range secondaryTextFields {
		if s := scalarString(r[key]); s != "" {
			parts = append(parts, s)
		}
	}

	if len(parts) == 0 {
		keys := make([]string, 0, len(r))
		for key := range r {
			if excludedTextFields[key] {
				continue
			}
			keys = append(keys, key)
		}
		// Map order is random; sort so repeated extraction is identical.
		sort.Strings(keys)
		for _, key := range keys {
			if s := scalarString(r[key]); s != "" {
				parts = append(parts, s)
			}
		}
	}

	return strings.ToLower(strings.TrimSpace(strings.Join(parts, " ")))
}

// ExtractLocation returns the first non-empty location-ish field, or
// "Unknown".
func ExtractLocation(r RawReport) string {
	if s := stringField(r, locationFields...); s != "" {
		return s
	}
	return "Unknown"
}

// stringField returns the first key whose value is a non-empty string.
func stringField(r RawReport, keys ...string) string {
	for _, key := range keys {
		if s, ok := r[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// scalarString renders strings and numbers; nested values are skipped.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
