package domain

import "context"

// Geocoder resolves coordinates to a best-effort human-readable place name.
// Implementations return an error on failure; callers substitute "Unknown"
// and never treat the failure as fatal.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}
