package pipeline

import (
	"context"
	"log/slog"

	"github.com/civicsignal/incident-fusion/internal/domain"
)

// IntakeTransformer implements Transformer using domain analysis functions
// with optional reverse geocoding enrichment.
type IntakeTransformer struct {
	geocoder   domain.Geocoder
	sourceCity string
	logger     *slog.Logger
}

// NewTransformer creates an IntakeTransformer. Pass a nil geocoder to disable
// location enrichment.
func NewTransformer(geocoder domain.Geocoder, sourceCity string, logger *slog.Logger) *IntakeTransformer {
	return &IntakeTransformer{
		geocoder:   geocoder,
		sourceCity: sourceCity,
		logger:     logger,
	}
}

// Transform categorizes a raw report. When the report carries coordinates but
// no usable location text, the geocoder fills in a place name; geocoding
// failures leave the location as-is rather than failing the report.
func (t *IntakeTransformer) Transform(ctx context.Context, raw domain.RawReport, index int) (domain.CategorizedReport, error) {
	report := domain.AnalyzeReport(raw, index, t.sourceCity)

	if t.geocoder != nil && report.Location == "Unknown" && report.Coordinates != nil {
		place, err := t.geocoder.ReverseGeocode(ctx, report.Coordinates.Lat, report.Coordinates.Lng)
		switch {
		case err != nil:
			t.logger.Warn("reverse geocode failed", "error", err, "report_id", report.SourceID)
		case place != "":
			report.Location = place
		}
	}

	return report, nil
}
