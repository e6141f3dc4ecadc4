package domain

import (
	"fmt"
	"time"
)

// RawReport is one unvalidated record from a source feed. There is no fixed
// schema; accessors in normalize.go probe it with a documented precedence.
type RawReport map[string]any

// Coordinate is a WGS-84 latitude/longitude pair.
// Valid ranges: lat in [-90,90], lng in [-180,180].
type Coordinate struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}

// CategorizedReport is the analyzed form of one raw report, immutable after
// intake. Coordinates is nil when no location could be parsed.
type CategorizedReport struct {
	Description string      `json:"description" firestore:"description"`
	Text        string      `json:"text" firestore:"text"`
	Location    string      `json:"location" firestore:"location"`
	Coordinates *Coordinate `json:"coordinates" firestore:"coordinates"`

	// Categories is ordered by keyword match count, highest first; ties keep
	// the category table's declaration order.
	Categories []string `json:"categories" firestore:"categories"`

	// KeywordMatches and Confidence describe the top-ranked category:
	// the number of matched keywords and that count divided by the size of
	// the category's keyword list.
	KeywordMatches int     `json:"keyword_matches" firestore:"keyword_matches"`
	Confidence     float64 `json:"confidence_score" firestore:"confidence_score"`

	SourceID   string    `json:"source_id" firestore:"source_id"`
	SourceCity string    `json:"source_city" firestore:"source_city"`
	ImageURL   string    `json:"image_url,omitempty" firestore:"image_url,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at" firestore:"analyzed_at"`
}

// Cluster is a non-empty group of reports believed to describe one incident.
// It exists only for the duration of one clustering pass; only the derived
// ClusterSummary is persisted.
type Cluster struct {
	ID      int
	Reports []CategorizedReport
}

// ClusterSummary is the canonical incident record for one cluster. Its field
// names are a compatibility surface for downstream consumers (dashboards,
// voting UI); Votes is initialized to zero and mutated downstream only.
type ClusterSummary struct {
	ClusterID      int         `json:"cluster_id" firestore:"cluster_id"`
	Summary        string      `json:"summary" firestore:"summary"`
	Advice         string      `json:"advice" firestore:"advice"`
	Occurrences    int         `json:"occurrences" firestore:"occurrences"`
	ResolutionTime time.Time   `json:"resolution_time" firestore:"resolution_time"`
	Coordinates    *Coordinate `json:"coordinates" firestore:"coordinates"`
	Categories     []string    `json:"categories" firestore:"categories"`
	Descriptions   []string    `json:"descriptions" firestore:"descriptions"`
	Location       string      `json:"location" firestore:"location"`
	SourceCity     string      `json:"source_city" firestore:"source_city"`
	ImageURLs      []string    `json:"image_urls,omitempty" firestore:"image_urls,omitempty"`
	Geohash        string      `json:"geohash" firestore:"geohash"`
	Votes          int         `json:"votes" firestore:"votes"`
}

// ReportID returns the report's own id when it carries one, otherwise a
// deterministic fallback derived from the batch position, so reprocessing
// the same batch yields the same ids.
func ReportID(r RawReport, index int) string {
	if id := stringField(r, "id", "source_id"); id != "" {
		return id
	}
	return fmt.Sprintf("unknown_%d", index)
}
