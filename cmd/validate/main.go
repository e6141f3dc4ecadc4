// Command validate runs the fusion stages offline against a JSON batch of raw
// city reports and cross-checks their output: intake analysis, greedy
// clustering, and summary assembly. It needs no network and no credentials;
// summaries carry the fixed fallback text.
//
// Usage:
//
//	go run ./cmd/validate -reports data/mock/city_reports_sample.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/civicsignal/incident-fusion/internal/domain"
)

var baseTime = time.Date(2025, time.June, 14, 9, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	reportsPath := flag.String("reports", "data/mock/city_reports_sample.json", "path to a JSON array of raw city reports")
	sourceCity := flag.String("source-city", "bangalore", "source city attached to every analyzed report")
	radiusKm := flag.Float64("radius-km", domain.DefaultClusterRadiusKm, "cluster merge radius in kilometers")
	precision := flag.Int("geohash-precision", domain.DefaultGeohashPrecision, "geohash length on assembled summaries")
	flag.Parse()

	if code := run(*reportsPath, *sourceCity, *radiusKm, *precision); code != 0 {
		os.Exit(code)
	}
}

func run(reportsPath, sourceCity string, radiusKm float64, precision int) int {
	// Fix the clock so analyzed_at and resolution_time are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(baseTime))
	defer domain.SetClock(nil)

	fmt.Println("=== Incident Fusion Offline Validation ===")
	fmt.Println()

	raws, err := loadReports(reportsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load reports: %v\n", err)
		return 1
	}

	// ── Run all fusion stages ──
	reports := make([]domain.CategorizedReport, len(raws))
	for i, raw := range raws {
		reports[i] = domain.AnalyzeReport(raw, i, sourceCity)
	}

	clusters := domain.ClusterReports(reports, radiusKm)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	summarizer := domain.NewSummarizer(nil, precision, logger)
	summaries := make([]domain.ClusterSummary, len(clusters))
	for i, c := range clusters {
		summaries[i] = summarizer.Summarize(context.Background(), c)
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateIntake(raws, reports, sourceCity),
		validateClustering(reports, clusters, radiusKm),
		validateSummaries(clusters, summaries, precision),
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw reports, %d categorized, %d clusters, %d summaries\n",
		len(raws), len(reports), len(clusters), len(summaries))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadReports(path string) ([]domain.RawReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raws []domain.RawReport
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("no reports in %s", path)
	}
	return raws, nil
}

// ── Phase 1: Intake Analysis ──
// Validates the categorized form of every raw report.

func validateIntake(raws []domain.RawReport, reports []domain.CategorizedReport, sourceCity string) *phase {
	p := &phase{name: "Phase 1: Intake Analysis"}

	seenIDs := map[string]int{}
	for i := range reports {
		r := &reports[i]
		id := r.SourceID

		if id == "" {
			p.errorf("report %d: empty source_id", i)
			continue
		}
		if prev, dup := seenIDs[id]; dup {
			p.errorf("report %d: source_id %q already used by report %d", i, id, prev)
		}
		seenIDs[id] = i

		if want := domain.ReportID(raws[i], i); id != want {
			p.errorf("%s: source_id does not match raw report id %q", id, want)
		}
		// Reports carrying their own source_city keep it; the flag fills gaps.
		wantCity := sourceCity
		if own, ok := raws[i]["source_city"].(string); ok && own != "" {
			wantCity = own
		}
		if r.SourceCity != wantCity {
			p.errorf("%s: source_city %q, expected %q", id, r.SourceCity, wantCity)
		}
		if r.Description == "" {
			p.errorf("%s: empty description", id)
		}
		if !r.AnalyzedAt.Equal(baseTime) {
			p.errorf("%s: analyzed_at %s, expected fixed clock %s", id, r.AnalyzedAt, baseTime)
		}

		checkIntakeCategories(p, id, r)
		checkIntakeCoordinates(p, id, r)
	}
	return p
}

func checkIntakeCategories(p *phase, id string, r *domain.CategorizedReport) {
	for _, c := range r.Categories {
		if !domain.KnownCategory(c) {
			p.errorf("%s: unknown category %q", id, c)
		}
	}

	if len(r.Categories) == 0 {
		if r.KeywordMatches != 0 || r.Confidence != 0 {
			p.errorf("%s: uncategorized report has matches=%d confidence=%g", id, r.KeywordMatches, r.Confidence)
		}
		return
	}

	top := r.Categories[0]
	if r.KeywordMatches < 1 {
		p.errorf("%s: top category %q with %d keyword matches", id, top, r.KeywordMatches)
	}
	if size := domain.KeywordListSize(top); size > 0 {
		want := float64(r.KeywordMatches) / float64(size)
		if r.Confidence != want {
			p.errorf("%s: confidence %g, expected %d/%d", id, r.Confidence, r.KeywordMatches, size)
		}
	}
}

func checkIntakeCoordinates(p *phase, id string, r *domain.CategorizedReport) {
	if r.Coordinates == nil {
		return
	}
	if r.Coordinates.Lat < -90 || r.Coordinates.Lat > 90 {
		p.errorf("%s: latitude %g out of range", id, r.Coordinates.Lat)
	}
	if r.Coordinates.Lng < -180 || r.Coordinates.Lng > 180 {
		p.errorf("%s: longitude %g out of range", id, r.Coordinates.Lng)
	}
}

// ── Phase 2: Clustering ──
// Validates that the greedy pass produced a seed-anchored partition.

func validateClustering(reports []domain.CategorizedReport, clusters []domain.Cluster, radiusKm float64) *phase {
	p := &phase{name: "Phase 2: Clustering"}

	memberCount := 0
	memberIDs := map[string]int{}
	for i, c := range clusters {
		if c.ID != i {
			p.errorf("cluster at position %d has id %d", i, c.ID)
		}
		if len(c.Reports) == 0 {
			p.errorf("cluster %d: empty", c.ID)
			continue
		}
		memberCount += len(c.Reports)

		seed := c.Reports[0]
		for _, m := range c.Reports {
			if prev, dup := memberIDs[m.SourceID]; dup {
				p.errorf("cluster %d: report %s already in cluster %d", c.ID, m.SourceID, prev)
			}
			memberIDs[m.SourceID] = c.ID
		}
		checkClusterMembers(p, c, seed, radiusKm)
	}

	if memberCount != len(reports) {
		p.errorf("clusters hold %d reports, input had %d", memberCount, len(reports))
	}
	return p
}

// checkClusterMembers verifies every non-seed member merges with the seed:
// both located, within radius, sharing a category.
func checkClusterMembers(p *phase, c domain.Cluster, seed domain.CategorizedReport, radiusKm float64) {
	for _, m := range c.Reports[1:] {
		if seed.Coordinates == nil || m.Coordinates == nil {
			p.errorf("cluster %d: unlocated report %s merged with %s", c.ID, m.SourceID, seed.SourceID)
			continue
		}
		if d := domain.HaversineKm(*seed.Coordinates, *m.Coordinates); d > radiusKm {
			p.errorf("cluster %d: report %s is %.2f km from seed %s (radius %.2f)", c.ID, m.SourceID, d, seed.SourceID, radiusKm)
		}
		if !sharesCategory(seed.Categories, m.Categories) {
			p.errorf("cluster %d: report %s shares no category with seed %s", c.ID, m.SourceID, seed.SourceID)
		}
	}
}

func sharesCategory(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// ── Phase 3: Summary Assembly ──
// Validates each summary against the cluster it was assembled from.

func validateSummaries(clusters []domain.Cluster, summaries []domain.ClusterSummary, precision int) *phase {
	p := &phase{name: "Phase 3: Summary Assembly"}

	if len(summaries) != len(clusters) {
		p.errorf("summary count %d, cluster count %d", len(summaries), len(clusters))
		return p
	}

	for i := range summaries {
		checkSummary(p, &clusters[i], &summaries[i], precision)
	}
	return p
}

func checkSummary(p *phase, c *domain.Cluster, s *domain.ClusterSummary, precision int) {
	id := s.ClusterID
	first := c.Reports[0]

	if id != c.ID {
		p.errorf("summary %d: cluster_id does not match cluster %d", id, c.ID)
	}
	if s.Occurrences != len(c.Reports) {
		p.errorf("summary %d: occurrences %d, cluster has %d reports", id, s.Occurrences, len(c.Reports))
	}
	if len(s.Descriptions) != len(c.Reports) {
		p.errorf("summary %d: %d descriptions for %d reports", id, len(s.Descriptions), len(c.Reports))
	}

	// Offline runs have no text generator, so the fixed fallbacks are expected.
	if s.Summary != domain.SummaryFallback {
		p.errorf("summary %d: summary text %q, expected fallback", id, s.Summary)
	}
	if s.Advice != domain.AdviceFallback {
		p.errorf("summary %d: advice text %q, expected fallback", id, s.Advice)
	}
	if s.Votes != 0 {
		p.errorf("summary %d: votes initialized to %d", id, s.Votes)
	}
	if s.SourceCity != first.SourceCity {
		p.errorf("summary %d: source_city %q, expected %q", id, s.SourceCity, first.SourceCity)
	}
	if s.Location != first.Location {
		p.errorf("summary %d: location %q, expected seed location %q", id, s.Location, first.Location)
	}

	checkSummaryCategories(p, c, s)
	checkSummaryGeohash(p, first, s, precision)

	if want := domain.ResolutionTime(s.Categories); !s.ResolutionTime.Equal(want) {
		p.errorf("summary %d: resolution_time %s, expected %s for categories %v", id, s.ResolutionTime, want, s.Categories)
	}
}

// checkSummaryCategories verifies the summary's set is exactly the union of
// its members' categories.
func checkSummaryCategories(p *phase, c *domain.Cluster, s *domain.ClusterSummary) {
	want := map[string]bool{}
	for _, r := range c.Reports {
		for _, cat := range r.Categories {
			want[cat] = true
		}
	}
	got := map[string]bool{}
	for _, cat := range s.Categories {
		if got[cat] {
			p.errorf("summary %d: duplicate category %q", s.ClusterID, cat)
		}
		got[cat] = true
		if !want[cat] {
			p.errorf("summary %d: category %q not held by any member", s.ClusterID, cat)
		}
	}
	for cat := range want {
		if !got[cat] {
			p.errorf("summary %d: member category %q missing from summary", s.ClusterID, cat)
		}
	}
}

func checkSummaryGeohash(p *phase, first domain.CategorizedReport, s *domain.ClusterSummary, precision int) {
	if first.Coordinates == nil {
		if s.Geohash != "" {
			p.errorf("summary %d: geohash %q on unlocated cluster", s.ClusterID, s.Geohash)
		}
		return
	}
	want := domain.EncodeGeohash(first.Coordinates.Lat, first.Coordinates.Lng, precision)
	if s.Geohash != want {
		p.errorf("summary %d: geohash %q, expected %q", s.ClusterID, s.Geohash, want)
	}
}
