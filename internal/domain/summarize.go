package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Fallback strings substituted when text generation is unavailable or fails.
// They are part of the persisted record contract.
const (
	SummaryFallback = "Summary generation failed due to an error."
	AdviceFallback  = "Advice generation failed due to an error."
)

// DefaultGeohashPrecision is the summary index-key length when none is
// configured.
const DefaultGeohashPrecision = 9

// Summarizer reduces a cluster to its canonical incident record, invoking a
// text generator for the natural-language summary and advice.
type Summarizer struct {
	generator TextGenerator
	precision int
	logger    *slog.Logger
}

// NewSummarizer creates a Summarizer. Pass a nil generator to run degraded:
// every summary then carries the fixed fallback strings.
func NewSummarizer(generator TextGenerator, precision int, logger *slog.Logger) *Summarizer {
	if precision <= 0 {
		precision = DefaultGeohashPrecision
	}
	return &Summarizer{
		generator: generator,
		precision: precision,
		logger:    logger,
	}
}

// Summarize assembles the ClusterSummary for one cluster. The representative
// coordinate and location come from the first member, categories are the
// union of every member's set in first-seen order, and descriptions preserve
// input order. Generation failures degrade to the fallback strings.
func (s *Summarizer) Summarize(ctx context.Context, cluster Cluster) ClusterSummary {
	first := cluster.Reports[0]

	categories := unionCategories(cluster.Reports)
	descriptions := make([]string, len(cluster.Reports))
	var imageURLs []string
	for i, r := range cluster.Reports {
		descriptions[i] = r.Description
		if r.ImageURL != "" {
			imageURLs = append(imageURLs, r.ImageURL)
		}
	}

	summary := s.generateSummary(ctx, cluster.ID, descriptions)
	advice := s.generateAdvice(ctx, cluster.ID, summary)

	var geohash string
	if first.Coordinates != nil {
		geohash = EncodeGeohash(first.Coordinates.Lat, first.Coordinates.Lng, s.precision)
	}

	return ClusterSummary{
		ClusterID:      cluster.ID,
		Summary:        summary,
		Advice:         advice,
		Occurrences:    len(cluster.Reports),
		ResolutionTime: ResolutionTime(categories),
		Coordinates:    first.Coordinates,
		Categories:     categories,
		Descriptions:   descriptions,
		Location:       first.Location,
		SourceCity:     first.SourceCity,
		ImageURLs:      imageURLs,
		Geohash:        geohash,
		Votes:          0,
	}
}

func (s *Summarizer) generateSummary(ctx context.Context, clusterID int, descriptions []string) string {
	if s.generator == nil {
		return SummaryFallback
	}
	prompt := fmt.Sprintf(
		"Generate a concise but detailed summary for the following data points:\n%s\n\nSummary:",
		strings.Join(descriptions, " "),
	)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("summary generation failed", "cluster_id", clusterID, "error", err)
		return SummaryFallback
	}
	return strings.TrimSpace(text)
}

func (s *Summarizer) generateAdvice(ctx context.Context, clusterID int, summary string) string {
	if s.generator == nil {
		return AdviceFallback
	}
	prompt := fmt.Sprintf(
		"Based on the following summary, provide actionable advice in a few lines:\n%s\n\nAdvice:",
		summary,
	)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("advice generation failed", "cluster_id", clusterID, "error", err)
		return AdviceFallback
	}
	return strings.TrimSpace(text)
}

// unionCategories merges member category sets preserving first-seen order,
// which keeps output deterministic for a given input ordering.
func unionCategories(reports []CategorizedReport) []string {
	seen := make(map[string]bool)
	var union []string
	for _, r := range reports {
		for _, c := range r.Categories {
			if !seen[c] {
				seen[c] = true
				union = append(union, c)
			}
		}
	}
	return union
}
