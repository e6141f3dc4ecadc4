package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxDescriptionLen bounds the generated per-report description.
const maxDescriptionLen = 200

// AnalyzeReport derives the immutable CategorizedReport for one raw report:
// coordinate normalization, text extraction, categorization, and a short
// generated description. index is the report's position in the batch, used
// for the fallback source id. The result never changes for the same input
// under a frozen clock.
func AnalyzeReport(r RawReport, index int, sourceCity string) CategorizedReport {
	text := ExtractText(r)
	matches := Categorize(text)
	location := ExtractLocation(r)

	var keywordMatches int
	var confidence float64
	if len(matches) > 0 {
		top := matches[0]
		keywordMatches = top.Matches
		if size := KeywordListSize(top.Category); size > 0 {
			confidence = float64(top.Matches) / float64(size)
		}
	}

	city := stringField(r, "source_city")
	if city == "" {
		city = sourceCity
	}

	return CategorizedReport{
		Description:    describeReport(matches, location, text),
		Text:           text,
		Location:       location,
		Coordinates:    NormalizeCoordinates(r),
		Categories:     CategoryLabels(matches),
		KeywordMatches: keywordMatches,
		Confidence:     confidence,
		SourceID:       ReportID(r, index),
		SourceCity:     city,
		ImageURL:       stringField(r, "image_url", "media_url"),
		AnalyzedAt:     clock.Now(),
	}
}

// describeReport renders the short human-readable description stored with
// each processed report.
func describeReport(matches []CategoryMatch, location, text string) string {
	excerpt := text
	if utf8.RuneCountInString(excerpt) > 150 {
		excerpt = string([]rune(excerpt)[:150])
	}

	var description string
	if len(matches) > 0 {
		description = fmt.Sprintf("Detected %s situation in %s: %s...", matches[0].Category, location, excerpt)
	} else {
		description = fmt.Sprintf("Situation reported in %s: %s...", location, excerpt)
	}

	if utf8.RuneCountInString(description) > maxDescriptionLen {
		description = string([]rune(description)[:maxDescriptionLen-3]) + "..."
	}
	return strings.TrimSpace(description)
}
