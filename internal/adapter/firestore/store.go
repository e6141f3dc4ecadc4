package firestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/civicsignal/incident-fusion/internal/domain"
)

// Collection names shared with the consumer-facing backend.
const (
	rawCollection       = "raw_data"
	processedCollection = "processed_data"
	summaryCollection   = "summarized_data"
)

// Store persists engine artifacts in Firestore. Writes are per-document:
// one bad document does not abort the rest of the batch, the save reports
// how many landed and the first error encountered.
type Store struct {
	client     *firestore.Client
	sourceCity string
	logger     *slog.Logger
}

// NewStore creates a Firestore-backed store. Raw documents are stamped with
// sourceCity on write. Credentials come from the ambient environment
// (GOOGLE_APPLICATION_CREDENTIALS or the metadata server).
func NewStore(ctx context.Context, projectID, sourceCity string, logger *slog.Logger) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Store{client: client, sourceCity: sourceCity, logger: logger}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// SaveRaw stores the raw feed payloads as fetched, stamped with the fetch
// provenance and storage time.
func (s *Store) SaveRaw(ctx context.Context, reports []domain.RawReport) (int, error) {
	stored := 0
	var firstErr error
	now := time.Now().UTC()

	for i, report := range reports {
		doc := stampRaw(report, s.sourceCity, now)
		if _, _, err := s.client.Collection(rawCollection).Add(ctx, doc); err != nil {
			s.logger.Warn("raw write failed", "report_id", domain.ReportID(report, i), "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		stored++
	}
	return stored, firstErr
}

// SaveProcessed stores categorized reports.
func (s *Store) SaveProcessed(ctx context.Context, reports []domain.CategorizedReport) (int, error) {
	stored := 0
	var firstErr error

	for _, report := range reports {
		if _, _, err := s.client.Collection(processedCollection).Add(ctx, report); err != nil {
			s.logger.Warn("processed write failed", "report_id", report.SourceID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		stored++
	}
	return stored, firstErr
}

// SaveSummaries stores cluster summaries.
func (s *Store) SaveSummaries(ctx context.Context, summaries []domain.ClusterSummary) (int, error) {
	stored := 0
	var firstErr error

	for _, summary := range summaries {
		if _, _, err := s.client.Collection(summaryCollection).Add(ctx, summary); err != nil {
			s.logger.Warn("summary write failed", "cluster_id", summary.ClusterID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		stored++
	}
	return stored, firstErr
}

// StreamProcessed reads back every categorized report, skipping documents
// that no longer match the current schema.
func (s *Store) StreamProcessed(ctx context.Context) ([]domain.CategorizedReport, error) {
	var reports []domain.CategorizedReport

	it := s.client.Collection(processedCollection).Documents(ctx)
	defer it.Stop()

	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return reports, fmt.Errorf("iterate processed reports: %w", err)
		}

		var report domain.CategorizedReport
		if err := doc.DataTo(&report); err != nil {
			s.logger.Warn("skipping malformed processed document", "doc", doc.Ref.ID, "error", err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// stampRaw copies the payload and records where and when it was fetched and
// stored, leaving the caller's map untouched. The configured city overrides
// whatever the payload claims; raw documents carry the fetcher's provenance.
func stampRaw(report domain.RawReport, city string, now time.Time) map[string]any {
	doc := make(map[string]any, len(report)+3)
	for k, v := range report {
		doc[k] = v
	}
	doc["fetched_at"] = now
	doc["source_city"] = city
	doc["stored_at"] = now
	return doc
}
