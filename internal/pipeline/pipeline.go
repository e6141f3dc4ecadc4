package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/civicsignal/incident-fusion/internal/domain"
	"github.com/civicsignal/incident-fusion/internal/observability"
)

// Fetcher pulls a batch of raw reports from the upstream feed.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.RawReport, error)
}

// Transformer converts a raw report into a categorized report.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawReport, index int) (domain.CategorizedReport, error)
}

// Summarizer reduces a cluster to its canonical incident record.
type Summarizer interface {
	Summarize(ctx context.Context, cluster domain.Cluster) domain.ClusterSummary
}

// Store persists engine artifacts between runs. Save methods report how many
// documents were written; a count below the input length means a partial
// failure, with the error describing the first failed write.
type Store interface {
	SaveRaw(ctx context.Context, reports []domain.RawReport) (int, error)
	SaveProcessed(ctx context.Context, reports []domain.CategorizedReport) (int, error)
	SaveSummaries(ctx context.Context, summaries []domain.ClusterSummary) (int, error)
	StreamProcessed(ctx context.Context) ([]domain.CategorizedReport, error)
}

// Publisher emits cluster summaries to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, summaries []domain.ClusterSummary) error
}

// RunResult reports what a single engine run did.
type RunResult struct {
	Fetched   int `json:"fetched"`
	StoredRaw int `json:"stored_raw"`
	Processed int `json:"processed"`
	Clusters  int `json:"clusters"`
	Summaries int `json:"summaries"`
}

// Pipeline orchestrates the fetch-categorize-cluster-summarize loop. The
// store and publisher are optional; pass nil to run without persistence or a
// summary sink.
type Pipeline struct {
	fetcher     Fetcher
	transformer Transformer
	summarizer  Summarizer
	store       Store
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics

	radiusKm     float64
	pollInterval time.Duration

	mu    sync.Mutex
	ready atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(f Fetcher, t Transformer, s Summarizer, store Store, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, radiusKm float64, pollInterval time.Duration) *Pipeline {
	if radiusKm <= 0 {
		radiusKm = domain.DefaultClusterRadiusKm
	}
	return &Pipeline{
		fetcher:      f,
		transformer:  t,
		summarizer:   s,
		store:        store,
		publisher:    pub,
		logger:       logger,
		metrics:      metrics,
		radiusKm:     radiusKm,
		pollInterval: pollInterval,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// run, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run executes the polling loop until the context is cancelled. Failed runs
// retry with exponential backoff instead of waiting a full poll interval.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "poll_interval", p.pollInterval, "cluster_radius_km", p.radiusKm)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during feed outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		res, err := p.RunOnce(ctx)
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		if err != nil {
			p.logger.Error("run failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = 200 * time.Millisecond
		p.logger.Info("run complete",
			"fetched", res.Fetched,
			"processed", res.Processed,
			"clusters", res.Clusters,
			"summaries", res.Summaries,
		)

		if !sleepWithContext(ctx, p.pollInterval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce executes a single fetch-categorize-cluster-summarize cycle. Runs
// are serialized: a manually triggered run waits for the polling loop's
// current cycle to finish.
func (p *Pipeline) RunOnce(ctx context.Context) (RunResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	var res RunResult

	raws, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch feed: %w", err)
	}
	res.Fetched = len(raws)
	p.metrics.ReportsFetched.Add(float64(len(raws)))

	if len(raws) == 0 {
		p.ready.Store(true)
		return res, nil
	}
	p.metrics.BatchSize.Observe(float64(len(raws)))

	res.StoredRaw = p.saveRaw(ctx, raws)

	reports, err := p.transformBatch(ctx, raws)
	res.Processed = len(reports)
	if err != nil {
		return res, err
	}
	p.saveProcessed(ctx, reports)

	summaries, err := p.synthesize(ctx, reports, &res)
	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	p.deliver(ctx, summaries)

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return res, nil
}

// SynthesizeStored re-clusters and re-summarizes the processed reports in the
// document store, without fetching new data.
func (p *Pipeline) SynthesizeStored(ctx context.Context) (RunResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var res RunResult
	if p.store == nil {
		return res, errors.New("no document store configured")
	}

	reports, err := p.store.StreamProcessed(ctx)
	if err != nil {
		return res, fmt.Errorf("stream processed reports: %w", err)
	}
	res.Processed = len(reports)

	summaries, err := p.synthesize(ctx, reports, &res)
	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	p.deliver(ctx, summaries)
	return res, nil
}

// IngestOne transforms and persists a single report outside the polling loop,
// for reports submitted directly over HTTP.
func (p *Pipeline) IngestOne(ctx context.Context, raw domain.RawReport) (domain.CategorizedReport, error) {
	report, err := p.transformer.Transform(ctx, raw, 0)
	if err != nil {
		return domain.CategorizedReport{}, fmt.Errorf("transform report: %w", err)
	}
	for _, c := range report.Categories {
		p.metrics.ReportsCategorized.WithLabelValues(c).Inc()
	}

	p.saveRaw(ctx, []domain.RawReport{raw})
	p.saveProcessed(ctx, []domain.CategorizedReport{report})
	return report, nil
}

// transformBatch categorizes each raw report, skipping the ones that fail.
// Cancellation is checked between reports; already-transformed reports are
// returned alongside the context error.
func (p *Pipeline) transformBatch(ctx context.Context, raws []domain.RawReport) ([]domain.CategorizedReport, error) {
	reports := make([]domain.CategorizedReport, 0, len(raws))
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := p.transformer.Transform(ctx, raw, i)
		if err != nil {
			p.logger.Warn("transform failed, skipping report",
				"error", err,
				"report_id", domain.ReportID(raw, i),
			)
			continue
		}
		for _, c := range report.Categories {
			p.metrics.ReportsCategorized.WithLabelValues(c).Inc()
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// synthesize clusters the reports and summarizes each cluster. Cancellation
// is checked between clusters so a stopped run does not keep invoking the
// text generator.
func (p *Pipeline) synthesize(ctx context.Context, reports []domain.CategorizedReport, res *RunResult) ([]domain.ClusterSummary, error) {
	if len(reports) == 0 {
		return nil, nil
	}

	clusters := domain.ClusterReports(reports, p.radiusKm)
	res.Clusters = len(clusters)
	p.metrics.ClustersFormed.Add(float64(len(clusters)))

	summaries := make([]domain.ClusterSummary, 0, len(clusters))
	for _, cluster := range clusters {
		if err := ctx.Err(); err != nil {
			res.Summaries = len(summaries)
			return summaries, err
		}
		p.metrics.ClusterSize.Observe(float64(len(cluster.Reports)))

		summary := p.summarizer.Summarize(ctx, cluster)
		outcome := "success"
		if summary.Summary == domain.SummaryFallback || summary.Advice == domain.AdviceFallback {
			outcome = "fallback"
		}
		p.metrics.Summaries.WithLabelValues(outcome).Inc()
		summaries = append(summaries, summary)
	}
	res.Summaries = len(summaries)
	return summaries, nil
}

// deliver persists summaries and publishes them to the sink, logging rather
// than failing the run on either error.
func (p *Pipeline) deliver(ctx context.Context, summaries []domain.ClusterSummary) {
	if len(summaries) == 0 {
		return
	}

	if p.store != nil {
		stored, err := p.store.SaveSummaries(ctx, summaries)
		p.observeWrite("summarized_data", stored, len(summaries), err)
	}

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, summaries); err != nil {
			p.logger.Error("publish summaries failed", "error", err, "count", len(summaries))
		} else {
			p.metrics.SummariesPublished.Add(float64(len(summaries)))
		}
	}
}

func (p *Pipeline) saveRaw(ctx context.Context, raws []domain.RawReport) int {
	if p.store == nil {
		return 0
	}
	stored, err := p.store.SaveRaw(ctx, raws)
	p.observeWrite("raw_data", stored, len(raws), err)
	return stored
}

func (p *Pipeline) saveProcessed(ctx context.Context, reports []domain.CategorizedReport) {
	if p.store == nil || len(reports) == 0 {
		return
	}
	stored, err := p.store.SaveProcessed(ctx, reports)
	p.observeWrite("processed_data", stored, len(reports), err)
}

// observeWrite records store write metrics and logs partial failures.
func (p *Pipeline) observeWrite(collection string, stored, total int, err error) {
	p.metrics.StoreWrites.WithLabelValues(collection, "success").Add(float64(stored))
	if failed := total - stored; failed > 0 {
		p.metrics.StoreWrites.WithLabelValues(collection, "error").Add(float64(failed))
	}
	if err != nil {
		p.logger.Error("store write failed",
			"collection", collection,
			"stored", stored,
			"total", total,
			"error", err,
		)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
