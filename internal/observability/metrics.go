package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// fusion engine.
type Metrics struct {
	ReportsFetched     prometheus.Counter
	ReportsCategorized *prometheus.CounterVec // labels: category
	PipelineRunning    prometheus.Gauge

	// Run-level metrics.
	RunDuration    prometheus.Histogram
	BatchSize      prometheus.Histogram
	ClustersFormed prometheus.Counter
	ClusterSize    prometheus.Histogram

	// Summary assembly metrics.
	Summaries *prometheus.CounterVec // labels: outcome={success,fallback}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge

	// Persistence and publishing metrics.
	StoreWrites        *prometheus.CounterVec // labels: collection, outcome={success,error}
	SummariesPublished prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReportsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_fusion",
			Name:      "reports_fetched_total",
			Help:      "Total raw reports fetched from the feed.",
		}),
		ReportsCategorized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_fusion",
			Name:      "reports_categorized_total",
			Help:      "Reports assigned to each category.",
		}, []string{"category"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "incident_fusion",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_fusion",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-cluster-summarize cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_fusion",
			Name:      "batch_size",
			Help:      "Number of raw reports per batch fetched from the feed.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		ClustersFormed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_fusion",
			Name:      "clusters_formed_total",
			Help:      "Total clusters formed across all runs.",
		}),
		ClusterSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_fusion",
			Name:      "cluster_size",
			Help:      "Number of reports per cluster.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
		}),
		Summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_fusion",
			Name:      "summaries_total",
			Help:      "Cluster summaries assembled by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_fusion",
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_fusion",
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_fusion",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "incident_fusion",
			Name:      "geocode_enabled",
			Help:      "1 when reverse geocoding enrichment is enabled, 0 otherwise.",
		}),
		StoreWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_fusion",
			Name:      "store_writes_total",
			Help:      "Document store writes by collection and outcome.",
		}, []string{"collection", "outcome"}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_fusion",
			Name:      "summaries_published_total",
			Help:      "Cluster summaries published to the sink topic.",
		}),
	}

	prometheus.MustRegister(
		m.ReportsFetched,
		m.ReportsCategorized,
		m.PipelineRunning,
		m.RunDuration,
		m.BatchSize,
		m.ClustersFormed,
		m.ClusterSize,
		m.Summaries,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.StoreWrites,
		m.SummariesPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReportsFetched:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_fusion", Name: "reports_fetched_total"}),
		ReportsCategorized: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_fusion", Name: "reports_categorized_total"}, []string{"category"}),
		PipelineRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "incident_fusion", Name: "pipeline_running"}),
		RunDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_fusion", Name: "run_duration_seconds"}),
		BatchSize:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_fusion", Name: "batch_size"}),
		ClustersFormed:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_fusion", Name: "clusters_formed_total"}),
		ClusterSize:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_fusion", Name: "cluster_size"}),
		Summaries:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_fusion", Name: "summaries_total"}, []string{"outcome"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_fusion", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_fusion", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_fusion", Name: "geocode_api_duration_seconds"}),
		GeocodeEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "incident_fusion", Name: "geocode_enabled"}),
		StoreWrites:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_fusion", Name: "store_writes_total"}, []string{"collection", "outcome"}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_fusion", Name: "summaries_published_total"}),
	}
}
