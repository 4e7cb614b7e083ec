package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the KDE/mean-shift engine.
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Query metrics
	QueriesTotal       *prometheus.CounterVec
	ProbDuration       prometheus.Histogram
	ModeIterations     prometheus.Histogram
	ClusterModes       prometheus.Histogram
	SamplerDrawsTotal  *prometheus.CounterVec
	ManifoldIterations prometheus.Histogram

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheSize   prometheus.Gauge

	// Registry (façade-hosting) metrics
	ModelsTotal     prometheus.Gauge
	ModelQuotaUsage *prometheus.GaugeVec
	ModelExemplars  *prometheus.GaugeVec

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
	CPUUsage        prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kde_requests_total",
				Help: "Total number of requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kde_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kde_request_errors_total",
				Help: "Total number of request errors by method and error type",
			},
			[]string{"method", "error_type"},
		),

		QueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kde_queries_total",
				Help: "Total number of façade operations by operation name",
			},
			[]string{"model", "operation"},
		),
		ProbDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kde_prob_duration_seconds",
				Help:    "prob() evaluation duration in seconds",
				Buckets: []float64{.00001, .0001, .001, .01, .1, 1},
			},
		),
		ModeIterations: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kde_mode_iterations",
				Help:    "Number of mean-shift iterations consumed by mode()/manifold()",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
			},
		),
		ManifoldIterations: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kde_manifold_iterations",
				Help:    "Number of subspace-constrained mean-shift iterations consumed by manifold()",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
			},
		),
		ClusterModes: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kde_cluster_modes",
				Help:    "Number of distinct modes returned by cluster()",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 500},
			},
		),
		SamplerDrawsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kde_sampler_draws_total",
				Help: "Total number of draw/bootstrap/mult samples produced, by kind",
			},
			[]string{"model", "kind"},
		),

		CacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "kde_cache_hits_total",
				Help: "Total number of query-memoization cache hits",
			},
		),
		CacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "kde_cache_misses_total",
				Help: "Total number of query-memoization cache misses",
			},
		),
		CacheSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "kde_cache_size",
				Help: "Current number of entries in the query-memoization cache",
			},
		),

		ModelsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "kde_models_total",
				Help: "Total number of active named façades hosted by the registry",
			},
		),
		ModelQuotaUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kde_model_quota_usage",
				Help: "Model quota usage by model name and resource",
			},
			[]string{"model", "resource"},
		),
		ModelExemplars: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kde_model_exemplars",
				Help: "Number of exemplars currently loaded, by model name",
			},
			[]string{"model"},
		),

		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "kde_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "kde_memory_bytes",
				Help: "Memory usage in bytes",
			},
		),
		CPUUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "kde_cpu_usage",
				Help: "CPU usage percentage",
			},
		),
	}

	return m
}

// RecordRequest records a request with duration and status.
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records an error.
func (m *Metrics) RecordError(method, errorType string) {
	m.RequestErrors.WithLabelValues(method, errorType).Inc()
}

// RecordQuery records a façade operation invocation for a named model.
func (m *Metrics) RecordQuery(model, operation string) {
	m.QueriesTotal.WithLabelValues(model, operation).Inc()
}

// RecordProb records one prob() call's duration.
func (m *Metrics) RecordProb(duration time.Duration) {
	m.ProbDuration.Observe(duration.Seconds())
}

// RecordModeIterations records how many mean-shift iterations mode() consumed.
func (m *Metrics) RecordModeIterations(iterations int) {
	m.ModeIterations.Observe(float64(iterations))
}

// RecordManifoldIterations records how many iterations manifold() consumed.
func (m *Metrics) RecordManifoldIterations(iterations int) {
	m.ManifoldIterations.Observe(float64(iterations))
}

// RecordClusterModes records how many modes cluster() discovered.
func (m *Metrics) RecordClusterModes(modes int) {
	m.ClusterModes.Observe(float64(modes))
}

// RecordSamplerDraw records one draw/bootstrap/mult sample of the given kind.
func (m *Metrics) RecordSamplerDraw(model, kind string) {
	m.SamplerDrawsTotal.WithLabelValues(model, kind).Inc()
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

// UpdateCacheSize updates the cache size gauge.
func (m *Metrics) UpdateCacheSize(size int) {
	m.CacheSize.Set(float64(size))
}

// UpdateModelCount updates the total hosted-model count.
func (m *Metrics) UpdateModelCount(count int) {
	m.ModelsTotal.Set(float64(count))
}

// UpdateModelQuota updates a model's quota usage for a resource.
func (m *Metrics) UpdateModelQuota(model, resource string, usage float64) {
	m.ModelQuotaUsage.WithLabelValues(model, resource).Set(usage)
}

// UpdateModelExemplars updates a model's current exemplar count.
func (m *Metrics) UpdateModelExemplars(model string, count int) {
	m.ModelExemplars.WithLabelValues(model).Set(float64(count))
}

// UpdateGoroutineCount updates goroutine count.
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

// UpdateMemoryUsage updates memory usage.
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}

// UpdateCPUUsage updates CPU usage.
func (m *Metrics) UpdateCPUUsage(percentage float64) {
	m.CPUUsage.Set(percentage)
}
