package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Request metrics
	chatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonepixie_chat_requests_total",
		Help: "Total number of chat requests by terminal outcome",
	}, []string{"outcome"})

	chatRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phonepixie_chat_request_duration_seconds",
		Help:    "Duration of chat requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	// Pipeline metrics
	safetyBlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonepixie_safety_blocks_total",
		Help: "Total number of messages blocked by the safety gate",
	}, []string{"category"})

	intentsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonepixie_intents_total",
		Help: "Total number of classified intents",
	}, []string{"type", "source"})

	candidateSetSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phonepixie_candidate_set_size",
		Help:    "Number of candidates handed to the synthesizer",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	}, []string{"intent"})

	fallbacksRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonepixie_fallbacks_total",
		Help: "Total number of replies rendered without generation",
	}, []string{"intent", "reason"})

	// AI metrics
	aiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phonepixie_ai_request_duration_seconds",
		Help:    "Duration of generation requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model", "status"})

	aiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonepixie_ai_requests_total",
		Help: "Total number of generation requests",
	}, []string{"model", "status"})

	// Cache metrics
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phonepixie_cache_hits_total",
		Help: "Total number of cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phonepixie_cache_misses_total",
		Help: "Total number of cache misses",
	})

	// Rate limit metrics
	rateLimitExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phonepixie_rate_limit_exceeded_total",
		Help: "Total number of requests rejected by the rate limiter",
	})

	// Storage metrics
	storageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonepixie_storage_operations_total",
		Help: "Total number of rate-limit store operations",
	}, []string{"operation", "status"})

	storageOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phonepixie_storage_operation_duration_seconds",
		Help:    "Duration of rate-limit store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	catalogEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "phonepixie_catalog_entries",
		Help: "Number of entries in the loaded catalog",
	})
)

// Metrics provides methods to record metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct{}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRequest records a finished chat request
func (m *Metrics) RecordRequest(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	chatRequests.WithLabelValues(outcome).Inc()
	chatRequestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordSafetyBlock records a message blocked by the safety gate
func (m *Metrics) RecordSafetyBlock(category string) {
	if m == nil {
		return
	}
	safetyBlocks.WithLabelValues(category).Inc()
}

// RecordIntent records a classified intent
func (m *Metrics) RecordIntent(intentType, source string) {
	if m == nil {
		return
	}
	intentsClassified.WithLabelValues(intentType, source).Inc()
}

// ObserveCandidates records the size of a candidate set
func (m *Metrics) ObserveCandidates(intentType string, n int) {
	if m == nil {
		return
	}
	candidateSetSize.WithLabelValues(intentType).Observe(float64(n))
}

// RecordFallback records a reply rendered by a deterministic renderer
func (m *Metrics) RecordFallback(intentType, reason string) {
	if m == nil {
		return
	}
	fallbacksRendered.WithLabelValues(intentType, reason).Inc()
}

// RecordAIRequest records a generation request
func (m *Metrics) RecordAIRequest(model, status string, duration time.Duration) {
	if m == nil {
		return
	}
	aiRequestDuration.WithLabelValues(model, status).Observe(duration.Seconds())
	aiRequestsTotal.WithLabelValues(model, status).Inc()
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	cacheHits.Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	cacheMisses.Inc()
}

// RecordRateLimitExceeded records a rejected request
func (m *Metrics) RecordRateLimitExceeded() {
	if m == nil {
		return
	}
	rateLimitExceeded.Inc()
}

// RecordStorageOperation records a window store operation
func (m *Metrics) RecordStorageOperation(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	storageOperations.WithLabelValues(operation, status).Inc()
	storageOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetCatalogEntries sets the catalog size gauge
func (m *Metrics) SetCatalogEntries(count int) {
	if m == nil {
		return
	}
	catalogEntries.Set(float64(count))
}

// StartMetricsServer starts the metrics HTTP server
func StartMetricsServer(port int, path string) error {
	router := mux.NewRouter()
	router.Handle(path, promhttp.Handler())

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
