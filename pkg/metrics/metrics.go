package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry is the registry exposed on /api/metrics
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Custom histogram buckets for API response times ranging from milliseconds to 30+ seconds
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Contact API client metrics
	ContactAPIRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contact_api_client_operation_duration_seconds",
			Help:    "Contact API client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	ContactAPIRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_api_client_operation_total",
			Help: "Total number of contact API client operations",
		},
		[]string{"operation", "status"},
	)

	// Session cache metrics
	CacheSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	// Directory metrics
	DirectoryFetches = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrdirectory_fetches_total",
			Help: "Total number of directory list fetches issued, by trigger",
		},
		[]string{"trigger"},
	)

	DirectoryFetchResults = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrdirectory_fetch_results_total",
			Help: "Directory list fetch outcomes (applied, failed, stale)",
		},
		[]string{"outcome"},
	)

	SearchKeystrokesCoalesced = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "hrdirectory_search_keystrokes_coalesced_total",
			Help: "Search edits absorbed by the debounce window",
		},
	)

	ContactCreations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrdirectory_contact_creations_total",
			Help: "Total number of contact creation attempts",
		},
		[]string{"status"},
	)

	FormValidationFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrdirectory_form_validation_failures_total",
			Help: "Record form validation failures by field",
		},
		[]string{"field"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

func init() {
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically until ctx is done
func RecordInfrastructureMetrics(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)

				GoRoutines.Set(float64(runtime.NumGoroutine()))
				HeapAlloc.Set(float64(m.HeapAlloc))
			}
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
