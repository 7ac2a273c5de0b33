package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics contains all HTTP-related metrics
type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
}

// ScrapeMetrics contains metrics for the availability-sweep pipeline
type ScrapeMetrics struct {
	ProbesTotal       *prometheus.CounterVec
	ProbeDuration     *prometheus.HistogramVec
	SweepsTotal       *prometheus.CounterVec
	SweepDuration     *prometheus.HistogramVec
	CatalogItemsSynced *prometheus.CounterVec
	StoresMapped      *prometheus.CounterVec
	SessionRenewals   *prometheus.CounterVec
	HostConcurrency   *prometheus.GaugeVec
}

// DatabaseMetrics contains all database-related metrics
type DatabaseMetrics struct {
	QueriesTotal    *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec
	ConnectionsOpen prometheus.Gauge
	ConnectionsIdle prometheus.Gauge
}

// CacheMetrics contains all cache-related metrics
type CacheMetrics struct {
	HitsTotal   prometheus.Counter
	MissesTotal prometheus.Counter
	ErrorsTotal prometheus.Counter
	Latency     prometheus.Histogram
}

var (
	// HTTP is the singleton instance for HTTP metrics
	HTTP *HTTPMetrics

	// Scrape is the singleton instance for availability-sweep metrics
	Scrape *ScrapeMetrics

	// Database is the singleton instance for database metrics
	Database *DatabaseMetrics

	// Cache is the singleton instance for cache metrics
	Cache *CacheMetrics
)

// Init initializes all metrics
func Init(namespace string) {
	HTTP = initHTTPMetrics(namespace)
	Scrape = initScrapeMetrics(namespace)
	Database = initDatabaseMetrics(namespace)
	Cache = initCacheMetrics(namespace)
}

func initHTTPMetrics(namespace string) *HTTPMetrics {
	return &HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 7), // 100 bytes to 100MB
			},
			[]string{"method", "path"},
		),
		ResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "path"},
		),
		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_errors_total",
				Help:      "Total number of HTTP errors",
			},
			[]string{"method", "path", "error_type"},
		),
	}
}

func initScrapeMetrics(namespace string) *ScrapeMetrics {
	return &ScrapeMetrics{
		ProbesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probes_total",
				Help:      "Total number of availability probes executed, by retailer and outcome",
			},
			[]string{"retailer", "outcome"},
		),
		ProbeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "probe_duration_seconds",
				Help:      "Latency of a single availability probe",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"retailer"},
		),
		SweepsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweeps_total",
				Help:      "Total number of sweeps completed, by retailer, kind and status",
			},
			[]string{"retailer", "kind", "status"},
		),
		SweepDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Wall-clock duration of a completed sweep",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
			},
			[]string{"retailer", "kind"},
		),
		CatalogItemsSynced: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_items_synced_total",
				Help:      "Catalog entities created or updated during a sync, by retailer and entity kind",
			},
			[]string{"retailer", "entity"},
		),
		StoresMapped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stores_mapped_total",
				Help:      "Pickup points linked to stores, by retailer and match method",
			},
			[]string{"retailer", "method"},
		),
		SessionRenewals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_renewals_total",
				Help:      "HTTP session warm-up cycles, by retailer and result",
			},
			[]string{"retailer", "result"},
		),
		HostConcurrency: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "host_inflight_requests",
				Help:      "In-flight HTTP requests against a retailer host",
			},
			[]string{"host"},
		),
	}
}

func initDatabaseMetrics(namespace string) *DatabaseMetrics {
	return &DatabaseMetrics{
		QueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "database_queries_total",
				Help:      "Total number of database queries",
			},
			[]string{"operation", "table"},
		),
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "database_query_duration_seconds",
				Help:      "Database query latency in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "table"},
		),
		ConnectionsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_connections_open",
			Help:      "Number of open database connections",
		}),
		ConnectionsIdle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_connections_idle",
			Help:      "Number of idle database connections",
		}),
	}
}

func initCacheMetrics(namespace string) *CacheMetrics {
	return &CacheMetrics{
		HitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		}),
		MissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		}),
		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Total number of cache errors",
		}),
		Latency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_latency_seconds",
			Help:      "Cache operation latency in seconds",
			Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
	}
}

// RecordHTTPRequest records an HTTP request with all its metrics
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int64) {
	if HTTP == nil {
		return
	}

	HTTP.RequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTP.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	HTTP.RequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	HTTP.ResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// RecordHTTPError records an HTTP error
func RecordHTTPError(method, path, errorType string) {
	if HTTP == nil {
		return
	}
	HTTP.ErrorsTotal.WithLabelValues(method, path, errorType).Inc()
}

// RecordDatabaseQuery records a database query
func RecordDatabaseQuery(operation, table string, duration time.Duration) {
	if Database == nil {
		return
	}
	Database.QueriesTotal.WithLabelValues(operation, table).Inc()
	Database.QueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// UpdateDatabaseConnections updates database connection metrics
func UpdateDatabaseConnections(open, idle int) {
	if Database == nil {
		return
	}
	Database.ConnectionsOpen.Set(float64(open))
	Database.ConnectionsIdle.Set(float64(idle))
}