package metrics

import (
	"net/http"

	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus metrics on a private
// registry so tests can construct their own instance.
type MetricsManager struct {
	Registry              *prometheus.Registry
	MatchRequestsTotal    prometheus.Counter
	BroadenedResultsTotal prometheus.Counter
	PartialResultsTotal   prometheus.Counter
	StoreErrorsTotal      *prometheus.CounterVec
	SearchLatency         *prometheus.HistogramVec
	AuditPairsTotal       prometheus.Counter
	AuditDeficientTotal   prometheus.Counter
}

// NewMetricsManager initializes and registers the service metrics.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	matchRequestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "match_requests_total",
		Help:      "Total number of match requests served.",
	})
	broadenedResultsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "broadened_results_total",
		Help:      "Total number of results that required scope widening.",
	})
	partialResultsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "partial_results_total",
		Help:      "Total number of results degraded by inconsistent containment data.",
	})
	storeErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "store_errors_total",
		Help:      "Total number of listing/location store failures by operation.",
	}, []string{"operation"})
	searchLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "search_latency_seconds",
		Help:      "Latency of search requests by outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
	auditPairsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "audit_pairs_total",
		Help:      "Total number of location/combo pairs audited.",
	})
	auditDeficientTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "audit_deficient_pairs_total",
		Help:      "Total number of deficient pairs found by coverage audits.",
	})

	registry.MustRegister(
		matchRequestsTotal,
		broadenedResultsTotal,
		partialResultsTotal,
		storeErrorsTotal,
		searchLatency,
		auditPairsTotal,
		auditDeficientTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:              registry,
		MatchRequestsTotal:    matchRequestsTotal,
		BroadenedResultsTotal: broadenedResultsTotal,
		PartialResultsTotal:   partialResultsTotal,
		StoreErrorsTotal:      storeErrorsTotal,
		SearchLatency:         searchLatency,
		AuditPairsTotal:       auditPairsTotal,
		AuditDeficientTotal:   auditDeficientTotal,
	}
}

// StartMetricsServer exposes /metrics on the given port. Returns immediately;
// the server runs until the process exits.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) {
	if port == "" {
		appLogger.Info("Prometheus metrics port not configured, metrics server will not start")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		appLogger.Info("Prometheus metrics server starting", zap.String("port", port))
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()
}
