package managers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"starter-server/internal/schemas"
)

// MetricsManager owns a private Prometheus registry with the HTTP and token collectors.
type MetricsManager struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokensIssued    *prometheus.CounterVec
	tokensConsumed  *prometheus.CounterVec
}

func NewMetricsManager() *MetricsManager {
	registry := prometheus.NewRegistry()
	mm := &MetricsManager{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of handled HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of handled HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_tokens_issued_total",
			Help: "Number of issued verification tokens.",
		}, []string{"type"}),
		tokensConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_tokens_consumed_total",
			Help: "Number of consumption attempts of verification tokens.",
		}, []string{"type", "result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		mm.requests,
		mm.requestDuration,
		mm.tokensIssued,
		mm.tokensConsumed,
	)

	return mm
}

// ObserveRequest records a finished HTTP request.
func (mm *MetricsManager) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	mm.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	mm.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// TokenIssued counts a newly stored verification token.
func (mm *MetricsManager) TokenIssued(tokenType schemas.VerificationTokenType) {
	mm.tokensIssued.WithLabelValues(tokenType.String()).Inc()
}

// TokenConsumed counts a consumption attempt, consumed is false when the conditional update matched nothing.
func (mm *MetricsManager) TokenConsumed(tokenType schemas.VerificationTokenType, consumed bool) {
	result := "consumed"
	if !consumed {
		result = "rejected"
	}
	mm.tokensConsumed.WithLabelValues(tokenType.String(), result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (mm *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(mm.registry, promhttp.HandlerOpts{Registry: mm.registry})
}
