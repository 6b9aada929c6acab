package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request, labelled by route template.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Provider calls by lookup kind (coordinates|city) and status. Watch for: error vs success ratio.
	WeatherAPICallsTotal *prometheus.CounterVec

	// Provider latency. Watch for: p95 > 2s (upstream degradation).
	WeatherAPIDuration *prometheus.HistogramVec

	// Lookups by kind and outcome (success|failed).
	WeatherLookupsTotal *prometheus.CounterVec

	// Lookup failures by error category; see client.CategorizeError.
	WeatherLookupErrorsTotal *prometheus.CounterVec

	// Terminal states of the location flow (resolved, denied, unavailable, timed_out, unsupported, unknown).
	LocationOutcomesTotal *prometheus.CounterVec

	// Recommendations served per temperature band (30C, 24C, 15C, 9C, 0C).
	RecommendationsTotal *prometheus.CounterVec

	// Session store failures by operation (get|set|delete). Watch for: backend outages.
	SessionStoreErrorsTotal *prometheus.CounterVec

	// Sessions created by page loads.
	SessionsCreatedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of weather provider API calls",
		},
		[]string{"kind", "status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "Weather provider API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"kind", "status"},
	)
	WeatherLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherLookupsTotal",
			Help: "Weather lookups by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	WeatherLookupErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherLookupErrorsTotal",
			Help: "Failed weather lookups by error category",
		},
		[]string{"category"},
	)
	LocationOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locationOutcomesTotal",
			Help: "Location acquisition terminal states",
		},
		[]string{"state"},
	)
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendationsTotal",
			Help: "Clothing recommendations served per temperature band",
		},
		[]string{"band"},
	)
	SessionStoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessionStoreErrorsTotal",
			Help: "Session store errors by operation",
		},
		[]string{"operation"},
	)
	SessionsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessionsCreatedTotal",
			Help: "Total number of sessions created by page loads",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		WeatherAPICallsTotal, WeatherAPIDuration,
		WeatherLookupsTotal, WeatherLookupErrorsTotal,
		LocationOutcomesTotal, RecommendationsTotal,
		SessionStoreErrorsTotal, SessionsCreatedTotal,
	)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
