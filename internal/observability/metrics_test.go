package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// TestMetrics_Usable verifies label dimensions match usage in client, http, service and cache.
func TestMetrics_Usable(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("GET", "/sessions/{id}", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/sessions/{id}").Observe(0.01)
	WeatherAPICallsTotal.WithLabelValues("city", "success").Inc()
	WeatherAPIDuration.WithLabelValues("coordinates", "error").Observe(0.1)
	WeatherLookupsTotal.WithLabelValues("city", "failed").Inc()
	WeatherLookupErrorsTotal.WithLabelValues("not_found").Inc()
	LocationOutcomesTotal.WithLabelValues("denied").Inc()
	RecommendationsTotal.WithLabelValues("30C").Inc()
	SessionStoreErrorsTotal.WithLabelValues("get").Inc()
	SessionsCreatedTotal.Inc()
}

func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("GET", "/health", "2xx").Inc()

	w := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Errorf("MetricsHandler status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "httpRequestsTotal") {
		t.Error("MetricsHandler response should contain metric output")
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" {
		t.Error("empty context should have no correlation ID")
	}
	if LoggerFromContext(ctx) == nil {
		t.Error("LoggerFromContext should never return nil")
	}

	logger := zap.NewExample()
	ctx = WithLogger(WithCorrelationID(ctx, "abc"), logger)
	if got := CorrelationIDFromContext(ctx); got != "abc" {
		t.Errorf("CorrelationIDFromContext() = %q, want abc", got)
	}
	if LoggerFromContext(ctx) != logger {
		t.Error("LoggerFromContext() did not return stored logger")
	}
}
