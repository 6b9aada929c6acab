package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kjstillabower/weather-outfit-service/internal/observability"
)

func observabilityContext(corrID string) context.Context {
	return observability.WithCorrelationID(context.Background(), corrID)
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("%w: request timeout: %w", ErrWeatherLookupFailed, context.DeadlineExceeded), ErrorCategoryTimeout},
		{"unknown city", fmt.Errorf("%w: HTTP 400", ErrWeatherLookupFailed), ErrorCategoryNotFound},
		{"not found", fmt.Errorf("%w: HTTP 404", ErrWeatherLookupFailed), ErrorCategoryNotFound},
		{"bad key", fmt.Errorf("%w: HTTP 401", ErrWeatherLookupFailed), ErrorCategoryUnauthorized},
		{"quota", fmt.Errorf("%w: HTTP 403", ErrWeatherLookupFailed), ErrorCategoryUnauthorized},
		{"throttled", fmt.Errorf("%w: HTTP 429", ErrWeatherLookupFailed), ErrorCategoryUpstream4xx},
		{"server", fmt.Errorf("%w: HTTP 502", ErrWeatherLookupFailed), ErrorCategoryUpstream5xx},
		{"parse", fmt.Errorf("%w: parse response: eof", ErrWeatherLookupFailed), ErrorCategoryParsing},
		{"other", errors.New("something"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.want {
				t.Errorf("CategorizeError() = %q, want %q", got, tt.want)
			}
		})
	}
}
