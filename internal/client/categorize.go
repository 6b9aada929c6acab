package client

import (
	"context"
	"errors"
	"strings"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

const (
	ErrorCategoryTimeout      ErrorCategory = "timeout"
	ErrorCategoryNetwork      ErrorCategory = "network"
	ErrorCategoryNotFound     ErrorCategory = "not_found"
	ErrorCategoryUnauthorized ErrorCategory = "unauthorized"
	ErrorCategoryUpstream4xx  ErrorCategory = "upstream_4xx"
	ErrorCategoryUpstream5xx  ErrorCategory = "upstream_5xx"
	ErrorCategoryParsing      ErrorCategory = "parsing"
	ErrorCategoryUnknown      ErrorCategory = "unknown"
)

// CategorizeError maps a lookup error to an ErrorCategory. Every lookup error is an
// ErrWeatherLookupFailed; the category only distinguishes causes for operators.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "HTTP 400"), strings.Contains(errStr, "HTTP 404"):
		// weatherapi answers 400 with code 1006 for unknown locations
		return ErrorCategoryNotFound
	case strings.Contains(errStr, "HTTP 401"), strings.Contains(errStr, "HTTP 403"):
		return ErrorCategoryUnauthorized
	case strings.Contains(errStr, "HTTP 4"):
		return ErrorCategoryUpstream4xx
	case strings.Contains(errStr, "HTTP 5"):
		return ErrorCategoryUpstream5xx
	case strings.Contains(errStr, "timeout"):
		return ErrorCategoryTimeout
	case strings.Contains(errStr, "http request failed"), strings.Contains(errStr, "connection"):
		return ErrorCategoryNetwork
	case strings.Contains(errStr, "parse"), strings.Contains(errStr, "unmarshal"):
		return ErrorCategoryParsing
	}
	return ErrorCategoryUnknown
}
