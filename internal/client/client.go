package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kjstillabower/weather-outfit-service/internal/models"
	"github.com/kjstillabower/weather-outfit-service/internal/observability"
)

// WeatherClient fetches current conditions by coordinates or by a resolved city query.
type WeatherClient interface {
	FetchByCoordinates(ctx context.Context, lat, lon float64) (models.WeatherRecord, error)
	FetchByCity(ctx context.Context, cityQuery string) (models.WeatherRecord, error)
}

// HTTPFetcher is the transport seam; *http.Client satisfies it.
type HTTPFetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

var (
	// ErrWeatherLookupFailed covers every non-success outcome of a lookup.
	ErrWeatherLookupFailed = errors.New("weather lookup failed")
	ErrMissingAPIKey       = errors.New("weather API key is required")
)

const (
	DefaultBaseURL = "http://api.weatherapi.com/v1"
	DefaultLang    = "ko"
)

// WeatherAPIClient talks to the provider's current.json endpoint. One GET per call,
// no retry and no caching.
type WeatherAPIClient struct {
	apiKey  string
	baseURL string
	lang    string
	timeout time.Duration
	fetcher HTTPFetcher
}

// Option customises a WeatherAPIClient.
type Option func(*WeatherAPIClient)

// WithFetcher replaces the HTTP transport.
func WithFetcher(f HTTPFetcher) Option {
	return func(c *WeatherAPIClient) { c.fetcher = f }
}

// WithLang sets the lang parameter. Empty omits it.
func WithLang(lang string) Option {
	return func(c *WeatherAPIClient) { c.lang = lang }
}

// WithTimeout bounds each call. Zero keeps the transport default. It applies to
// *http.Client fetchers regardless of option order; other fetchers own their timeouts.
func WithTimeout(d time.Duration) Option {
	return func(c *WeatherAPIClient) { c.timeout = d }
}

func NewWeatherAPIClient(apiKey, baseURL string, opts ...Option) (*WeatherAPIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	c := &WeatherAPIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		lang:    DefaultLang,
		fetcher: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if hc, ok := c.fetcher.(*http.Client); ok && c.timeout > 0 {
		bounded := *hc
		bounded.Timeout = c.timeout
		c.fetcher = &bounded
	}
	return c, nil
}

// FetchByCoordinates looks up current conditions at lat,lon.
func (c *WeatherAPIClient) FetchByCoordinates(ctx context.Context, lat, lon float64) (models.WeatherRecord, error) {
	q := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
	return c.fetch(ctx, "coordinates", q)
}

// FetchByCity looks up current conditions for an already resolved city query.
func (c *WeatherAPIClient) FetchByCity(ctx context.Context, cityQuery string) (models.WeatherRecord, error) {
	return c.fetch(ctx, "city", cityQuery)
}

// stripRequestURL drops the request URL from transport errors. It carries the API key
// and the user's query, neither of which belongs in logs.
func stripRequestURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

func (c *WeatherAPIClient) fetch(ctx context.Context, kind, q string) (models.WeatherRecord, error) {
	start := time.Now()

	req, err := c.buildRequest(ctx, q)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues(kind, "error").Inc()
		return models.WeatherRecord{}, fmt.Errorf("%w: build request: %v", ErrWeatherLookupFailed, err)
	}
	if corrID := observability.CorrelationIDFromContext(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.fetcher.Do(req)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues(kind, "error").Inc()
		observability.WeatherAPIDuration.WithLabelValues(kind, "error").Observe(time.Since(start).Seconds())
		var ue *url.Error
		timedOut := errors.As(err, &ue) && ue.Timeout()
		err = stripRequestURL(err)
		if timedOut || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.WeatherRecord{}, fmt.Errorf("%w: request timeout: %w", ErrWeatherLookupFailed, err)
		}
		return models.WeatherRecord{}, fmt.Errorf("%w: http request failed: %w", ErrWeatherLookupFailed, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(kind, status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(kind, status).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.WeatherRecord{}, fmt.Errorf("%w: HTTP %d", ErrWeatherLookupFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.WeatherRecord{}, fmt.Errorf("%w: read response body: %w", ErrWeatherLookupFailed, err)
	}

	var rec models.WeatherRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return models.WeatherRecord{}, fmt.Errorf("%w: parse response: %w", ErrWeatherLookupFailed, err)
	}
	return rec, nil
}

// buildRequest produces GET {base}/current.json?key=..&q=..&aqi=no[&lang=..].
func (c *WeatherAPIClient) buildRequest(ctx context.Context, q string) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + "/current.json")
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", q)
	params.Set("aqi", "no")
	if c.lang != "" {
		params.Set("lang", c.lang)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func statusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	}
	return "error"
}
