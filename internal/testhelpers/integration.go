//go:build integration
// +build integration

// Package testhelpers wires real collaborators for tests run with -tags integration.
package testhelpers

import (
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/weather-outfit-service/internal/cache"
	"github.com/kjstillabower/weather-outfit-service/internal/client"
	"github.com/kjstillabower/weather-outfit-service/internal/service"
	"github.com/kjstillabower/weather-outfit-service/internal/session"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey         string
	APIURL         string
	SessionBackend string // "in_memory", "memcached" or "redis"
	MemcachedAddr  string
	RedisAddr      string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips test if WEATHER_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("WEATHER_API_KEY not set, skipping integration test")
	}
	return IntegrationTestConfig{
		APIKey:         apiKey,
		APIURL:         envOr("WEATHER_API_URL", client.DefaultBaseURL),
		SessionBackend: envOr("INTEGRATION_SESSION_BACKEND", "in_memory"),
		MemcachedAddr:  envOr("MEMCACHED_ADDRS", "localhost:11211"),
		RedisAddr:      envOr("REDIS_ADDR", "localhost:6379"),
	}
}

// SetupIntegrationClient creates a provider client for integration tests.
func SetupIntegrationClient(t *testing.T, cfg IntegrationTestConfig) *client.WeatherAPIClient {
	t.Helper()
	c, err := client.NewWeatherAPIClient(cfg.APIKey, cfg.APIURL, client.WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("NewWeatherAPIClient() error = %v", err)
	}
	return c
}

// SetupIntegrationService creates a service over the configured session backend. Unreachable
// memcached or redis falls back to the in-memory store. The returned cleanup closes the store.
func SetupIntegrationService(t *testing.T, cfg IntegrationTestConfig) (*service.WeatherService, func()) {
	t.Helper()
	var store session.Store = cache.NewInMemoryStore()
	cleanup := func() {}

	switch cfg.SessionBackend {
	case "memcached":
		mc, err := cache.NewMemcachedStore(cfg.MemcachedAddr, 500*time.Millisecond, 2)
		if err == nil && mc.Ping(t.Context()) == nil {
			store, cleanup = mc, func() { _ = mc.Close() }
			t.Logf("using memcached sessions at %s", cfg.MemcachedAddr)
		} else {
			t.Logf("memcached not available, using in-memory sessions")
		}
	case "redis":
		rs := cache.NewRedisStore(cfg.RedisAddr, "", 0, 500*time.Millisecond)
		if err := rs.Ping(t.Context()); err == nil {
			store, cleanup = rs, func() { _ = rs.Close() }
			t.Logf("using redis sessions at %s", cfg.RedisAddr)
		} else {
			_ = rs.Close()
			t.Logf("redis not available (%v), using in-memory sessions", err)
		}
	}

	svc := service.NewWeatherService(SetupIntegrationClient(t, cfg), session.NewManager(store, 5*time.Minute), service.Options{})
	return svc, cleanup
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
