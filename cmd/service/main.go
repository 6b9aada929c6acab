package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-outfit-service/internal/cache"
	"github.com/kjstillabower/weather-outfit-service/internal/client"
	"github.com/kjstillabower/weather-outfit-service/internal/config"
	httphandler "github.com/kjstillabower/weather-outfit-service/internal/http"
	"github.com/kjstillabower/weather-outfit-service/internal/lifecycle"
	"github.com/kjstillabower/weather-outfit-service/internal/location"
	"github.com/kjstillabower/weather-outfit-service/internal/observability"
	"github.com/kjstillabower/weather-outfit-service/internal/service"
	"github.com/kjstillabower/weather-outfit-service/internal/session"
	"github.com/kjstillabower/weather-outfit-service/web"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	weatherClient, err := client.NewWeatherAPIClient(
		cfg.WeatherAPIKey,
		cfg.WeatherAPIURL,
		client.WithLang(cfg.WeatherAPILang),
		client.WithTimeout(cfg.WeatherAPITimeout),
	)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	var store session.Store
	var storeCloser io.Closer
	healthConfig := &httphandler.HealthConfig{}
	switch cfg.SessionBackend {
	case config.BackendMemcached:
		mc, err := cache.NewMemcachedStore(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached session store", zap.Error(err))
		}
		store, storeCloser, healthConfig.StorePing = mc, mc, mc.Ping
		logger.Info("session backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	case config.BackendRedis:
		rs := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTimeout)
		store, storeCloser, healthConfig.StorePing = rs, rs, rs.Ping
		logger.Info("session backend: redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	default:
		mem := cache.NewInMemoryStore()
		store = mem
		go func() {
			if err := cache.RunJanitor(bgCtx, mem, cfg.SweepInterval, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("session janitor stopped", zap.Error(err))
			}
		}()
		logger.Info("session backend: in_memory", zap.Duration("sweep_interval", cfg.SweepInterval))
	}

	locationOpts := location.PositionOptions{
		EnableHighAccuracy: cfg.LocationHighAccuracy,
		Timeout:            cfg.LocationTimeout,
	}
	weatherService := service.NewWeatherService(weatherClient, session.NewManager(store, cfg.SessionTTL), service.Options{
		ImagePrefix:     cfg.AssetsURLPrefix,
		LocationOptions: &locationOpts,
		MaxQueryLength:  cfg.SearchMaxLength,
	})

	pages, err := httphandler.NewPages(web.Templates())
	if err != nil {
		logger.Fatal("templates", zap.Error(err))
	}
	handler := httphandler.NewHandler(weatherService, pages, healthConfig, logger)

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.Handle("/metrics", observability.MetricsHandler())
	router.Handle(httphandler.ScriptURL, http.StripPrefix("/static/", http.FileServer(http.FS(web.Scripts())))).Methods("GET")
	router.PathPrefix(cfg.AssetsURLPrefix + "/").Handler(
		http.StripPrefix(cfg.AssetsURLPrefix+"/", http.FileServer(http.Dir(cfg.AssetsDir))),
	).Methods("GET")
	handler.Routes(router, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", httphandler.InFlightCount()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, 50*time.Millisecond); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	bgCancel()
	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if storeCloser != nil {
		if err := storeCloser.Close(); err != nil {
			logger.Error("session store close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
