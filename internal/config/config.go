package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Session backends accepted in session.backend / SESSION_BACKEND.
const (
	BackendInMemory  = "in_memory"
	BackendMemcached = "memcached"
	BackendRedis     = "redis"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPILang    string
	WeatherAPITimeout time.Duration

	RequestTimeout time.Duration

	SessionBackend string
	SessionTTL     time.Duration
	SweepInterval  time.Duration

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTimeout  time.Duration

	SearchMaxLength int

	LocationTimeout      time.Duration
	LocationHighAccuracy bool

	AssetsDir       string
	AssetsURLPrefix string

	ShutdownTimeout         time.Duration
	ShutdownInFlightTimeout time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	WeatherAPI struct {
		URL     string `yaml:"url"`
		Lang    string `yaml:"lang"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Session struct {
		Backend       string `yaml:"backend"`
		TTL           string `yaml:"ttl"`
		SweepInterval string `yaml:"sweep_interval"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
		Redis struct {
			Addr    string `yaml:"addr"`
			DB      int    `yaml:"db"`
			Timeout string `yaml:"timeout"`
		} `yaml:"redis"`
	} `yaml:"session"`

	Search struct {
		MaxLength int `yaml:"max_length"`
	} `yaml:"search"`

	Location struct {
		Timeout      string `yaml:"timeout"`
		HighAccuracy *bool  `yaml:"high_accuracy"`
	} `yaml:"location"`

	Assets struct {
		Dir       string `yaml:"dir"`
		URLPrefix string `yaml:"url_prefix"`
	} `yaml:"assets"`

	Shutdown struct {
		Timeout         string `yaml:"timeout"`
		InFlightTimeout string `yaml:"in_flight_timeout"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
	RedisPassword string `yaml:"redis_password"`
}

// dotenvKeys are checked in order in .env when neither the environment nor secrets.yaml
// carries a key. The second name is what the browser build of this page used.
var dotenvKeys = []string{"WEATHER_API_KEY", "NEXT_PUBLIC_WEATHERAPI_KEY"}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and config/secrets.yaml.
// The API key comes from WEATHER_API_KEY, then the secrets file, then .env. Call from project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	sec, err := loadSecrets(filepath.Join(cwd, "config", "secrets.yaml"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	cfg.ServerPort = firstNonEmpty(os.Getenv("PORT"), fc.Server.Port, "8080")

	cfg.WeatherAPIKey = firstNonEmpty(os.Getenv("WEATHER_API_KEY"), sec.WeatherAPIKey)
	if cfg.WeatherAPIKey == "" {
		cfg.WeatherAPIKey, err = loadDotenvKey(filepath.Join(cwd, ".env"))
		if err != nil {
			return nil, err
		}
	}
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY required (set env, config/secrets.yaml weather_api_key, or .env)")
	}

	cfg.WeatherAPIURL = firstNonEmpty(fc.WeatherAPI.URL, "http://api.weatherapi.com/v1")
	cfg.WeatherAPILang = firstNonEmpty(fc.WeatherAPI.Lang, "ko")
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 0)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 10*time.Second)

	cfg.SessionBackend = strings.TrimSpace(strings.ToLower(os.Getenv("SESSION_BACKEND")))
	if cfg.SessionBackend == "" {
		cfg.SessionBackend = strings.TrimSpace(strings.ToLower(fc.Session.Backend))
	}
	if cfg.SessionBackend == "" {
		cfg.SessionBackend = BackendInMemory
	}
	cfg.SessionTTL = parseDuration(fc.Session.TTL, 30*time.Minute)
	cfg.SweepInterval = parseDuration(fc.Session.SweepInterval, time.Minute)

	cfg.MemcachedAddrs = firstNonEmpty(strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS")), strings.TrimSpace(fc.Session.Memcached.Addrs), "localhost:11211")
	cfg.MemcachedTimeout = parseDuration(fc.Session.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Session.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.RedisAddr = firstNonEmpty(strings.TrimSpace(os.Getenv("REDIS_ADDR")), strings.TrimSpace(fc.Session.Redis.Addr), "localhost:6379")
	cfg.RedisPassword = firstNonEmpty(os.Getenv("REDIS_PASSWORD"), sec.RedisPassword)
	cfg.RedisDB = fc.Session.Redis.DB
	cfg.RedisTimeout = parseDuration(fc.Session.Redis.Timeout, 500*time.Millisecond)

	cfg.SearchMaxLength = fc.Search.MaxLength
	if cfg.SearchMaxLength <= 0 {
		cfg.SearchMaxLength = 100
	}

	cfg.LocationTimeout = parseDuration(fc.Location.Timeout, 5*time.Second)
	cfg.LocationHighAccuracy = true
	if fc.Location.HighAccuracy != nil {
		cfg.LocationHighAccuracy = *fc.Location.HighAccuracy
	}

	cfg.AssetsDir = firstNonEmpty(fc.Assets.Dir, "web/static/illustrations")
	cfg.AssetsURLPrefix = "/" + strings.Trim(firstNonEmpty(fc.Assets.URLPrefix, "/assets/illustrations"), "/")

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadSecrets(path string) (secretsFile, error) {
	var sec secretsFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sec, nil
		}
		return sec, fmt.Errorf("read secrets file: %w", err)
	}
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return sec, fmt.Errorf("parse secrets file: %w", err)
	}
	return sec, nil
}

// loadDotenvKey reads the API key from a .env file without touching the process environment.
func loadDotenvKey(path string) (string, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read .env: %w", err)
	}
	for _, k := range dotenvKeys {
		if v := strings.TrimSpace(vals[k]); v != "" {
			return v, nil
		}
	}
	return "", nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (caller should handle fallback).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
// A zero weather API timeout leaves the transport default in place; a positive one must
// fit inside the request timeout, which is raised to make room if needed.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout < 0 {
		return fmt.Errorf("weather_api.timeout must not be negative")
	}
	if cfg.WeatherAPITimeout > 0 && cfg.RequestTimeout <= cfg.WeatherAPITimeout {
		cfg.RequestTimeout = cfg.WeatherAPITimeout + time.Second
	}
	switch cfg.SessionBackend {
	case BackendInMemory, BackendMemcached, BackendRedis:
	default:
		return fmt.Errorf("session.backend must be in_memory, memcached or redis, got %q", cfg.SessionBackend)
	}
	return nil
}
