// Package config loads settings for both binaries. Values come from, in
// increasing precedence: defaults, an optional YAML file named by
// FLIGHTFINDER_CONFIG, a .env file, and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    Server    `yaml:"server"`
	Upstream  Upstream  `yaml:"upstream"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Quota     Quota     `yaml:"quota"`
	Redis     Redis     `yaml:"redis"`
	Client    Client    `yaml:"client"`
	Log       Log       `yaml:"log"`
}

type Server struct {
	Port string `yaml:"port"`
}

type Upstream struct {
	BaseURL  string        `yaml:"base_url"`
	Token    string        `yaml:"token"`
	Currency string        `yaml:"currency"`
	Timeout  time.Duration `yaml:"timeout"`
}

type RateLimit struct {
	RequestsPerSecond float64 `yaml:"rps"`
	Burst             int     `yaml:"burst"`
}

type Quota struct {
	Enabled   bool  `yaml:"enabled"`
	PerMinute int64 `yaml:"per_minute"`
}

type Redis struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Client struct {
	ProxyURL  string `yaml:"proxy_url"`
	PlacesURL string `yaml:"places_url"`
	Locale    string `yaml:"locale"`
	// Indicator is "last-leg" or "all-legs".
	Indicator     string        `yaml:"indicator"`
	LegTimeout    time.Duration `yaml:"leg_timeout"`
	PlacesTimeout time.Duration `yaml:"places_timeout"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "3000"},
		Upstream: Upstream{
			BaseURL:  "https://api.travelpayouts.com",
			Currency: "usd",
		},
		RateLimit: RateLimit{RequestsPerSecond: 5, Burst: 10},
		Quota:     Quota{Enabled: false, PerMinute: 60},
		Redis:     Redis{Host: "localhost", Port: "6379"},
		Client: Client{
			ProxyURL:      "http://localhost:3000",
			PlacesURL:     "https://autocomplete.travelpayouts.com/places2",
			Locale:        "en",
			Indicator:     "last-leg",
			PlacesTimeout: 10 * time.Second,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("FLIGHTFINDER_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)

	c.Upstream.BaseURL = getEnv("TRAVELPAYOUTS_BASE_URL", c.Upstream.BaseURL)
	c.Upstream.Token = getEnv("TRAVELPAYOUTS_TOKEN", c.Upstream.Token)
	c.Upstream.Currency = getEnv("TRAVELPAYOUTS_CURRENCY", c.Upstream.Currency)
	c.Upstream.Timeout = getEnvDuration("UPSTREAM_TIMEOUT", c.Upstream.Timeout)

	c.RateLimit.RequestsPerSecond = getEnvFloat("RATE_LIMIT_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = getEnvInt("RATE_LIMIT_BURST", c.RateLimit.Burst)

	c.Quota.Enabled = getEnvBool("QUOTA_ENABLED", c.Quota.Enabled)
	c.Quota.PerMinute = int64(getEnvInt("QUOTA_PER_MINUTE", int(c.Quota.PerMinute)))

	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	c.Client.ProxyURL = getEnv("FLIGHTFINDER_PROXY_URL", c.Client.ProxyURL)
	c.Client.PlacesURL = getEnv("FLIGHTFINDER_PLACES_URL", c.Client.PlacesURL)
	c.Client.Locale = getEnv("FLIGHTFINDER_LOCALE", c.Client.Locale)
	c.Client.Indicator = getEnv("FLIGHTFINDER_INDICATOR", c.Client.Indicator)
	c.Client.LegTimeout = getEnvDuration("FLIGHTFINDER_LEG_TIMEOUT", c.Client.LegTimeout)
	c.Client.PlacesTimeout = getEnvDuration("FLIGHTFINDER_PLACES_TIMEOUT", c.Client.PlacesTimeout)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// ValidateServer checks what the proxy needs before it can start.
func (c Config) ValidateServer() error {
	if c.Upstream.Token == "" {
		return errors.New("TRAVELPAYOUTS_TOKEN is required")
	}
	if c.Quota.Enabled && c.Quota.PerMinute <= 0 {
		return errors.New("QUOTA_PER_MINUTE must be positive when the quota is enabled")
	}
	return nil
}

// SetupLogging installs the default slog logger.
func SetupLogging(cfg Log) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
