// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	minTokenSecretLength = 32
)

type Config struct {
	Port     string
	LogLevel slog.Level

	StoreBackend  string
	DatabasePath  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	UserDirectoryURL   string
	UserProfileURL     string
	UpstreamTimeout    time.Duration
	ServiceTokenSecret string

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	c := Config{
		Port:               envOr("PORT", "8080"),
		StoreBackend:       strings.ToLower(envOr("STORE_BACKEND", BackendSQLite)),
		DatabasePath:       envOr("DATABASE_PATH", "decks.db"),
		RedisAddr:          envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		UserDirectoryURL:   envOr("USER_DIRECTORY_URL", "http://localhost:8086"),
		UserProfileURL:     envOr("USER_PROFILE_URL", "http://localhost:8085"),
		UpstreamTimeout:    5 * time.Second,
		ServiceTokenSecret: os.Getenv("SERVICE_TOKEN_SECRET"),
		CORSOrigins:        parseList(os.Getenv("CORS_ORIGINS")),
		RateLimitRPS:       5,
		RateLimitBurst:     20,
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q", c.Port)
	}

	switch c.StoreBackend {
	case BackendSQLite, BackendRedis:
	default:
		return Config{}, fmt.Errorf("invalid STORE_BACKEND %q: must be %s or %s", c.StoreBackend, BackendSQLite, BackendRedis)
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 15 {
			return Config{}, fmt.Errorf("invalid REDIS_DB %q: must be between 0 and 15", v)
		}
		c.RedisDB = n
	}

	for key, raw := range map[string]string{
		"USER_DIRECTORY_URL": c.UserDirectoryURL,
		"USER_PROFILE_URL":   c.UserProfileURL,
	} {
		if err := validateBaseURL(raw); err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
	}

	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: %w", v, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: must be positive", v)
		}
		c.UpstreamTimeout = d
	}

	if c.ServiceTokenSecret != "" && len(c.ServiceTokenSecret) < minTokenSecretLength {
		return Config{}, fmt.Errorf("SERVICE_TOKEN_SECRET must be at least %d characters", minTokenSecretLength)
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q", v)
		}
		c.RateLimitRPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_BURST %q: must be a positive integer", v)
		}
		c.RateLimitBurst = n
	}

	return c, nil
}

// RateLimitEnabled reports whether mutating requests are throttled.
func (c Config) RateLimitEnabled() bool {
	return c.RateLimitRPS > 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var items []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimRight(strings.TrimSpace(p), "/"); v != "" {
			items = append(items, v)
		}
	}
	return items
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
