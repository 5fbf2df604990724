// Package config loads the server configuration from environment variables.
// A .env file in the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every configuration value of the server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Feed      FeedConfig
	WS        WSConfig
	Log       LogConfig
	Invites   InviteConfig
	Sentry    SentryConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string // e.g. ./data/rso.db
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // days
}

// RedisConfig is optional. An empty URL means single-process mode:
// in-memory rate limiting and no cross-process notification relay.
type RedisConfig struct {
	URL string
}

// Enabled reports whether a Redis URL was configured.
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

// RateLimitConfig holds the keyed limiter quotas.
type RateLimitConfig struct {
	LoginAttempts int
	LoginWindow   time.Duration
	WriteRequests int
	WriteWindow   time.Duration
}

// FeedConfig holds pagination defaults.
type FeedConfig struct {
	DefaultLimit int
	MaxLimit     int
	QueryTimeout time.Duration
}

// WSConfig holds notification channel liveness settings.
type WSConfig struct {
	PingInterval time.Duration
	PongWait     time.Duration
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// InviteConfig controls invite-only registration.
type InviteConfig struct {
	Required bool
}

// SentryConfig enables panic reporting when DSN is set.
type SentryConfig struct {
	DSN         string
	Environment string
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	// A missing .env is fine; production sets real variables.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	accessExpiry, err := strconv.Atoi(getEnv("JWT_ACCESS_EXPIRY_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRY_MINUTES: %w", err)
	}

	refreshExpiry, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRY_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRY_DAYS: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	loginAttempts, err := getInt("RATE_LIMIT_LOGIN", 5)
	if err != nil {
		return nil, err
	}
	loginWindow, err := getDuration("RATE_LIMIT_LOGIN_WINDOW", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	writeRequests, err := getInt("RATE_LIMIT_WRITE", 30)
	if err != nil {
		return nil, err
	}
	writeWindow, err := getDuration("RATE_LIMIT_WRITE_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}

	defaultLimit, err := getInt("FEED_DEFAULT_LIMIT", 20)
	if err != nil {
		return nil, err
	}
	maxLimit, err := getInt("FEED_MAX_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	if defaultLimit <= 0 || maxLimit <= 0 || defaultLimit > maxLimit {
		return nil, fmt.Errorf("invalid feed limits: default %d, max %d", defaultLimit, maxLimit)
	}
	queryTimeout, err := getDuration("FEED_QUERY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	pingInterval, err := getDuration("WS_PING_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	pongWait, err := getDuration("WS_PONG_WAIT", 90*time.Second)
	if err != nil {
		return nil, err
	}
	if pingInterval >= pongWait {
		return nil, fmt.Errorf("WS_PING_INTERVAL (%s) must be shorter than WS_PONG_WAIT (%s)", pingInterval, pongWait)
	}

	inviteRequired, err := strconv.ParseBool(getEnv("INVITE_REQUIRED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVITE_REQUIRED: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        port,
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/rso.db"),
		},
		JWT: JWTConfig{
			Secret:             jwtSecret,
			AccessTokenExpiry:  accessExpiry,
			RefreshTokenExpiry: refreshExpiry,
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		RateLimit: RateLimitConfig{
			LoginAttempts: loginAttempts,
			LoginWindow:   loginWindow,
			WriteRequests: writeRequests,
			WriteWindow:   writeWindow,
		},
		Feed: FeedConfig{
			DefaultLimit: defaultLimit,
			MaxLimit:     maxLimit,
			QueryTimeout: queryTimeout,
		},
		WS: WSConfig{
			PingInterval: pingInterval,
			PongWait:     pongWait,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Invites: InviteConfig{
			Required: inviteRequired,
		},
		Sentry: SentryConfig{
			DSN:         getEnv("SENTRY_DSN", ""),
			Environment: getEnv("SENTRY_ENVIRONMENT", "development"),
		},
	}

	return cfg, nil
}

// Addr returns the listen address, e.g. "0.0.0.0:9090".
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
