package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Config struct {
	Addr        string
	PostgresURL string
	Redis       RedisConfig

	// ScheduleTickInterval controls how often the schedule worker looks for
	// due audits.
	ScheduleTickInterval time.Duration

	// GapCacheTTL bounds how long a cached gap analysis may be served before
	// it is recomputed from findings.
	GapCacheTTL time.Duration
}

// RedisConfig holds connection settings for the optional gap-analysis cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables, applying defaults that
// are safe for local development.
func FromEnv() Config {
	addr := os.Getenv("CERTUS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Config{
		Addr:        addr,
		PostgresURL: os.Getenv("CERTUS_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("CERTUS_REDIS_URL"),
			PoolSize:     envInt("CERTUS_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CERTUS_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("CERTUS_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CERTUS_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CERTUS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		ScheduleTickInterval: envDuration("CERTUS_SCHEDULE_TICK", time.Minute),
		GapCacheTTL:          envDuration("CERTUS_GAP_CACHE_TTL", 5*time.Minute),
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
