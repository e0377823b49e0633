// Package config loads application configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr        string
	DatabaseURL string
	Env         string

	JWTSecret string
	JWTTTL    time.Duration

	// Per-IP token bucket for the public API.
	RateLimitRPS   float64
	RateLimitBurst int

	// OTLP/HTTP collector endpoint; tracing is disabled when empty.
	OTLPEndpoint string
}

func Load() Config {
	return Config{
		Addr:           getenv("ADDR", ":8080"),
		DatabaseURL:    must("DATABASE_URL"),
		Env:            getenv("APP_ENV", "dev"),
		JWTSecret:      getenv("JWT_SECRET", "local_dev_secret"),
		JWTTTL:         getduration("JWT_TTL", 8*time.Hour),
		RateLimitRPS:   getfloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getint("RATE_LIMIT_BURST", 4),
		OTLPEndpoint:   os.Getenv("OTLP_ENDPOINT"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
