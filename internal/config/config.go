/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	MetricsBind string

	DBBackend DatabaseBackend
	DBDSN     string

	JWTSigningKey string
	JWTTTL        time.Duration

	// DefaultTimezone is applied to store records created without a zone.
	// It must resolve; evaluation itself never falls back to it.
	DefaultTimezone string

	ReconcileInterval  time.Duration
	ReconcileOpTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("VITRINA_ENV", "development"),
		HTTPBind:    getEnv("VITRINA_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("VITRINA_HTTP_PORT", 8080),
		MetricsBind: getEnv("VITRINA_METRICS_BIND", "127.0.0.1:9000"),

		DBBackend: DatabaseBackend(getEnv("VITRINA_DB_BACKEND", string(DatabasePostgres))),
		DBDSN:     getEnv("VITRINA_DB_DSN", ""),

		JWTSigningKey: getEnv("VITRINA_JWT_SIGNING_KEY", ""),
		JWTTTL:        time.Duration(getEnvInt("VITRINA_JWT_TTL_HOURS", 24)) * time.Hour,

		DefaultTimezone: getEnv("VITRINA_DEFAULT_TIMEZONE", "America/Guayaquil"),

		ReconcileInterval:  time.Duration(getEnvInt("VITRINA_RECONCILE_INTERVAL_MINUTES", 15)) * time.Minute,
		ReconcileOpTimeout: time.Duration(getEnvInt("VITRINA_RECONCILE_OP_TIMEOUT_SECONDS", 5)) * time.Second,

		RedisAddr:     getEnv("VITRINA_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("VITRINA_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("VITRINA_REDIS_DB", 0),

		TracingEnabled:    getEnvBool("VITRINA_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("VITRINA_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("VITRINA_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("VITRINA_DB_DSN must be provided")
	}
	if cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("VITRINA_JWT_SIGNING_KEY must be provided")
	}
	if cfg.ReconcileInterval <= 0 {
		return nil, fmt.Errorf("VITRINA_RECONCILE_INTERVAL_MINUTES must be positive")
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("VITRINA_DEFAULT_TIMEZONE %q is not a valid IANA zone", cfg.DefaultTimezone)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
