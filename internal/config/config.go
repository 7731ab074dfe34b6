// Package config reads the process environment into typed configuration
// structs, one GetXConfig function per concern, failing loudly when a
// required variable is missing or malformed.
package config

import (
	"fmt"
	"os"
	"strconv"
)

const DefaultPort = 3355

func env(key string) string {
	return os.Getenv(key)
}

func convertStringToInt(s string, key string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("error initializing config with key: %s, err: %v", key, err)
	}
	return v, nil
}

// ServerConfig controls the task server's listening port.
type ServerConfig struct {
	Port int
}

// GetServerConfig reads KICKOFF_PORT, defaulting to DefaultPort when unset.
func GetServerConfig() (*ServerConfig, error) {
	port, err := convertStringToInt(env("KICKOFF_PORT"), "KICKOFF_PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	return &ServerConfig{Port: port}, nil
}

// InternBackend selects which pooled string/blob intern table backs the
// server's string interning layer.
type InternBackend string

const (
	InternBackendMemory    InternBackend = "memory"
	InternBackendFreeCache InternBackend = "freecache"
	InternBackendRedis     InternBackend = "redis"
)

// FreeCacheConfig tunes the optional freecache-backed intern table.
type FreeCacheConfig struct {
	SizeBytes int
}

// RedisConfig tunes the optional redis-backed intern table.
type RedisConfig struct {
	URL      string
	Password string
}

// InternConfig selects and tunes the intern table backend. INTERN_BACKEND
// defaults to "memory" (a plain in-process sync.Map, no external service).
type InternConfig struct {
	Backend   InternBackend
	FreeCache FreeCacheConfig
	Redis     RedisConfig
}

// GetInternConfig reads INTERN_BACKEND plus the settings of whichever
// backend was selected.
func GetInternConfig() (*InternConfig, error) {
	backend := InternBackend(env("INTERN_BACKEND"))
	if backend == "" {
		backend = InternBackendMemory
	}

	cfg := &InternConfig{Backend: backend}

	switch backend {
	case InternBackendMemory:
		// no further settings
	case InternBackendFreeCache:
		size, err := convertStringToInt(env("FREECACHE_SIZE_BYTES"), "FREECACHE_SIZE_BYTES", 32*1024*1024)
		if err != nil {
			return nil, err
		}
		cfg.FreeCache = FreeCacheConfig{SizeBytes: size}
	case InternBackendRedis:
		url := env("REDIS_ENDPOINT")
		if url == "" {
			return nil, fmt.Errorf("KEY: REDIS_ENDPOINT is empty")
		}
		cfg.Redis = RedisConfig{URL: url, Password: env("REDIS_CLIENT_PASSWORD")}
	default:
		return nil, fmt.Errorf("KEY: INTERN_BACKEND has unknown value %q", backend)
	}
	return cfg, nil
}

// EventsConfig points the task-lifecycle event publisher at a NATS
// JetStream deployment. Absent unless KICKOFF_NATS_URL is set.
type EventsConfig struct {
	URL     string
	Subject string
}

// GetEventsConfig returns (nil, nil) when event publishing is disabled.
func GetEventsConfig() (*EventsConfig, error) {
	url := env("KICKOFF_NATS_URL")
	if url == "" {
		return nil, nil
	}
	subject := env("KICKOFF_NATS_SUBJECT")
	if subject == "" {
		subject = "kickoff.tasks"
	}
	return &EventsConfig{URL: url, Subject: subject}, nil
}

// TracingConfig points request tracing at an OTLP/HTTP collector. Absent
// unless KICKOFF_TRACE_URL is set.
type TracingConfig struct {
	URL string
}

// GetTracingConfig returns (nil, nil) when tracing is disabled.
func GetTracingConfig() (*TracingConfig, error) {
	url := env("KICKOFF_TRACE_URL")
	if url == "" {
		return nil, nil
	}
	return &TracingConfig{URL: url}, nil
}
