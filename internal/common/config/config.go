package config

import (
	"os"
	"time"
)

type Config struct {
	HTTPPort        string
	DatabaseURL     string
	LogDir          string
	LogLevel        string
	RequestTimeout  time.Duration
	SessionLifetime time.Duration
}

// Load reads the configuration from the environment. DATABASE_URL is
// optional: when it is absent the service runs on the in-memory store.
func Load() Config {
	return Config{
		HTTPPort:        getEnv("ROSTER_HTTP_PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LogDir:          getEnv("LOG_DIR", ""),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		RequestTimeout:  getDurationEnv("ROSTER_REQUEST_TIMEOUT", 5*time.Second),
		SessionLifetime: getDurationEnv("ROSTER_SESSION_LIFETIME", 24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
