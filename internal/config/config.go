// Package config loads process configuration from the environment.
// A local .env file is honored when present; real environment variables win.
package config

import (
    "fmt"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
    "os"
)

type Config struct {
    // HTTP server
    Addr string

    // Postgres DSN; empty selects the in-memory store.
    DatabaseURL string

    // Logging
    LogLevel  string
    LogFormat string

    // DevSeed creates a demo budget on startup (memory backend).
    DevSeed bool

    // Server timeouts
    ReadTimeout  time.Duration
    WriteTimeout time.Duration
    IdleTimeout  time.Duration
}

// Load reads configuration from the environment with sensible defaults.
func Load() *Config {
    _ = godotenv.Load()
    return &Config{
        Addr:         getEnv("ADDR", ":8080"),
        DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
        LogLevel:     getEnv("LOG_LEVEL", "INFO"),
        LogFormat:    getEnv("LOG_FORMAT", "json"),
        DevSeed:      getEnvBool("DEV_SEED", false),
        ReadTimeout:  getEnvDuration("READ_TIMEOUT", 5*time.Second),
        WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 10*time.Second),
        IdleTimeout:  getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
    }
}

// Validate reports configuration errors that should stop startup.
func (c *Config) Validate() error {
    addr := c.Addr
    if i := strings.LastIndex(addr, ":"); i >= 0 {
        port := addr[i+1:]
        if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
            return fmt.Errorf("invalid listen address %q", c.Addr)
        }
    } else {
        return fmt.Errorf("invalid listen address %q", c.Addr)
    }
    switch strings.ToLower(c.LogFormat) {
    case "json", "text":
    default:
        return fmt.Errorf("invalid log format %q: must be json or text", c.LogFormat)
    }
    return nil
}

func getEnv(key, fallback string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return fallback
}

func getEnvBool(key string, fallback bool) bool {
    v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
    if v == "" {
        return fallback
    }
    return v == "1" || v == "true" || v == "yes"
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
    if v := os.Getenv(key); v != "" {
        if d, err := time.ParseDuration(v); err == nil {
            return d
        }
    }
    return fallback
}
