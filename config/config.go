/*
config.go - Runtime configuration

SOURCES (later wins):
  1. Defaults
  2. .env file in the working directory (optional, via godotenv)
  3. Process environment
  4. Command-line flags (applied in cmd/server)

KEYS:
  PORT                      HTTP port (3000)
  DATA_DIR                  JSON collection directory (data)
  STORE_BACKEND             json | sqlite (json)
  SQLITE_PATH               SQLite database path (data/travel.db)
  SEED_FILE                 Tours to load into an empty catalog
  QUOTE_LOG_LIMIT           Max tour results kept in memory (0 = unbounded)
  OPENWEATHERMAP_API_KEY    Weather API key
  WEATHER_BASE_URL          Weather API root
  WEATHER_TIMEOUT           Per-lookup timeout (10s)
  WEATHER_RATE_PER_MINUTE   Outbound lookups per minute (60, 0 = unlimited)
  CORS_ALLOWED_ORIGINS      Comma-separated origins
  SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT, SERVER_IDLE_TIMEOUT,
  SHUTDOWN_TIMEOUT
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Weather WeatherConfig
	CORS    CORSConfig

	QuoteLogLimit int
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig selects and locates the collection backend.
type StoreConfig struct {
	Backend    string
	DataDir    string
	SQLitePath string
	SeedFile   string
}

// WeatherConfig configures the weather collaborator.
type WeatherConfig struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: failed to read .env: %v", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment and defaults.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getIntEnv("PORT", 3000),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(getEnv("STORE_BACKEND", BackendJSON)),
			DataDir:    getEnv("DATA_DIR", "data"),
			SQLitePath: getEnv("SQLITE_PATH", "data/travel.db"),
			SeedFile:   getEnv("SEED_FILE", ""),
		},
		Weather: WeatherConfig{
			APIKey:        getEnv("OPENWEATHERMAP_API_KEY", ""),
			BaseURL:       getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org"),
			Timeout:       getDurationEnv("WEATHER_TIMEOUT", 10*time.Second),
			RatePerMinute: getIntEnv("WEATHER_RATE_PER_MINUTE", 60),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		QuoteLogLimit: getIntEnv("QUOTE_LOG_LIMIT", 0),
	}
}

// Validate checks the configuration. The backend name is matched
// case-insensitively, whether it came from the environment or a flag.
func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %q or %q)", c.Store.Backend, BackendJSON, BackendSQLite)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.QuoteLogLimit < 0 {
		return fmt.Errorf("QUOTE_LOG_LIMIT must not be negative")
	}

	if c.Weather.APIKey == "" {
		log.Println("Warning: OPENWEATHERMAP_API_KEY not set. Bookings will fail at the weather lookup.")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var parts []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return defaultValue
	}
	return parts
}
