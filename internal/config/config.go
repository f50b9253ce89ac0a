package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Response store configuration
	Store StoreConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// WebSocket configuration
	WebSocket WebSocketConfig

	// CORS configuration
	CORS CORSConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Store backends
const (
	StoreBackendCSV    = "csv"
	StoreBackendSheets = "sheets"
)

// StoreConfig holds response store configuration. The CSV backend is the
// local default; the sheets backend writes to the shared Google spreadsheet.
type StoreConfig struct {
	Backend         string
	CSVPath         string
	SpreadsheetID   string
	Worksheet       string
	CredentialsFile string
	StaleAfter      time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	SubmitRPS         float64 // Stricter limit for the submission endpoint
	SubmitBurst       int
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Backend:         getEnvOrDefault("STORE_BACKEND", StoreBackendCSV),
			CSVPath:         getEnvOrDefault("STORE_CSV_PATH", "survey_results.csv"),
			SpreadsheetID:   os.Getenv("STORE_SPREADSHEET_ID"),
			Worksheet:       getEnvOrDefault("STORE_WORKSHEET", "Sheet1"),
			CredentialsFile: getEnvOrDefault("STORE_CREDENTIALS_FILE", "service_account.json"),
			StaleAfter:      getDurationOrDefault("STORE_STALE_AFTER", 20*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
			SubmitRPS:         getFloatOrDefault("RATE_LIMIT_SUBMIT_RPS", 1),
			SubmitBurst:       getIntOrDefault("RATE_LIMIT_SUBMIT_BURST", 5),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  getStringSliceOrDefault("WS_ALLOWED_ORIGINS", []string{}),
			ReadBufferSize:  getIntOrDefault("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getIntOrDefault("WS_WRITE_BUFFER_SIZE", 1024),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxAge:         getIntOrDefault("CORS_MAX_AGE", 300),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "wellbeing-backend"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	switch c.Store.Backend {
	case StoreBackendCSV:
		if c.Store.CSVPath == "" {
			errs = append(errs, "STORE_CSV_PATH is required for the csv backend")
		}
	case StoreBackendSheets:
		if c.Store.SpreadsheetID == "" {
			errs = append(errs, "STORE_SPREADSHEET_ID is required for the sheets backend")
		}
		if c.Store.CredentialsFile == "" {
			errs = append(errs, "STORE_CREDENTIALS_FILE is required for the sheets backend")
		}
	default:
		errs = append(errs, "STORE_BACKEND must be 'csv' or 'sheets'")
	}

	if c.App.Environment == "production" {
		if len(c.WebSocket.AllowedOrigins) == 0 {
			errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
		}
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				errs = append(errs, "CORS_ALLOWED_ORIGINS must not contain '*' in production")
			}
		}
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, Store: %s, RateLimit: %v, Environment: %s}",
		c.Server.Port,
		c.Store.Backend,
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}
