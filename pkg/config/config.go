package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfiguration marks a fatal configuration problem (missing or invalid secrets, bad values).
// It is surfaced before any provider call is attempted.
var ErrConfiguration = errors.New("configuration error")

// fredKeyPattern matches the 32-character lowercase alphanumeric keys FRED issues.
var fredKeyPattern = regexp.MustCompile(`^[a-z0-9]{32}$`)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Redis (optional L2 result cache)
	Redis RedisConfig

	// External providers
	FRED  FREDConfig
	Yahoo YahooConfig

	// Pipeline
	Pipeline PipelineConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// FREDConfig holds the macro-data provider configuration
type FREDConfig struct {
	APIKey  string
	BaseURL string
}

// YahooConfig holds the equity/rates provider configuration
type YahooConfig struct {
	BaseURL string
}

// PipelineConfig controls fetch timeouts, caching and classification.
type PipelineConfig struct {
	HTTPTimeout     time.Duration // per HTTP attempt
	FetchTimeout    time.Duration // whole provider fan-out
	RequestTimeout  time.Duration // inbound API request
	CacheTTL        time.Duration
	StressThreshold float64 // Rate_Spread above this is "stressed"
	CatalogPath     string  // optional YAML series catalog
	WarmSchedule    string  // cron spec with seconds field
	WarmWindows     []string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		FRED: FREDConfig{
			APIKey:  strings.TrimSpace(getEnv("FRED_API_KEY", "")),
			BaseURL: getEnv("FRED_BASE_URL", "https://api.stlouisfed.org/fred"),
		},

		Yahoo: YahooConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		},

		Pipeline: PipelineConfig{
			HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", "15s"),
			FetchTimeout:    getEnvAsDuration("FETCH_TIMEOUT", "30s"),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", "45s"),
			CacheTTL:        getEnvAsDuration("CACHE_TTL", "1h"),
			StressThreshold: getEnvAsFloat("STRESS_THRESHOLD", 0.05),
			CatalogPath:     getEnv("CATALOG_PATH", ""),
			WarmSchedule:    getEnv("WARM_SCHEDULE", "0 0 * * * *"),
			WarmWindows:     getEnvAsList("WARM_WINDOWS", []string{"1y"}),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// The macro provider key is the only secret; without it nothing can be fetched.
	if c.FRED.APIKey == "" {
		return fmt.Errorf("%w: FRED_API_KEY is required", ErrConfiguration)
	}
	if !fredKeyPattern.MatchString(c.FRED.APIKey) {
		return fmt.Errorf("%w: FRED_API_KEY must be a 32-character lowercase alphanumeric key", ErrConfiguration)
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("%w: ENV must be one of: development, staging, production", ErrConfiguration)
	}

	if c.Pipeline.CacheTTL <= 0 {
		return fmt.Errorf("%w: CACHE_TTL must be positive", ErrConfiguration)
	}
	if c.Pipeline.FetchTimeout <= 0 {
		return fmt.Errorf("%w: FETCH_TIMEOUT must be positive", ErrConfiguration)
	}
	if c.Pipeline.StressThreshold < 0 {
		return fmt.Errorf("%w: STRESS_THRESHOLD must not be negative", ErrConfiguration)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma-separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
