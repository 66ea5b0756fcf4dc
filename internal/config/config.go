package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrCredentialUnavailable marks a secret file that could not be read
var ErrCredentialUnavailable = errors.New("credential unavailable")

// Config holds all application configuration
type Config struct {
	// Darksky API
	DarkskyAPIKey     string        `envconfig:"DARKSKY_API_KEY"`
	DarkskyAPIKeyFile string        `envconfig:"DARKSKY_API_KEY_FILE"`
	DarkskyBaseURL    string        `envconfig:"DARKSKY_BASE_URL" default:"https://api.darksky.net"`
	DarkskyTimeout    time.Duration `envconfig:"DARKSKY_TIMEOUT" default:"30s"`

	// Weather reference location (defaults: Berlin, Germany)
	WeatherLatitude  string `envconfig:"WEATHER_LATITUDE" default:"52.5200"`
	WeatherLongitude string `envconfig:"WEATHER_LONGITUDE" default:"13.4050"`

	// Weather fetch behavior
	WeatherCallLimit       int  `envconfig:"WEATHER_CALL_LIMIT" default:"-1"`
	WeatherSkipFailedDates bool `envconfig:"WEATHER_SKIP_FAILED_DATES" default:"false"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"rainball"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"rainball_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Pipeline
	Season      int    `envconfig:"SEASON" required:"true"`
	Divisions   string `envconfig:"DIVISIONS" default:"D1,E0"`
	RoundDigits int    `envconfig:"ROUND_DIGITS" default:"3"`

	// MongoDB Atlas sink
	SinkEnabled     bool   `envconfig:"SINK_ENABLED" default:"false"`
	SinkReturnIDs   bool   `envconfig:"SINK_RETURN_IDS" default:"false"`
	AtlasUser       string `envconfig:"ATLAS_USER" default:""`
	AtlasKey        string `envconfig:"ATLAS_KEY" default:""`
	AtlasKeyFile    string `envconfig:"ATLAS_KEY_FILE" default:""`
	AtlasCluster    string `envconfig:"ATLAS_CLUSTER" default:""`
	AtlasDatabase   string `envconfig:"ATLAS_DATABASE" default:"test"`
	AtlasCollection string `envconfig:"ATLAS_COLLECTION" default:"team_rain_stats"`

	// Redis weather cache
	CacheEnabled  bool          `envconfig:"CACHE_ENABLED" default:"false"`
	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL_WEATHER" default:"720h"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`

	// Scheduler (worker mode)
	PipelineCron string `envconfig:"PIPELINE_CRON" default:"0 3 * * *"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Resolve file-based secrets before validation
	if cfg.DarkskyAPIKey == "" && cfg.DarkskyAPIKeyFile != "" {
		key, err := ReadSecret(cfg.DarkskyAPIKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read Darksky key file: %w", err)
		}
		cfg.DarkskyAPIKey = key
	}
	if cfg.AtlasKey == "" && cfg.AtlasKeyFile != "" {
		key, err := ReadSecret(cfg.AtlasKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read Atlas key file: %w", err)
		}
		cfg.AtlasKey = key
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DarkskyAPIKey == "" {
		return fmt.Errorf("DARKSKY_API_KEY or DARKSKY_API_KEY_FILE is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.Season <= 0 {
		return fmt.Errorf("SEASON must be a positive year")
	}

	if c.RoundDigits < 0 {
		return fmt.Errorf("ROUND_DIGITS must not be negative")
	}

	if len(c.DivisionList()) == 0 {
		return fmt.Errorf("DIVISIONS must name at least one division code")
	}

	if c.SinkEnabled {
		if c.AtlasUser == "" || c.AtlasKey == "" || c.AtlasCluster == "" {
			return fmt.Errorf("ATLAS_USER, ATLAS_KEY and ATLAS_CLUSTER are required when the sink is enabled")
		}
	}

	return nil
}

// DivisionList returns the configured division codes
func (c *Config) DivisionList() []string {
	parts := strings.Split(c.Divisions, ",")
	divisions := make([]string, 0, len(parts))
	for _, p := range parts {
		if d := strings.TrimSpace(p); d != "" {
			divisions = append(divisions, d)
		}
	}
	return divisions
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ReadSecret reads a single secret string from a file, with surrounding
// whitespace trimmed. An unreadable or empty file is an error.
func ReadSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read secret file %s: %w", ErrCredentialUnavailable, path, err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("%w: secret file %s is empty", ErrCredentialUnavailable, path)
	}

	return secret, nil
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
