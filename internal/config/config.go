package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"nflcache/ingestion/internal/pacer"
	"nflcache/ingestion/internal/repository"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// SportRadar API
	SportRadarAPIKey  string        `envconfig:"SPORTRADAR_API_KEY" required:"true"`
	SportRadarBaseURL string        `envconfig:"SPORTRADAR_BASE_URL" default:"https://api.sportradar.com/nfl/official/trial/v7/en"`
	SportRadarTimeout time.Duration `envconfig:"SPORTRADAR_TIMEOUT" default:"15s"`

	// Database
	DatabaseHost        string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort        int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName        string `envconfig:"DATABASE_NAME" default:"nfl_players"`
	DatabaseUser        string `envconfig:"DATABASE_USER" default:"nfl_user"`
	DatabasePassword    string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode     string `envconfig:"DATABASE_SSL_MODE" default:"disable"`
	DatabaseAutoMigrate bool   `envconfig:"DATABASE_AUTO_MIGRATE" default:"true"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Roster pacing
	RosterInterval    time.Duration `envconfig:"ROSTER_INTERVAL" default:"2s"`
	RosterBurst       int           `envconfig:"ROSTER_BURST" default:"1"`
	PenaltyInitial    time.Duration `envconfig:"PENALTY_INITIAL" default:"10s"`
	PenaltyMax        time.Duration `envconfig:"PENALTY_MAX" default:"2m"`
	PenaltyMultiplier float64       `envconfig:"PENALTY_MULTIPLIER" default:"2"`
	PenaltyJitter     float64       `envconfig:"PENALTY_JITTER" default:"0.2"`
	BreakerThreshold  uint32        `envconfig:"BREAKER_THRESHOLD" default:"5"`
	BreakerCooldown   time.Duration `envconfig:"BREAKER_COOLDOWN" default:"5m"`

	// Rebuild
	RebuildTimeout time.Duration `envconfig:"REBUILD_TIMEOUT" default:"30m"`

	// Lazy stat backfill
	BackfillConcurrency int           `envconfig:"BACKFILL_CONCURRENCY" default:"4"`
	BackfillTimeout     time.Duration `envconfig:"BACKFILL_TIMEOUT" default:"10s"`
	BackfillEmptyTTL    time.Duration `envconfig:"BACKFILL_EMPTY_TTL" default:"6h"`
	BackfillFailureTTL  time.Duration `envconfig:"BACKFILL_FAILURE_TTL" default:"5m"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"false"`
	RebuildCron        string `envconfig:"REBUILD_CRON" default:"0 3 * * *"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.SportRadarAPIKey == "" {
		return fmt.Errorf("SPORTRADAR_API_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.RosterInterval <= 0 {
		return fmt.Errorf("ROSTER_INTERVAL must be positive")
	}

	if c.RosterBurst < 1 {
		return fmt.Errorf("ROSTER_BURST must be at least 1")
	}

	if c.PenaltyInitial <= 0 || c.PenaltyMax < c.PenaltyInitial {
		return fmt.Errorf("PENALTY_INITIAL must be positive and not exceed PENALTY_MAX")
	}

	if c.PenaltyMultiplier < 1 {
		return fmt.Errorf("PENALTY_MULTIPLIER must be at least 1")
	}

	if c.PenaltyJitter < 0 || c.PenaltyJitter >= 1 {
		return fmt.Errorf("PENALTY_JITTER must be in [0, 1)")
	}

	if c.BreakerThreshold < 1 {
		return fmt.Errorf("BREAKER_THRESHOLD must be at least 1")
	}

	if c.BackfillConcurrency < 1 {
		return fmt.Errorf("BACKFILL_CONCURRENCY must be at least 1")
	}

	return nil
}

// DatabaseConfig returns the repository connection settings
func (c *Config) DatabaseConfig() repository.Config {
	return repository.Config{
		Host:     c.DatabaseHost,
		Port:     strconv.Itoa(c.DatabasePort),
		User:     c.DatabaseUser,
		Password: c.DatabasePassword,
		Database: c.DatabaseName,
		SSLMode:  c.DatabaseSSLMode,
	}
}

// PacerConfig returns the roster pacing policy
func (c *Config) PacerConfig() pacer.Config {
	return pacer.Config{
		Interval:          c.RosterInterval,
		Burst:             c.RosterBurst,
		PenaltyInitial:    c.PenaltyInitial,
		PenaltyMax:        c.PenaltyMax,
		PenaltyMultiplier: c.PenaltyMultiplier,
		Jitter:            c.PenaltyJitter,
		BreakerThreshold:  c.BreakerThreshold,
		BreakerCooldown:   c.BreakerCooldown,
	}
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

// MustLoad loads configuration or exits on error
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
