package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: campaign archive only)
	Database DatabaseConfig

	// Redis (optional: campaign summary cache)
	Redis RedisConfig

	// Simulation defaults
	Sim SimConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// SimConfig holds the economic defaults for new sessions
type SimConfig struct {
	Seed              int64 // 0 = time-based
	MaxDays           int
	StartingCash      float64
	StartingInventory int

	StockoutPenalty float64 // per unit short
	StoragePerDay   float64 // per unit per day
	ReworkPerUnit   float64
	UnitRevenue     float64 // revenue proxy per unit consumed

	ScenarioPath string // optional YAML scenario

	// Session hosting (API)
	SessionTTL      time.Duration
	ReaperSchedule  string
	JobRetries      int
	JobRetryDelay   time.Duration
	APIRatePerSec   float64
	APIBurst        int
	CampaignWorkers int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Sim: SimConfig{
			Seed:              getEnvAsInt64("SIM_SEED", 0),
			MaxDays:           getEnvAsInt("SIM_MAX_DAYS", 30),
			StartingCash:      getEnvAsFloat("SIM_STARTING_CASH", 50000),
			StartingInventory: getEnvAsInt("SIM_STARTING_INVENTORY", 500),
			StockoutPenalty:   getEnvAsFloat("SIM_STOCKOUT_PENALTY", 25),
			StoragePerDay:     getEnvAsFloat("SIM_STORAGE_PER_DAY", 0.10),
			ReworkPerUnit:     getEnvAsFloat("SIM_REWORK_PER_UNIT", 20),
			UnitRevenue:       getEnvAsFloat("SIM_UNIT_REVENUE", 0),
			ScenarioPath:      getEnv("SIM_SCENARIO", ""),
			SessionTTL:        getEnvAsDuration("SIM_SESSION_TTL", "2h"),
			ReaperSchedule:    getEnv("SIM_REAPER_SCHEDULE", "0 */10 * * * *"),
			JobRetries:        getEnvAsInt("SIM_JOB_RETRIES", 2),
			JobRetryDelay:     getEnvAsDuration("SIM_JOB_RETRY_DELAY", "10s"),
			APIRatePerSec:     getEnvAsFloat("SIM_API_RATE", 20),
			APIBurst:          getEnvAsInt("SIM_API_BURST", 40),
			CampaignWorkers:   getEnvAsInt("SIM_CAMPAIGN_WORKERS", 4),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks configuration values
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	if c.Sim.MaxDays < 1 {
		return fmt.Errorf("SIM_MAX_DAYS must be at least 1")
	}
	if c.Sim.StartingInventory < 0 {
		return fmt.Errorf("SIM_STARTING_INVENTORY must not be negative")
	}
	if c.Sim.StockoutPenalty < 0 || c.Sim.StoragePerDay < 0 || c.Sim.ReworkPerUnit < 0 {
		return fmt.Errorf("SIM penalty rates must not be negative")
	}
	if c.Sim.JobRetries < 0 {
		return fmt.Errorf("SIM_JOB_RETRIES must not be negative")
	}
	if c.Sim.CampaignWorkers < 1 {
		return fmt.Errorf("SIM_CAMPAIGN_WORKERS must be at least 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
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
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
