package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RiskForecast/internal/scoring"
)

// Store backends
const (
	StoreFile     = "file"
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Store        string `env:"FORECAST_STORE" envDefault:"file"`
	ForecastFile string `env:"FORECAST_FILE" envDefault:"forecasts.json"`
	BoltPath     string `env:"FORECAST_BOLT_PATH" envDefault:"forecasts.db"`

	DBHost           string `env:"DB_HOST" envDefault:"localhost"`
	DBPort           string `env:"DB_PORT" envDefault:"5432"`
	DBUser           string `env:"DB_USER"`
	DBPassword       string `env:"DB_PASSWORD"`
	DBName           string `env:"DB_NAME" envDefault:"forecasts"`
	DBSSLMode        string `env:"DB_SSLMODE" envDefault:"disable"`
	DBConnectTimeout int    `env:"DB_CONNECT_TIMEOUT" envDefault:"30"` // seconds

	ScoringPolicy           scoring.Policy `env:"SCORING_POLICY" envDefault:"level-gated"`
	NormalizationWindowDays int            `env:"NORMALIZATION_WINDOW_DAYS" envDefault:"365"`

	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatIDs  []int64 `env:"TELEGRAM_CHAT_IDS"`
	RequestTimeout   int     `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RequestsPerSec   int     `env:"REQUESTS_PER_SEC" envDefault:"25"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config
	var err error

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.Store = strings.ToLower(getEnvWithDefault("FORECAST_STORE", StoreFile))
	cfg.ForecastFile = getEnvWithDefault("FORECAST_FILE", "forecasts.json")
	cfg.BoltPath = getEnvWithDefault("FORECAST_BOLT_PATH", "forecasts.db")

	cfg.DBHost = getEnvWithDefault("DB_HOST", "localhost")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "forecasts")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")
	cfg.DBConnectTimeout = getEnvIntWithDefault("DB_CONNECT_TIMEOUT", 30)

	cfg.ScoringPolicy, err = scoring.ParsePolicy(os.Getenv("SCORING_POLICY"))
	if err != nil {
		return nil, err
	}
	cfg.NormalizationWindowDays = getEnvIntWithDefault("NORMALIZATION_WINDOW_DAYS", 365)

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatIDs, err = parseChatIDs(os.Getenv("TELEGRAM_CHAT_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 25)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreBolt, StorePostgres:
	default:
		return fmt.Errorf("unknown FORECAST_STORE %q (want %s, %s or %s)", c.Store, StoreFile, StoreBolt, StorePostgres)
	}
	if _, err := scoring.ParsePolicy(string(c.ScoringPolicy)); err != nil {
		return err
	}
	if c.NormalizationWindowDays <= 0 {
		return fmt.Errorf("NORMALIZATION_WINDOW_DAYS must be positive, got %d", c.NormalizationWindowDays)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func parseChatIDs(value string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
