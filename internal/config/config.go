package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort        = 3000
	defaultPollTimeout = 60
	defaultRateRPS     = 5
	defaultRateBurst   = 10

	// DefaultSeedAdmin is written into a freshly created settings record.
	DefaultSeedAdmin int64 = 6172086498
)

var defaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:5174"}

type TelegramConfig struct {
	Token              string `yaml:"token" envconfig:"BOT_TOKEN"`
	PollTimeoutSeconds int    `yaml:"poll_timeout_seconds" envconfig:"TELEGRAM_POLL_TIMEOUT"`
}

type DatabaseConfig struct {
	URL string `yaml:"url" envconfig:"DATABASE_URL"`
}

type RedisConfig struct {
	URL      string `yaml:"url" envconfig:"REDIS_URL"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

type HTTPConfig struct {
	Port        int      `yaml:"port" envconfig:"PORT"`
	CORSOrigins []string `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
	RateRPS     float64  `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateBurst   int      `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// Config aggregates everything the process needs at startup.
type Config struct {
	Telegram     TelegramConfig `yaml:"telegram"`
	Database     DatabaseConfig `yaml:"database"`
	Redis        RedisConfig    `yaml:"redis"`
	HTTP         HTTPConfig     `yaml:"http"`
	Logging      LoggingConfig  `yaml:"logging"`
	SeedAdminIDs []int64        `yaml:"seed_admin_ids" envconfig:"SEED_ADMIN_IDS"`
}

// Load reads an optional .env file, an optional YAML file, then environment overrides.
func Load(path string) (*Config, error) {
	// .env is optional; plain environment variables work too
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("BOT_TOKEN not set")
	}
	cfg.Database.URL = strings.TrimSpace(cfg.Database.URL)
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	if cfg.Telegram.PollTimeoutSeconds < 0 {
		return fmt.Errorf("telegram poll timeout must be >= 0")
	}
	if cfg.Telegram.PollTimeoutSeconds == 0 {
		cfg.Telegram.PollTimeoutSeconds = defaultPollTimeout
	}

	if cfg.HTTP.Port < 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = defaultPort
	}
	if cfg.HTTP.RateRPS <= 0 {
		cfg.HTTP.RateRPS = defaultRateRPS
	}
	if cfg.HTTP.RateBurst <= 0 {
		cfg.HTTP.RateBurst = defaultRateBurst
	}

	origins := make([]string, 0, len(cfg.HTTP.CORSOrigins))
	for _, o := range cfg.HTTP.CORSOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = append(origins, defaultCORSOrigins...)
	}
	cfg.HTTP.CORSOrigins = origins

	if len(cfg.SeedAdminIDs) == 0 {
		cfg.SeedAdminIDs = []int64{DefaultSeedAdmin}
	}

	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	switch cfg.Logging.Format {
	case "":
		cfg.Logging.Format = "console"
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q; allowed: console, json", cfg.Logging.Format)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.HTTP.Port)
}
