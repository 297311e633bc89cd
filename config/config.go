package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Code input modes for the MTProto login flow
const (
	CodeInputCLI = "CLI"
	CodeInputWeb = "WEB"
)

// maxCategoryLength keeps "season_NN_<category>_<uuid>" within the 64 byte callback limit
const maxCategoryLength = 17

// Config holds all configuration for PiBot
type Config struct {
	Telegram TelegramConfig
	Media    MediaConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
	Service  ServiceConfig
}

// TelegramConfig holds Telegram bot and MTProto configuration
type TelegramConfig struct {
	BotToken        string
	APIID           int
	APIHash         string
	PhoneNumber     string
	Password        string
	SessionDir      string
	DownloadThreads int
	CodeInputMode   string
	CodeServerPort  string
	CodePublicURL   string
	AutoConnect     bool
}

// MediaConfig holds download and classification configuration
type MediaConfig struct {
	DownloadDir        string
	Categories         []string
	DefaultCategory    string
	SeasonalCategories []string
	EnableCategories   bool
	PromptTimeout      time.Duration
	PromptCleanupDelay time.Duration
	MaxDownloadsInList int
	VisiblePageButtons int
	MaxSeasonButtons   int
}

// IsSeasonal reports whether downloads in category are filed by season
func (c *MediaConfig) IsSeasonal(category string) bool {
	for _, s := range c.SeasonalCategories {
		if s == category {
			return true
		}
	}
	return false
}

// HasCategory reports whether category is one of the configured categories
func (c *MediaConfig) HasCategory(category string) bool {
	for _, s := range c.Categories {
		if s == category {
			return true
		}
	}
	return category == c.DefaultCategory
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// KafkaConfig holds Kafka configuration. Empty Brokers disables event publishing.
type KafkaConfig struct {
	Brokers        []string
	DownloadsTopic string
}

// Enabled reports whether brokers are configured
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config   *Config
	Telegram *TelegramConfig
	Media    *MediaConfig
	Database *DatabaseConfig
	Kafka    *KafkaConfig
	Logging  *LoggingConfig
	Service  *ServiceConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:   cfg,
		Telegram: &cfg.Telegram,
		Media:    &cfg.Media,
		Database: &cfg.Database,
		Kafka:    &cfg.Kafka,
		Logging:  &cfg.Logging,
		Service:  &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	p := &parser{}

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
			APIID:           p.getInt("TELEGRAM_API_ID", "0"),
			APIHash:         getEnv("TELEGRAM_API_HASH", ""),
			PhoneNumber:     getEnv("TELEGRAM_PHONE_NUMBER", ""),
			Password:        getEnv("TELEGRAM_PASSWORD", ""),
			SessionDir:      getEnv("TELEGRAM_SESSION_DIR", "./sessions"),
			DownloadThreads: p.getInt("TELEGRAM_DOWNLOAD_THREADS", "4"),
			CodeInputMode:   strings.ToUpper(getEnv("TELEGRAM_CODE_INPUT_MODE", CodeInputCLI)),
			CodeServerPort:  getEnv("TELEGRAM_CODE_SERVER_PORT", "8085"),
			CodePublicURL:   getEnv("TELEGRAM_CODE_PUBLIC_URL", ""),
			AutoConnect:     p.getBool("TELEGRAM_AUTO_CONNECT", "false"),
		},
		Media: MediaConfig{
			DownloadDir:        getEnv("DOWNLOAD_DIR", "./downloads"),
			Categories:         getEnvList("MEDIA_CATEGORIES", "Movies,Series,Anime,Others"),
			DefaultCategory:    getEnv("DEFAULT_MEDIA_CATEGORY", "Others"),
			SeasonalCategories: getEnvList("SEASONAL_CATEGORIES", "Anime,Series"),
			EnableCategories:   p.getBool("ENABLE_MEDIA_CATEGORIES", "true"),
			PromptTimeout:      p.getDuration("CATEGORY_PROMPT_TIMEOUT", "60s"),
			PromptCleanupDelay: p.getDuration("PROMPT_CLEANUP_DELAY", "5s"),
			MaxDownloadsInList: p.getInt("MAX_DOWNLOADS_IN_LIST", "5"),
			VisiblePageButtons: p.getInt("VISIBLE_PAGE_BUTTONS", "5"),
			MaxSeasonButtons:   p.getInt("MAX_SEASON_BUTTONS", "10"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "pibot"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://migrations"),
		},
		Kafka: KafkaConfig{
			Brokers:        getEnvList("KAFKA_BROKERS", ""),
			DownloadsTopic: getEnv("KAFKA_DOWNLOADS_TOPIC", "media.downloaded"),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  p.getInt("LOG_FILE_MAX_SIZE_MB", "50"),
			MaxBackups: p.getInt("LOG_FILE_MAX_BACKUPS", "3"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "pibot"),
			Port: getEnv("SERVICE_PORT", "8084"),
		},
	}

	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.Telegram.APIID == 0 {
		return fmt.Errorf("TELEGRAM_API_ID is required")
	}

	if c.Telegram.APIHash == "" {
		return fmt.Errorf("TELEGRAM_API_HASH is required")
	}

	if c.Telegram.CodeInputMode != CodeInputCLI && c.Telegram.CodeInputMode != CodeInputWeb {
		return fmt.Errorf("TELEGRAM_CODE_INPUT_MODE must be %s or %s, got %q", CodeInputCLI, CodeInputWeb, c.Telegram.CodeInputMode)
	}

	if c.Telegram.DownloadThreads < 1 {
		return fmt.Errorf("TELEGRAM_DOWNLOAD_THREADS must be positive")
	}

	if c.Media.EnableCategories {
		if len(c.Media.Categories) == 0 {
			return fmt.Errorf("MEDIA_CATEGORIES is required when ENABLE_MEDIA_CATEGORIES is set")
		}
		categories := append([]string{c.Media.DefaultCategory}, c.Media.Categories...)
		for _, category := range categories {
			if category == "" || len(category) > maxCategoryLength {
				return fmt.Errorf("media category %q must be 1 to %d bytes long", category, maxCategoryLength)
			}
		}
	}

	if c.Media.MaxDownloadsInList < 1 {
		return fmt.Errorf("MAX_DOWNLOADS_IN_LIST must be positive")
	}

	if c.Media.VisiblePageButtons < 1 {
		return fmt.Errorf("VISIBLE_PAGE_BUTTONS must be positive")
	}

	if c.Media.MaxSeasonButtons < 0 || c.Media.MaxSeasonButtons > 99 {
		return fmt.Errorf("MAX_SEASON_BUTTONS must be between 0 and 99")
	}

	if c.Media.PromptTimeout <= 0 {
		return fmt.Errorf("CATEGORY_PROMPT_TIMEOUT must be positive")
	}

	return nil
}

// parser keeps the first conversion error so Load can report it after building the config
type parser struct {
	err error
}

func (p *parser) getInt(key, defaultValue string) int {
	v, err := strconv.Atoi(getEnv(key, defaultValue))
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func (p *parser) getBool(key, defaultValue string) bool {
	v, err := strconv.ParseBool(getEnv(key, defaultValue))
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func (p *parser) getDuration(key, defaultValue string) time.Duration {
	v, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated variable, dropping empty items
func getEnvList(key, defaultValue string) []string {
	var items []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
