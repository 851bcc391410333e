package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_TOKEN,required,notEmpty"`
	AdminUserID      int64  `env:"ADMIN_USER"`
	TelegramDebug    bool   `env:"TELEGRAM_DEBUG"`

	// Delivery: long polling unless WebhookURL is set
	WebhookURL string `env:"WEBHOOK_URL"`
	Port       int    `env:"PORT" envDefault:"8443"`

	// Storage
	DatabaseURL      string        `env:"DATABASE_URL" envDefault:"sqlite://data/interview.db"`
	RedisURL         string        `env:"REDIS_URL"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	EventLogFilePath string        `env:"EVENT_LOG_FILE_PATH" envDefault:"logs/events.jsonl"`

	// Content
	QuestionsFilePath string `env:"QUESTIONS_FILE_PATH"`

	// Reports
	ReportSchedule string `env:"REPORT_SCHEDULE" envDefault:"0 21 * * *"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be > 0")
	}
	return cfg, nil
}

// UseWebhook reports whether updates are delivered by push instead of long polling.
func (c *Config) UseWebhook() bool {
	return c.WebhookURL != ""
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type databaseConfig struct {
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://data/interview.db"`
}

// DatabaseURL reads only DATABASE_URL, for commands that never talk to Telegram.
func DatabaseURL() (string, error) {
	var c databaseConfig
	if err := env.Parse(&c); err != nil {
		return "", fmt.Errorf("parse config: %w", err)
	}
	return c.DatabaseURL, nil
}
