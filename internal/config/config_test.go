package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramBotToken)
	assert.Equal(t, 8443, cfg.Port)
	assert.Equal(t, ":8443", cfg.ListenAddr())
	assert.Equal(t, "sqlite://data/interview.db", cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "0 21 * * *", cfg.ReportSchedule)
	assert.False(t, cfg.UseWebhook())
}

func TestLoad_EmptyToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_UnsetToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	require.NoError(t, os.Unsetenv("TELEGRAM_TOKEN"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "t")
	t.Setenv("PORT", "9000")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ADMIN_USER", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr())
	assert.True(t, cfg.UseWebhook())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(42), cfg.AdminUserID)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "t")
	t.Setenv("PORT", "70000")

	_, err := Load()
	require.Error(t, err)
}

func TestDatabaseURL_WithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/interview")

	dsn, err := DatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost/interview", dsn)
}
