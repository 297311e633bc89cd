package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_API_ID", "1001")
	t.Setenv("TELEGRAM_API_HASH", "hash")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 1001, cfg.Telegram.APIID)
	require.Equal(t, CodeInputCLI, cfg.Telegram.CodeInputMode)
	require.Equal(t, []string{"Movies", "Series", "Anime", "Others"}, cfg.Media.Categories)
	require.Equal(t, "Others", cfg.Media.DefaultCategory)
	require.Equal(t, 60*time.Second, cfg.Media.PromptTimeout)
	require.Equal(t, 5*time.Second, cfg.Media.PromptCleanupDelay)
	require.True(t, cfg.Media.EnableCategories)
	require.True(t, cfg.Media.IsSeasonal("Anime"))
	require.False(t, cfg.Media.IsSeasonal("Movies"))
	require.False(t, cfg.Kafka.Enabled())
}

func TestLoadReportsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"TELEGRAM_API_ID", "abc"},
		{"CATEGORY_PROMPT_TIMEOUT", "soon"},
		{"ENABLE_MEDIA_CATEGORIES", "maybe"},
		{"TELEGRAM_CODE_INPUT_MODE", "TG"},
		{"MAX_DOWNLOADS_IN_LIST", "0"},
		{"MEDIA_CATEGORIES", "AVeryLongCategoryName"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadRequiresBotToken(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.ErrorContains(t, err, "TELEGRAM_BOT_TOKEN")
}

func TestGetEnvListTrimsItems(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")

	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, getEnvList("KAFKA_BROKERS", ""))
}
