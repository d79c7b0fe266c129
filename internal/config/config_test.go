package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 5*time.Minute, cfg.RedisTTL)
	assert.Equal(t, "gpt-4o", cfg.LLMModel)
	assert.Equal(t, 20*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 10, cfg.FeedDefaultLimit)
	assert.Equal(t, 50, cfg.FeedMaxLimit)
	assert.Equal(t, 7*24*time.Hour, cfg.FeedTrendingWindow)
	assert.True(t, cfg.FeedColdStartToTrend)
	assert.False(t, cfg.StreakResetOnMiss)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("FEED_DEFAULT_LIMIT", "20")
	t.Setenv("STREAK_RESET_ON_MISS", "true")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, 20, cfg.FeedDefaultLimit)
	assert.True(t, cfg.StreakResetOnMiss)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitzty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("LLM_MODEL: gpt-4o-mini\nFEED_MAX_LIMIT: 30\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, 30, cfg.FeedMaxLimit)
}

func TestFromViper_Invalid(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DATABASE_DRIVER", "mysql")
	v.Set("FEED_DEFAULT_LIMIT", 0)
	v.Set("LLM_TIMEOUT", "0s")

	_, err := FromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
	assert.Contains(t, err.Error(), "FEED_DEFAULT_LIMIT")
	assert.Contains(t, err.Error(), "LLM_TIMEOUT")
}

func TestFromViper_AuthRequiresSecret(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("AUTH_REQUIRED", true)
	v.Set("JWT_SECRET", "")

	_, err := FromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
