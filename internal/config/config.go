// Package config loads process configuration from the environment (and an optional
// config file) through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved process configuration.
type Config struct {
	AppPort string
	AppEnv  string

	DatabaseDriver string
	DatabaseDSN    string

	RabbitMQURL string

	RedisAddr string
	RedisTTL  time.Duration

	JWTSecret    string
	AuthRequired bool

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	LLMTimeout time.Duration
	LLMMaxRPS  float64
	LLMReferer string
	LLMTitle   string

	FeedDefaultLimit     int
	FeedMaxLimit         int
	FeedTrendingWindow   time.Duration
	FeedColdStartToTrend bool

	StreakResetOnMiss bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "fitzty.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_TTL", "5m")
	v.SetDefault("JWT_SECRET", "supersecretjwtkey")
	v.SetDefault("AUTH_REQUIRED", false)
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("LLM_MODEL", "gpt-4o")
	v.SetDefault("LLM_TIMEOUT", "20s")
	v.SetDefault("LLM_MAX_RPS", 5)
	v.SetDefault("LLM_REFERER", "")
	v.SetDefault("LLM_TITLE", "Fitzty")
	v.SetDefault("FEED_DEFAULT_LIMIT", 10)
	v.SetDefault("FEED_MAX_LIMIT", 50)
	v.SetDefault("FEED_TRENDING_WINDOW", "168h")
	v.SetDefault("FEED_COLD_START_FALLBACK", true)
	v.SetDefault("STREAK_RESET_ON_MISS", false)
}

// Load reads defaults, the file named by CONFIG_FILE (if any) and the environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}
	return FromViper(v)
}

// FromViper resolves and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:              v.GetString("APP_PORT"),
		AppEnv:               v.GetString("APP_ENV"),
		DatabaseDriver:       strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		RabbitMQURL:          v.GetString("RABBITMQ_URL"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisTTL:             v.GetDuration("REDIS_TTL"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		AuthRequired:         v.GetBool("AUTH_REQUIRED"),
		LLMAPIKey:            v.GetString("LLM_API_KEY"),
		LLMBaseURL:           v.GetString("LLM_BASE_URL"),
		LLMModel:             v.GetString("LLM_MODEL"),
		LLMTimeout:           v.GetDuration("LLM_TIMEOUT"),
		LLMMaxRPS:            v.GetFloat64("LLM_MAX_RPS"),
		LLMReferer:           v.GetString("LLM_REFERER"),
		LLMTitle:             v.GetString("LLM_TITLE"),
		FeedDefaultLimit:     v.GetInt("FEED_DEFAULT_LIMIT"),
		FeedMaxLimit:         v.GetInt("FEED_MAX_LIMIT"),
		FeedTrendingWindow:   v.GetDuration("FEED_TRENDING_WINDOW"),
		FeedColdStartToTrend: v.GetBool("FEED_COLD_START_FALLBACK"),
		StreakResetOnMiss:    v.GetBool("STREAK_RESET_ON_MISS"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the process cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver))
	}
	if c.AppPort == "" {
		errs = append(errs, errors.New("APP_PORT is required"))
	}
	if c.RedisTTL <= 0 {
		errs = append(errs, errors.New("REDIS_TTL must be positive"))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be positive"))
	}
	if c.LLMMaxRPS < 0 {
		errs = append(errs, errors.New("LLM_MAX_RPS must not be negative"))
	}
	if c.FeedDefaultLimit < 1 {
		errs = append(errs, errors.New("FEED_DEFAULT_LIMIT must be at least 1"))
	}
	if c.FeedMaxLimit < c.FeedDefaultLimit {
		errs = append(errs, errors.New("FEED_MAX_LIMIT must be at least FEED_DEFAULT_LIMIT"))
	}
	if c.FeedTrendingWindow <= 0 {
		errs = append(errs, errors.New("FEED_TRENDING_WINDOW must be positive"))
	}
	if c.AuthRequired && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when AUTH_REQUIRED is set"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.AppEnv) {
	case "prod", "production":
		return true
	}
	return false
}
