// Package config loads process configuration from the environment, an optional
// .env file and an optional config.yaml.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings shared by cmd/server, cmd/worker and cmd/admin.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DatabaseURL   string `mapstructure:"DATABASE_URL" validate:"required,url|uri"`
	DBMaxConns    int    `mapstructure:"DB_MAX_CONNS" validate:"gte=1,lte=1000"`
	RunMigrations bool   `mapstructure:"RUN_MIGRATIONS"`

	// RedisAddr is optional; when empty the job notifier is disabled and the
	// worker relies on polling alone.
	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	WorkerConcurrency  int           `mapstructure:"WORKER_CONCURRENCY" validate:"gte=1,lte=1000"`
	WorkerPollInterval time.Duration `mapstructure:"WORKER_POLL_INTERVAL" validate:"required"`
	WorkerChannels     []string      `mapstructure:"WORKER_CHANNELS" validate:"required,min=1,dive,required"`
}

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

var keys = []string{
	"APP_ENV",
	"HTTP_ADDR",
	"SHUTDOWN_TIMEOUT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"DATABASE_URL",
	"DB_MAX_CONNS",
	"RUN_MIGRATIONS",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"WORKER_CONCURRENCY",
	"WORKER_POLL_INTERVAL",
	"WORKER_CHANNELS",
}

// Load reads .env files if present, applies defaults, binds env vars and
// validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("RUN_MIGRATIONS", false)
	v.SetDefault("WORKER_CONCURRENCY", 10)
	v.SetDefault("WORKER_POLL_INTERVAL", "1s")
	v.SetDefault("WORKER_CHANNELS", "emails")

	_ = v.ReadInConfig()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// env values arrive as a single comma separated string
	c.WorkerChannels = splitList(v.GetString("WORKER_CHANNELS"), c.WorkerChannels)

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = &c
	return cfg, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}

func splitList(raw string, fallback []string) []string {
	if raw == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
