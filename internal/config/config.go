// Package config loads settings for both services from the environment,
// optionally seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Hit recorder backends.
const (
	RecorderAsync = "async"
	RecorderQueue = "queue"
)

// DatabaseConfig holds PostgreSQL connection settings for the main service.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// DSN builds a libpq-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// StatsClientConfig describes how the main service reaches the stats service.
type StatsClientConfig struct {
	BaseURL  string
	App      string
	Timeout  time.Duration
	Recorder string
	Workers  int
	Buffer   int
}

// RedisConfig is used by the queued hit recorder.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string
	Format string
}

// Main is the main-service configuration.
type Main struct {
	Port     string
	Database DatabaseConfig
	Stats    StatsClientConfig
	Redis    RedisConfig
	Log      LogConfig
}

// Stats is the stats-service configuration.
type Stats struct {
	Port     string
	DBDriver string
	DBDSN    string
	Log      LogConfig
}

func newViper() (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	return v, nil
}

// LoadMain reads the main-service configuration.
func LoadMain() (Main, error) {
	v, err := newViper()
	if err != nil {
		return Main{}, err
	}

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ewm")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("STATS_SERVER_URL", "http://localhost:9090")
	v.SetDefault("STATS_APP", "ewm-main-service")
	v.SetDefault("STATS_TIMEOUT", "2s")
	v.SetDefault("HIT_RECORDER", RecorderAsync)
	v.SetDefault("HIT_WORKERS", 4)
	v.SetDefault("HIT_BUFFER", 1024)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)

	cfg := Main{
		Port: v.GetString("PORT"),
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Stats: StatsClientConfig{
			BaseURL:  v.GetString("STATS_SERVER_URL"),
			App:      v.GetString("STATS_APP"),
			Timeout:  v.GetDuration("STATS_TIMEOUT"),
			Recorder: v.GetString("HIT_RECORDER"),
			Workers:  v.GetInt("HIT_WORKERS"),
			Buffer:   v.GetInt("HIT_BUFFER"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if cfg.Stats.Recorder != RecorderAsync && cfg.Stats.Recorder != RecorderQueue {
		return Main{}, fmt.Errorf("HIT_RECORDER must be %q or %q, got %q", RecorderAsync, RecorderQueue, cfg.Stats.Recorder)
	}
	if cfg.Stats.Timeout <= 0 {
		return Main{}, fmt.Errorf("STATS_TIMEOUT must be positive")
	}
	if cfg.Stats.Workers <= 0 {
		cfg.Stats.Workers = 1
	}
	return cfg, nil
}

// LoadStats reads the stats-service configuration.
func LoadStats() (Stats, error) {
	v, err := newViper()
	if err != nil {
		return Stats{}, err
	}

	v.SetDefault("STATS_PORT", "9090")
	v.SetDefault("STATS_DB_DRIVER", "postgres")
	v.SetDefault("STATS_DB_DSN", "host=localhost port=5432 user=postgres password=postgres dbname=stats sslmode=disable")

	cfg := Stats{
		Port:     v.GetString("STATS_PORT"),
		DBDriver: v.GetString("STATS_DB_DRIVER"),
		DBDSN:    v.GetString("STATS_DB_DSN"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return Stats{}, fmt.Errorf("STATS_DB_DRIVER must be postgres or sqlite, got %q", cfg.DBDriver)
	}
	return cfg, nil
}
