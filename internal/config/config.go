// Package config loads queue and worker settings from a YAML or TOML file,
// environment variables and built-in defaults, in increasing precedence:
// defaults < file < environment. CLI flags are applied on top by cmd.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete configuration of a queue process.
type Config struct {
	Redis   RedisConfig   `yaml:"redis" toml:"redis"`
	Queue   QueueConfig   `yaml:"queue" toml:"queue"`
	Worker  WorkerConfig  `yaml:"worker" toml:"worker"`
	History HistoryConfig `yaml:"history" toml:"history"`
}

// RedisConfig holds the store connection settings. URL wins over Host/Port/DB.
type RedisConfig struct {
	URL      string `yaml:"url" toml:"url"`
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
}

// QueueConfig holds the channel name and timing settings, in seconds.
type QueueConfig struct {
	Name          string `yaml:"name" toml:"name"`
	PollTimeout   int    `yaml:"poll_timeout" toml:"poll_timeout"`
	RetryDelay    int    `yaml:"retry_delay" toml:"retry_delay"`
	HandleTimeout int    `yaml:"handle_timeout" toml:"handle_timeout"`
}

// WorkerConfig holds consumer settings.
type WorkerConfig struct {
	ID        string  `yaml:"id" toml:"id"`
	RateLimit float64 `yaml:"rate_limit" toml:"rate_limit"`
	Burst     int     `yaml:"burst" toml:"burst"`
}

// HistoryConfig configures the local job history database. Empty Path disables it.
type HistoryConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Redis: RedisConfig{
			Host: "127.0.0.1",
			Port: 6379,
		},
		Queue: QueueConfig{
			Name:          "ludo:queue",
			PollTimeout:   5,
			RetryDelay:    60,
			HandleTimeout: 60,
		},
		Worker: WorkerConfig{
			Burst: 1,
		},
	}
}

// Load reads path (if non-empty) over the defaults and applies environment
// overrides. The file format is chosen by extension: .toml, otherwise YAML.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := decode(path, data, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	}
	return nil
}

// getEnv returns the first non-empty value among keys.
func getEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value, true
		}
	}
	return "", false
}

func applyEnv(cfg *Config) {
	if v, ok := getEnv("LUDO_REDIS_URL", "REDIS_URL"); ok {
		cfg.Redis.URL = v
	}
	if v, ok := getEnv("LUDO_REDIS_HOST", "REDIS_HOST"); ok {
		cfg.Redis.Host = v
	}
	if v, ok := getEnv("LUDO_REDIS_PORT", "REDIS_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.Port = n
		}
	}
	if v, ok := getEnv("LUDO_REDIS_PASSWORD", "REDIS_PASSWORD"); ok {
		cfg.Redis.Password = v
	}
	if v, ok := getEnv("LUDO_REDIS_DB", "REDIS_DB"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v, ok := getEnv("LUDO_QUEUE"); ok {
		cfg.Queue.Name = v
	}
	if v, ok := getEnv("LUDO_POLL_TIMEOUT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Queue.PollTimeout = n
		}
	}
	if v, ok := getEnv("LUDO_RETRY_DELAY"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Queue.RetryDelay = n
		}
	}
	if v, ok := getEnv("LUDO_HANDLE_TIMEOUT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Queue.HandleTimeout = n
		}
	}
	if v, ok := getEnv("LUDO_WORKER_ID"); ok {
		cfg.Worker.ID = v
	}
	if v, ok := getEnv("LUDO_HISTORY_PATH"); ok {
		cfg.History.Path = v
	}
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if c.Queue.Name == "" {
		return fmt.Errorf("%w: queue.name is required", ErrInvalidConfig)
	}
	if c.Redis.URL == "" && c.Redis.Host == "" {
		return fmt.Errorf("%w: redis.url or redis.host is required", ErrInvalidConfig)
	}
	if c.Redis.URL == "" && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		return fmt.Errorf("%w: redis.port %d out of range", ErrInvalidConfig, c.Redis.Port)
	}
	if c.Queue.PollTimeout < 1 {
		return fmt.Errorf("%w: queue.poll_timeout must be at least 1 second", ErrInvalidConfig)
	}
	if c.Queue.RetryDelay < 1 {
		return fmt.Errorf("%w: queue.retry_delay must be at least 1 second", ErrInvalidConfig)
	}
	if c.Queue.HandleTimeout < 1 {
		return fmt.Errorf("%w: queue.handle_timeout must be at least 1 second", ErrInvalidConfig)
	}
	if c.Worker.RateLimit < 0 {
		return fmt.Errorf("%w: worker.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Address returns the Redis connection URL.
func (r RedisConfig) Address() string {
	if r.URL != "" {
		return r.URL
	}
	return fmt.Sprintf("redis://%s:%d/%d", r.Host, r.Port, r.DB)
}

// PollTimeoutDuration returns the blocking pop timeout.
func (q QueueConfig) PollTimeoutDuration() time.Duration {
	return time.Duration(q.PollTimeout) * time.Second
}

// RetryDelayDuration returns the delay before a failed job is retried.
func (q QueueConfig) RetryDelayDuration() time.Duration {
	return time.Duration(q.RetryDelay) * time.Second
}

// HandleTimeoutDuration returns the reservation deadline of a popped job.
func (q QueueConfig) HandleTimeoutDuration() time.Duration {
	return time.Duration(q.HandleTimeout) * time.Second
}
