package config

import (
	"context"
	"time"
)

// Config represents the complete configuration for the answer store.
// It provides type-safe access to all configuration values with validation.
type Config struct {
	Answers AnswersConfig `koanf:"answers" validate:"required"`
	Redis   RedisConfig   `koanf:"redis"`
	Runtime RuntimeConfig `koanf:"runtime" validate:"required"`
}

// AnswersConfig controls answer-file handling and the shared store keyspace.
type AnswersConfig struct {
	// File is the answer file consulted by default when none is given.
	File string `koanf:"file" validate:"required" env:"ANSWERS_FILE"`
	// KeyPrefix namespaces every scope key in the shared coordinator.
	KeyPrefix string `koanf:"key_prefix" validate:"required" env:"ANSWERS_KEY_PREFIX"`
	// WatchDebounce and WatchMaxWait shape how bursts of answer-file edits
	// collapse into reloads.
	WatchDebounce time.Duration `koanf:"watch_debounce" env:"ANSWERS_WATCH_DEBOUNCE"`
	WatchMaxWait  time.Duration `koanf:"watch_max_wait" env:"ANSWERS_WATCH_MAX_WAIT"`
}

// RedisConfig contains the shared coordinator connection configuration.
// URL takes precedence over the individual fields when set.
type RedisConfig struct {
	URL          string          `koanf:"url"            env:"REDIS_URL"`
	Host         string          `koanf:"host"           env:"REDIS_HOST"`
	Port         string          `koanf:"port"           env:"REDIS_PORT"`
	Password     SensitiveString `koanf:"password"       env:"REDIS_PASSWORD"       sensitive:"true"`
	DB           int             `koanf:"db"             env:"REDIS_DB"             validate:"min=0,max=15"`
	PoolSize     int             `koanf:"pool_size"      env:"REDIS_POOL_SIZE"`
	MinIdleConns int             `koanf:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS"`
	DialTimeout  time.Duration   `koanf:"dial_timeout"   env:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration   `koanf:"read_timeout"   env:"REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration   `koanf:"write_timeout"  env:"REDIS_WRITE_TIMEOUT"`
	PingTimeout  time.Duration   `koanf:"ping_timeout"   env:"REDIS_PING_TIMEOUT"`
	TLSEnabled   bool            `koanf:"tls_enabled"    env:"REDIS_TLS_ENABLED"`
}

// RuntimeConfig contains runtime behavior configuration.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production" env:"RUNTIME_ENVIRONMENT"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error disabled"  env:"RUNTIME_LOG_LEVEL"`
}

// Service defines the configuration management service interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type for a specific configuration key.
	// This tracks which source (env, YAML, default) provided each value,
	// enabling debugging and precedence verification.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
	// Close releases any resources held by the source.
	Close() error
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Load loads configuration using the default service.
// This is a convenience function for simple configuration loading.
func Load() (*Config, error) {
	service := NewService()
	return service.Load(context.Background())
}

// Default returns a Config with default values for development.
func Default() *Config {
	return &Config{
		Answers: AnswersConfig{
			File:          "answerfile",
			KeyPrefix:     "preseed:answers",
			WatchDebounce: 300 * time.Millisecond,
			WatchMaxWait:  2 * time.Second,
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         "6379",
			DB:           0,
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PingTimeout:  5 * time.Second,
		},
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
		},
	}
}
