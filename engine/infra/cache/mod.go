package cache

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/preseedhq/preseed/pkg/config"
)

// Config carries the coordinator connection settings. TLSConfig overrides
// the minimal TLS client derived from TLSEnabled when callers need custom
// certificates.
type Config struct {
	*config.RedisConfig
	TLSConfig *tls.Config
}

// FromAppConfig creates a cache Config from the centralized app configuration
func FromAppConfig(appConfig *config.Config) *Config {
	return &Config{RedisConfig: &appConfig.Redis}
}

// Cache owns the shared coordinator connection.
type Cache struct {
	Redis *Redis
}

// SetupCache creates a new Cache instance with Redis backend
func SetupCache(ctx context.Context, config *Config) (*Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("cache config cannot be nil")
	}
	redis, err := NewRedis(ctx, config)
	if err != nil {
		return nil, err
	}
	return &Cache{Redis: redis}, nil
}

// Close gracefully shuts down the cache
func (c *Cache) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}
	return nil
}

// HealthCheck performs a health check on all cache components
func (c *Cache) HealthCheck(ctx context.Context) error {
	if c.Redis != nil {
		return c.Redis.HealthCheck(ctx)
	}
	return nil
}
