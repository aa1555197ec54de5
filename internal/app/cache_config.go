package app

import (
	"strings"

	"github.com/docsentry/docsentry/internal/authz"
	"github.com/docsentry/docsentry/internal/cache"
)

// RedisClientConfig converts the application cache configuration into the cache package representation.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}

// EngineTTLConfig converts the configured per-namespace TTLs for the
// permission cache; zero values fall back to the engine defaults.
func (c CacheConfig) EngineTTLConfig() authz.TTLConfig {
	return authz.TTLConfig{
		Permissions: c.TTL.Permissions,
		Assignments: c.TTL.Assignments,
		Visibility:  c.TTL.Visibility,
	}
}
