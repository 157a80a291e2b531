package myredis

import (
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig describes the Redis instance holding session bindings.
type RedisConfig struct {
	// Addr is a redis:// or rediss:// URL, e.g. redis://localhost:6379/0.
	Addr string
	// Timeout bounds dial, read and write on every connection. Zero keeps the go-redis defaults.
	Timeout time.Duration
}

// NewRedisUniversalClient creates the client of the binding store from cfg. Database, credentials and TLS come
// from the URL.
func NewRedisUniversalClient(cfg RedisConfig) (redis.UniversalClient, error) {
	options, err := redis.ParseURL(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("cant parse redis url: %w", err)
	}
	if cfg.Timeout > 0 {
		options.DialTimeout = cfg.Timeout
		options.ReadTimeout = cfg.Timeout
		options.WriteTimeout = cfg.Timeout
	}
	return redis.NewClient(options), nil
}
