package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	connectTimeout = 5 * time.Second
	pingTimeout    = 2 * time.Second
)

// Config describes the Redis instance holding rate-limit counters.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dialing, reads and writes. Zero means connectTimeout.
	Timeout time.Duration
}

func (c Config) options() *redis.Options {
	t := c.Timeout
	if t <= 0 {
		t = connectTimeout
	}
	return &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  t,
		ReadTimeout:  t,
		WriteTimeout: t,
		MinIdleConns: 2,
	}
}

// Connect opens a client and fails unless the server answers a PING.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := cfg.options()
	client := redis.NewClient(opts)

	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Ping is the readiness probe for Redis.
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
