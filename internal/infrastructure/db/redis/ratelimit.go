package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const rateLimitOpTimeout = 500 * time.Millisecond

// RateLimitStore is a fixed-window counter shared by every API instance.
// Key format: ratelimit:<scope>:<identifier>:<window_start_unix>
//
// When Redis cannot be reached the store degrades to a per-process token
// bucket with the same budget instead of rejecting traffic.
type RateLimitStore struct {
	client   *redis.Client
	scope    string
	max      int64
	window   time.Duration
	fallback middleware.RateLimiterStore
	log      zerolog.Logger
	now      func() time.Time
}

// NewRateLimitStore creates a store that allows max requests per identifier
// within each window. A nil client means in-process limiting only.
func NewRateLimitStore(client *redis.Client, scope string, max int, window time.Duration, log zerolog.Logger) *RateLimitStore {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitStore{
		client: client,
		scope:  scope,
		max:    int64(max),
		window: window,
		fallback: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(max) / window.Seconds()),
			Burst:     max,
			ExpiresIn: 2 * window,
		}),
		log: log,
		now: time.Now,
	}
}

// Allow implements middleware.RateLimiterStore.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	if s.client == nil {
		return s.fallback.Allow(identifier)
	}

	ctx, cancel := context.WithTimeout(context.Background(), rateLimitOpTimeout)
	defer cancel()

	n, err := s.incr(ctx, identifier)
	if err != nil {
		s.log.Warn().Err(err).Str("scope", s.scope).Msg("rate limit store unavailable, using in-process limiter")
		return s.fallback.Allow(identifier)
	}
	return n <= s.max, nil
}

func (s *RateLimitStore) incr(ctx context.Context, identifier string) (int64, error) {
	key := s.key(identifier, s.now())

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	return incr.Val(), nil
}

func (s *RateLimitStore) key(identifier string, now time.Time) string {
	start := now.Truncate(s.window).Unix()
	return fmt.Sprintf("ratelimit:%s:%s:%d", s.scope, identifier, start)
}
