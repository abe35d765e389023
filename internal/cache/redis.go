package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reviewhub/internal/microservices/http-api/models"

	"github.com/redis/go-redis/v9"
)

type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStatsCache connects and pings; redisURL is a redis:// URL
func NewRedisStatsCache(redisURL, password string, ttl time.Duration, logger *slog.Logger) (*RedisStatsCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 500 * time.Millisecond
	opts.WriteTimeout = 500 * time.Millisecond

	rdb := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStatsCache{client: rdb, ttl: ttl, logger: logger}, nil
}

func (c *RedisStatsCache) Get(ctx context.Context, target models.TargetRef) (*models.ReviewStats, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, statsKey(target)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("stats_cache_get_failed", "target", target.String(), "error", err)
		}
		return nil, false
	}

	var stats models.ReviewStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.logger.Warn("stats_cache_decode_failed", "target", target.String(), "error", err)
		return nil, false
	}
	return &stats, true
}

// Generation reads the target's counter; a missing key is generation 0
func (c *RedisStatsCache) Generation(ctx context.Context, target models.TargetRef) (uint64, bool) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return 0, false
	}
	gen, err := c.client.Get(ctx, generationKey(target)).Uint64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("stats_cache_generation_failed", "target", target.String(), "error", err)
		return 0, false
	}
	return gen, true
}

// Set writes under WATCH on the generation key, so an Invalidate landing
// between the check and the write aborts the transaction.
func (c *RedisStatsCache) Set(ctx context.Context, stats *models.ReviewStats, gen uint64) {
	if c == nil || c.client == nil || stats == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	genKey := generationKey(stats.Target)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, statsKey(stats.Target), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil, errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
	default:
		c.logger.Warn("stats_cache_set_failed", "target", stats.Target.String(), "error", err)
	}
}

var errStaleFill = errors.New("stats generation moved")

// Invalidate bumps the generation and drops the entry in one MULTI. The
// generation key has no expiry: resetting it could readmit a stale fill.
func (c *RedisStatsCache) Invalidate(ctx context.Context, target models.TargetRef) {
	if c == nil || c.client == nil {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(target))
		pipe.Del(ctx, statsKey(target))
		return nil
	})
	if err != nil {
		c.logger.Warn("stats_cache_invalidate_failed", "target", target.String(), "error", err)
	}
}

func (c *RedisStatsCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
