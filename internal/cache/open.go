package cache

import (
	"log/slog"

	"reviewhub/internal/config"
)

// Open prefers Redis. Without it, the server falls back to the in-process
// LRU; the CLI passes localFallback=false since a cache that dies with the
// process is useless to it. CACHE_TTL=0 turns caching off on every backend.
// The returned func releases the connection.
func Open(cfg *config.Config, logger *slog.Logger, localFallback bool) (StatsCache, func()) {
	if cfg.CacheTTLDuration() <= 0 {
		logger.Info("stats_cache_disabled", "cache_ttl", cfg.CacheTTL)
		return NopStatsCache{}, func() {}
	}
	if cfg.RedisURL != "" {
		rc, err := NewRedisStatsCache(cfg.RedisURL, cfg.RedisPassword, cfg.CacheTTLDuration(), logger)
		if err == nil {
			logger.Info("stats_cache_ready", "backend", "redis")
			return rc, func() { _ = rc.Close() }
		}
		logger.Warn("redis_unavailable", "error", err, "local_fallback", localFallback)
	}
	if !localFallback {
		return NopStatsCache{}, func() {}
	}

	lc, err := NewLocalStatsCache(cfg.LocalCacheSize, cfg.CacheTTLDuration())
	if err != nil {
		logger.Warn("local_cache_init_failed", "error", err)
		return NopStatsCache{}, func() {}
	}
	logger.Info("stats_cache_ready", "backend", "local", "size", cfg.LocalCacheSize)
	return lc, func() {}
}
