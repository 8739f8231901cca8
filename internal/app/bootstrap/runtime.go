package bootstrap

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/aika-health/internal/accounts"
	appconfig "github.com/wolfman30/aika-health/internal/config"
	"github.com/wolfman30/aika-health/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRevoker stores logged-out token ids in Redis when available, otherwise in memory.
func BuildRevoker(redisClient *redis.Client, logger *logging.Logger) accounts.Revoker {
	if redisClient == nil {
		if logger != nil {
			logger.Warn("redis not configured; token revocation is per-process")
		}
		return accounts.NewMemoryRevoker()
	}
	return accounts.NewRedisRevoker(redisClient)
}
