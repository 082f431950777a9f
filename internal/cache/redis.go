package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"chess_rounds/pkg/logger"
)

// RedisCache 以 Redis 實作的快取，多實例部署時共用
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return "", false
	}
	return value, true
}

func (c *RedisCache) Put(ctx context.Context, key string, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn().Err(err).Str("key", iter.Val()).Msg("redis del failed")
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warn().Err(err).Str("prefix", prefix).Msg("redis scan failed")
	}
}
