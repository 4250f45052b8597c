package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if err := Rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to set redis key")
	}
}

// Get returns the value and whether the key existed.
func Get(ctx context.Context, key string) (string, bool) {
	val, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Error().Err(err).Str("key", key).Msg("failed to get redis key")
		}
		return "", false
	}
	return val, true
}

func Del(ctx context.Context, keys ...string) {
	if err := Rdb.Del(ctx, keys...).Err(); err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("failed to delete redis keys")
	}
}

// SetNX stores the value only if the key is absent; reports whether it
// was stored.
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) bool {
	ok, err := Rdb.SetNX(ctx, key, value, expiration).Result()
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to setnx redis key")
		return false
	}
	return ok
}
