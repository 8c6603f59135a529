package utils

import (
	"context"
	"log"
	"time"

	"machly/config"

	"github.com/go-redis/redis/v8"
)

// AuthCacheClient is the dedicated client for the auth token denylist.
var AuthCacheClient *redis.Client

// InitAuthCache initializes the Redis client for authorization caching.
func InitAuthCache() {
	AuthCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAuthDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := AuthCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Auth Cache): %v", err)
	}
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

// RevokeToken puts a token hash on the denylist until the token would have
// expired anyway.
func RevokeToken(ctx context.Context, tokenHash string, ttl time.Duration) error {
	return GetAuthCacheClient().Set(ctx, "revoked:"+tokenHash, "1", ttl).Err()
}

// IsTokenRevoked reports whether a token hash is on the denylist.
func IsTokenRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := GetAuthCacheClient().Exists(ctx, "revoked:"+tokenHash).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
