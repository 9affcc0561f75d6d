// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"vltava/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient holds in-flight booking sessions.
	SessionCacheClient *redis.Client
	// DedupeCacheClient records processed draft ids for idempotent replay.
	DedupeCacheClient *redis.Client
)

// InitSessionCache initializes the Redis client used for booking sessions.
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := SessionCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Sessions): %v", err)
	}
}

// GetSessionCacheClient returns the session cache client.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}

// InitDedupeCache initializes the Redis client for submission dedupe keys.
func InitDedupeCache() {
	DedupeCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDedupeDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := DedupeCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Dedupe): %v", err)
	}
}

// GetDedupeCacheClient returns the dedupe cache client.
func GetDedupeCacheClient() *redis.Client {
	if DedupeCacheClient == nil {
		InitDedupeCache()
	}
	return DedupeCacheClient
}
