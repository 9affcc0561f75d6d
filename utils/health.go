package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents the current status of the service's external
// collaborators: Mongo (drafts/tours), Redis (sessions, dedupe, replay
// queue) and the active scheduling provider.
type HealthStatus struct {
	Mongo          bool      `json:"mongo"`
	Redis          []bool    `json:"redis"`
	ProviderOnline bool      `json:"providerOnline"`
	CheckedAt      time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// SetProviderOnline records the scheduling provider's reachability. Fed by
// the connectivity watcher rather than probed here.
func SetProviderOnline(online bool) {
	mu.Lock()
	currentHealth.ProviderOnline = online
	mu.Unlock()
}

// StartHealthMonitor performs periodic health checks and updates in-memory state.
func StartHealthMonitor(interval time.Duration, redisClients []*redis.Client, mongoClient *mongo.Client) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		ctx := context.Background()

		for range ticker.C {
			var redisHealth []bool

			for _, client := range redisClients {
				err := client.Ping(ctx).Err()
				redisHealth = append(redisHealth, err == nil)
			}

			mongoHealthy := mongoClient.Ping(ctx, nil) == nil

			mu.Lock()
			currentHealth.Mongo = mongoHealthy
			currentHealth.Redis = redisHealth
			currentHealth.CheckedAt = time.Now()
			mu.Unlock()
		}
	}()
}
