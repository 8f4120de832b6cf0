// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"remindly/config"

	"github.com/go-redis/redis/v8"
)

// RateLimitClient is the dedicated client for outbound rate-limit counters.
var RateLimitClient *redis.Client

// InitRateLimitCache initializes the Redis client for outbound send counters.
func InitRateLimitCache() {
	RateLimitClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisRateDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := RateLimitClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (RateLimit): %v", err)
	}
}

// GetRateLimitClient returns the Redis client for outbound send counters.
func GetRateLimitClient() *redis.Client {
	if RateLimitClient == nil {
		InitRateLimitCache()
	}
	return RateLimitClient
}
