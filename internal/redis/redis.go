package redis

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient holds the Redis client connection; nil when the cache is
// unavailable and the dashboard runs cacheless
var redisClient *redis.Client

// Init initializes the Redis connection. Unlike a datastore this is only a
// session cache, so failure degrades to cacheless operation instead of
// aborting startup.
func Init(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("No Redis URL configured, running without result cache")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Failed to parse Redis URL, running without result cache: %v", err)
		return nil
	}

	client := redis.NewClient(opts)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err = client.Ping(ctx).Result(); err != nil {
		log.Printf("Failed to connect to Redis, running without result cache: %v", err)
		return nil
	}

	log.Println("Successfully connected to Redis")
	redisClient = client

	return client
}

// Available reports whether the cache can be used
func Available() bool {
	return redisClient != nil
}

// GetClient returns the global Redis client connection
func GetClient() *redis.Client {
	return redisClient
}

// Close closes the Redis client connection
func Close() error {
	if redisClient != nil {
		log.Println("Closing Redis connection...")
		return redisClient.Close()
	}
	return nil
}

// HashSet sets a hash field to value in Redis
func HashSet(key, field string, value interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return redisClient.HSet(ctx, key, field, value).Err()
}

// HashGetAll gets all fields and values of a hash
func HashGetAll(key string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return redisClient.HGetAll(ctx, key).Result()
}

// Expire sets a TTL on a key
func Expire(key string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return redisClient.Expire(ctx, key, ttl).Err()
}

// Delete removes a key from Redis
func Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return redisClient.Del(ctx, key).Err()
}
