package lib

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

func TokenKey(userID string) string {
	return fmt.Sprintf("%s:token", userID)
}

// StoreToken records the active session token for a user. A later login replaces it.
func StoreToken(ctx context.Context, rd *redis.Client, userID, token string, ttl time.Duration) error {
	if rd == nil {
		return errors.New("redis client is not configured")
	}
	return rd.Set(ctx, TokenKey(userID), token, ttl).Err()
}

// TokenIsActive reports whether token is the session currently stored for userID.
func TokenIsActive(ctx context.Context, rd *redis.Client, userID, token string) (bool, error) {
	if rd == nil {
		return false, errors.New("redis client is not configured")
	}
	val, err := rd.Get(ctx, TokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == token, nil
}

func RevokeToken(ctx context.Context, rd *redis.Client, userID string) error {
	if rd == nil {
		return errors.New("redis client is not configured")
	}
	return rd.Del(ctx, TokenKey(userID)).Err()
}
