package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/studyowl/studyowl-backend/internal/logger"
	"github.com/studyowl/studyowl-backend/internal/utils"
)

// Store is the minimal key/value surface the answer cache needs. A nil
// *Client satisfies it with no-ops so the cache can run without redis.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	ScanPrefix(ctx context.Context, prefix string, limit int) ([]string, error)
}

type Client struct {
	rdb *goredis.Client
	log *logger.Logger
}

func NewClient(log *logger.Logger) (*Client, error) {
	clientLog := log.With("service", "RedisClient")

	host := utils.GetEnv("REDIS_HOST", "localhost", clientLog)
	port := utils.GetEnv("REDIS_PORT", "6379", clientLog)
	password := utils.GetEnv("REDIS_PASSWORD", "", clientLog)
	db := utils.GetEnvAsInt("REDIS_DB", 0, clientLog)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	clientLog.Info("Connected to redis", "addr", fmt.Sprintf("%s:%s", host, port), "db", db)
	return &Client{rdb: rdb, log: clientLog}, nil
}

func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	if c == nil || c.rdb == nil {
		return "", false, nil
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *Client) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// ScanPrefix returns up to limit keys matching prefix*. limit <= 0 means
// no cap.
func (c *Client) ScanPrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	var keys []string
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if limit > 0 && len(keys) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
