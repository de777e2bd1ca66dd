package client

import (
	"context"
	"fmt"
	"time"

	"servicehub/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisPoolSize = 20

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: redisPoolSize,
	})
}

func PingRedis(ctx context.Context, rdb *redis.Client) error {
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func (c *Client) SetRedis(log *logger.Logger, addr, password string, db int, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	rdb := NewRedisClient(addr, password, db)
	if err := PingRedis(ctx, rdb); err != nil {
		log.Fatal("Failed to connect to Redis", "error", err, "addr", addr)
	}

	log.Info("Successfully connected to Redis", "addr", addr)
	c.Redis = rdb
}
