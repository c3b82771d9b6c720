package redis

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Client represents a Redis client.
type Client struct {
	rdb *goredis.Client
}

// Redis returns the underlying go-redis client.
func (c *Client) Redis() *goredis.Client {
	return c.rdb
}

// Close closes the client for graceful shutdown.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// MustNewClient creates a new Redis client.
func MustNewClient() *Client {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		panic("failed to connect to redis: " + err.Error())
	}

	slog.Info("Redis connected", "addr", viper.GetString("redis.addr"))

	return &Client{
		rdb: rdb,
	}
}
