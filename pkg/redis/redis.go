package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

// Config holds Redis connection configuration.
type Config struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		MaxRetries:   c.MaxRetries,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConn,
		DialTimeout:  connectTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolTimeout:  2 * time.Second,
	}
}

// Client is the go-redis client backing the HTTP rate limiter.
type Client struct {
	*redis.Client
	log *zap.Logger
}

// NewClient dials Redis and fails unless it answers a ping within ctx or the
// connect timeout, whichever is sooner.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(cfg.options())

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}

	log.Info("redis connected",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
		zap.Int("pool_size", cfg.PoolSize),
	)

	return Wrap(rdb, log), nil
}

// Wrap adopts an existing go-redis client, e.g. one pointed at miniredis.
func Wrap(rdb *redis.Client, log *zap.Logger) *Client {
	return &Client{Client: rdb, log: log}
}

// Healthy reports whether Redis answers a ping.
func (c *Client) Healthy(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	c.log.Info("closing redis connection")
	return c.Client.Close()
}
