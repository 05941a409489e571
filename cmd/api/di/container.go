package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"users-api/cmd/api/infrastructure"
	"users-api/internal/adapter/db/postgres"
	ginhandler "users-api/internal/adapter/gin/handler"
	grpcadapter "users-api/internal/adapter/grpc"
	"users-api/internal/adapter/ratelimit"
	"users-api/internal/config"
	"users-api/internal/usecase/user"
	redisclient "users-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	DB             *gorm.DB
	RedisClient    *redisclient.Client
	UserRepo       *postgres.UserRepoPG
	UserUC         user.Usecase
	RateLimiter    *ratelimit.Limiter
	UserHandler    *ginhandler.UserHandler
	HealthHandler  *ginhandler.HealthHandler
	HealthReporter *grpcadapter.HealthReporter
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize database
	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c := &Container{Config: cfg, Logger: l, DB: db}

	if cfg.DB.AutoMigrate {
		if err := infrastructure.RunMigrations(ctx, db, cfg.DB.Seed, l); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize Redis client
	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	c.RedisClient = rdb

	// Initialize repository
	acquireTimeout := time.Duration(cfg.DB.AcquireTimeout) * time.Second
	c.UserRepo = postgres.NewUserRepoPG(db, acquireTimeout, l)

	// Initialize use case
	c.UserUC = user.New(c.UserRepo, l)

	// Initialize rate limiter
	limiterConfig := ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstCapacity:     cfg.RateLimit.BurstCapacity,
		Enabled:           cfg.RateLimit.Enabled,
	}
	if rdb != nil {
		c.RateLimiter = ratelimit.New(rdb.Client, limiterConfig, l)
	} else {
		c.RateLimiter = ratelimit.New(nil, limiterConfig, l)
	}

	// Initialize handlers
	c.UserHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.HealthHandler = ginhandler.NewHealthHandler(c.UserRepo, cfg.Logger.ServiceName, l)
	if rdb != nil {
		c.HealthHandler.WithRedis(rdb)
	}
	c.HealthReporter = grpcadapter.NewHealthReporter(
		c.UserRepo,
		time.Duration(cfg.App.HealthIntervalSeconds)*time.Second,
		l,
	)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
