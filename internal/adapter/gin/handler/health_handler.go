package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"users-api/pkg/logger"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker is satisfied by the Redis client backing the rate limiter
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// HealthHandler serves the liveness/readiness endpoint
type HealthHandler struct {
	db      Pinger
	redis   HealthChecker
	service string
	log     *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, service string, log *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, service: service, log: log}
}

// WithRedis adds a "redis" field to the health body. Redis being down does not
// fail the check since the rate limiter fails open.
func (h *HealthHandler) WithRedis(r HealthChecker) *HealthHandler {
	h.redis = r
	return h
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	body := gin.H{
		"status":   "healthy",
		"service":  h.service,
		"database": "up",
	}
	status := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		log.Warn("health check failed", zap.Error(err))
		body["status"] = "unhealthy"
		body["database"] = "down"
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		body["redis"] = "up"
		if err := h.redis.Healthy(ctx); err != nil {
			log.Warn("redis health check failed", zap.Error(err))
			body["redis"] = "down"
		}
	}

	c.JSON(status, body)
}
