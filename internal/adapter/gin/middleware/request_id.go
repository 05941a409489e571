package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"users-api/pkg/logger"
)

// RequestID propagates the X-Request-ID header or generates one, and stores it in
// the request context so every log line of the request carries it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(logger.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Header(logger.RequestIDHeader, requestID)
		c.Next()
	}
}
