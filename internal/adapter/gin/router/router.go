package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"users-api/api"
	"users-api/internal/adapter/gin/handler"
	"users-api/internal/adapter/gin/middleware"
	"users-api/internal/adapter/ratelimit"
)

const swaggerDocPath = "/users.swagger.json"

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
	limiter *ratelimit.Limiter,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	router.GET("/health", healthHandler.Health)

	// Swagger UI plus the embedded OpenAPI document
	swaggerUI := httpSwagger.Handler(httpSwagger.URL("/swagger" + swaggerDocPath))
	router.GET("/swagger/*any", func(c *gin.Context) {
		if c.Param("any") == swaggerDocPath {
			c.Data(http.StatusOK, "application/json", api.SwaggerJSON)
			return
		}
		swaggerUI.ServeHTTP(c.Writer, c.Request)
	})

	users := router.Group("/users")
	users.Use(middleware.RateLimiter(limiter, log))
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
	}

	return router
}
