package router

import (
	"context"
	"net/http"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	r.GET("/health", healthHandler(deps.Health))

	listHandler := handler.NewListHandler(deps)
	creditHandler := handler.NewCreditHandler(deps)

	v1 := r.Group("/api/v1")
	v1.Use(AuthMiddleware(deps.JWTSecret, deps.Logger))
	{
		lists := v1.Group("/lists")
		{
			lists.POST("/upload", listHandler.Upload)
			lists.POST("/verify-bulk", listHandler.VerifyBulk)
			lists.GET("/status", listHandler.Status)
			lists.GET("/bulk-status", listHandler.BulkStatus)
			lists.POST("/verify-single", listHandler.VerifySingle)
			lists.POST("/move-to-folder", listHandler.MoveToFolder)

			lists.GET("", listHandler.List)
			lists.DELETE("", listHandler.Delete)
			lists.GET("/:jobId", listHandler.Get)
			lists.GET("/:jobId/download", listHandler.Download)
		}

		credits := v1.Group("/credits")
		{
			credits.GET("/balance", creditHandler.Balance)
			credits.GET("/history", creditHandler.History)
		}
	}

	return r
}

func healthHandler(checker handler.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := checker.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": "email-verifier-api",
					"error":   err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "email-verifier-api",
		})
	}
}
