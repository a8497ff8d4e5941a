package handler

import (
	"net/http"

	"spectre/auth-service/internal/app/auth/entity"
	"spectre/pkg/logger"
	"spectre/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const serviceName = "auth-service"

// SetupRoutes настраивает маршруты Auth Service
func SetupRoutes(authHandler *AuthHandler, userHandler *UserHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})
	router.GET("/metrics", metrics.Handler())

	auth := router.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		protected := auth.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.GET("/me", authHandler.Me)
			protected.POST("/logout", authHandler.Logout)
		}
	}

	users := router.Group("/users")
	users.Use(authMiddleware.Authenticate())
	users.Use(authMiddleware.RequireRole(entity.RoleAdmin))
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.PUT("/:id/password", userHandler.ChangePassword)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return router
}
