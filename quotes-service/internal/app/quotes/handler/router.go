package handler

import (
	"net/http"

	"spectre/pkg/logger"
	"spectre/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const serviceName = "quotes-service"

// SetupRoutes настраивает маршруты Quotes Service.
// Отправка заявки публичная, остальное только для сотрудников.
func SetupRoutes(quoteHandler *QuoteHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"https://*", "http://*"},
		AllowWildcard: true,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders: []string{logger.RequestIDHeader},
		MaxAge:        300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})
	router.GET("/metrics", metrics.Handler())

	router.POST("/quotes", quoteHandler.SubmitQuote)

	quotes := router.Group("/quotes")
	quotes.Use(authMiddleware.RequireStaff())
	{
		quotes.GET("", quoteHandler.ListQuotes)
		quotes.GET("/:id", quoteHandler.GetQuote)
		quotes.PUT("/:id/items", quoteHandler.UpdateItems)
		quotes.GET("/:id/totals", quoteHandler.GetTotals)
		quotes.POST("/:id/send", quoteHandler.SendQuote)
		quotes.DELETE("/:id", quoteHandler.DeleteQuote)
	}

	return router
}
