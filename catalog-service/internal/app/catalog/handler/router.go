package handler

import (
	"net/http"

	"spectre/pkg/logger"
	"spectre/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const serviceName = "catalog-service"

// SetupRoutes настраивает маршруты Catalog Service.
// Чтение каталога публичное, запись только для admin/editor.
func SetupRoutes(categoryHandler *CategoryHandler, productHandler *ProductHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	// Витрина открывается из браузера
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

	staff := []gin.HandlerFunc{authMiddleware.Authenticate(), authMiddleware.RequireRole(RoleAdmin, RoleEditor)}
	adminOnly := []gin.HandlerFunc{authMiddleware.Authenticate(), authMiddleware.RequireRole(RoleAdmin)}

	categories := router.Group("/categories")
	{
		categories.GET("", categoryHandler.ListCategories)
		categories.GET("/:id", categoryHandler.GetCategory)

		categories.POST("", append(staff, categoryHandler.CreateCategory)...)
		categories.PUT("/:id", append(staff, categoryHandler.UpdateCategory)...)
		categories.DELETE("/:id", append(adminOnly, categoryHandler.DeleteCategory)...)
	}

	products := router.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/:id", productHandler.GetProduct)

		products.POST("", append(staff, productHandler.CreateProduct)...)
		products.POST("/import", append(staff, productHandler.ImportProducts)...)
		products.PUT("/:id", append(staff, productHandler.UpdateProduct)...)
		products.DELETE("/:id", append(staff, productHandler.DeleteProduct)...)
		products.POST("/:id/images", append(staff, productHandler.AddImage)...)
	}

	admin := router.Group("/admin")
	admin.Use(staff...)
	{
		admin.GET("/products", productHandler.ListAdminProducts)
	}

	return router
}
