package api

import (
	"product-extractor/internal/types"
	"product-extractor/metrics"

	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(config *types.Config, handler *Handler, m *metrics.Registry) *gin.Engine {
	if config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(CORSMiddleware(config.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/extract", handler.Extract)
		v1.POST("/extract/batch", handler.ExtractBatch)

		selectors := v1.Group("/selectors")
		{
			selectors.GET("", handler.Selectors)
			selectors.POST("/refresh", handler.RefreshSelectors)
		}
	}

	return router
}
