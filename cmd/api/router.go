package api

import (
	"net/http"

	"rfp-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Procurement routes, protected when a JWT secret is configured
		rfp := api.Group("/rfp")
		if h.tokenUsecase != nil {
			rfp.Use(delivery.AuthMiddleware(h.tokenUsecase))
		}
		if h.rfpHandler != nil {
			h.rfpHandler.RegisterRoutes(rfp)
		}
		if h.vendorHandler != nil {
			h.vendorHandler.RegisterRoutes(rfp)
		}
		if h.ingestionHandler != nil {
			h.ingestionHandler.RegisterRoutes(rfp)
		}

		// Settings routes
		if h.settingsHandler != nil {
			settings := api.Group("/settings")
			if h.tokenUsecase != nil {
				settings.Use(delivery.AuthMiddleware(h.tokenUsecase))
			}
			{
				settings.GET("/ai", h.settingsHandler.GetAISettings)
				settings.POST("/ai/test", h.settingsHandler.TestAIConnection)
				settings.GET("/integrations", h.settingsHandler.GetIntegrations)
			}
		}
	}
}
