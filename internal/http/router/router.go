package router

import (
	"github.com/gin-gonic/gin"

	"crewdesk.app/core/internal/http/handler"
	"crewdesk.app/core/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	realtimeHandler := handler.NewRealtimeHandler(services.Authz())
	RealtimeRouter(router.Group("/realtime"), realtimeHandler)
}

func RealtimeRouter(rg *gin.RouterGroup, h *handler.RealtimeHandler) {
	rg.POST("/auth", h.Authorize)
}
