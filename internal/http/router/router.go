package router

import (
	"github.com/gin-gonic/gin"

	"deckforge.app/wizard/internal/http/handler"
	"deckforge.app/wizard/internal/service"
)

type RouterConfig struct {
	DashboardURL string
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	wizardHandler := handler.NewWizardHandler(services.Wizard())

	v1 := router.Group("/api/v1")
	{
		WizardRouter(v1.Group("/sessions"), wizardHandler)
		DeckRouter(v1.Group("/decks"), wizardHandler)
	}
}
