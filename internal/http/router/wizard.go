package router

import (
	"github.com/gin-gonic/gin"

	"deckforge.app/wizard/internal/http/handler"
)

// WizardRouter wires the session lifecycle and interview endpoints.
func WizardRouter(rg *gin.RouterGroup, h *handler.WizardHandler) {
	rg.POST("", h.Start)
	rg.GET("/resume", h.Resume)

	session := rg.Group("/:id")
	{
		session.GET("", h.Get)
		session.PATCH("", h.Update)
		session.POST("/advance", h.Advance)
		session.POST("/back", h.Back)
		session.POST("/goto/:step", h.GoToStep)
		session.PUT("/answers/:questionId", h.Answer)
		session.POST("/answers/:questionId/skip", h.Skip)
		session.GET("/readiness", h.Readiness)
		session.POST("/generate", h.Generate)
	}
}

// DeckRouter exposes deck status polling.
func DeckRouter(rg *gin.RouterGroup, h *handler.WizardHandler) {
	rg.GET("/:id", h.DeckStatus)
}
