package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Farid841/rara/internal/middleware"
)

type RouterDeps struct {
	Models          *ModelHandler
	Chat            *ChatHandler
	RateLimitWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	limited := api.Group("")
	limited.Use(middleware.RateLimit(deps.RateLimitWindow))
	limited.POST("/models", deps.Models.Create)
	limited.POST("/chat", deps.Chat.Ask)

	api.GET("/models", deps.Models.List)
	api.GET("/chat/:session_id", deps.Chat.History)
}
