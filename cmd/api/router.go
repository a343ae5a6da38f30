package api

import (
	"net/http"

	"gemini-task-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	// Health check (no auth required)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Everything under /api needs a verified bearer token
	api := r.Group("/api")
	api.Use(delivery.AuthMiddleware(h.verifier))
	{
		api.POST("/generate", h.relayHandler.Generate)
		api.POST("/chat", h.chatHandler.Chat)
		api.POST("/suggest", h.chatHandler.Suggest)
		api.POST("/rank", h.chatHandler.Rank)

		tasks := api.Group("/tasks")
		{
			tasks.GET("", h.taskHandler.GetTasks)
			tasks.PUT("", h.taskHandler.ReplaceTasks)
			tasks.POST("", h.taskHandler.CreateTask)
			tasks.PUT("/:id", h.taskHandler.UpdateTask)
			tasks.DELETE("/:id", h.taskHandler.DeleteTask)
			tasks.PATCH("/:id/status", h.taskHandler.UpdateTaskStatus)
			tasks.POST("/:id/priority", h.taskHandler.AdjustPriority)
		}

		settings := api.Group("/settings")
		{
			settings.GET("/prompt", h.settingsHandler.GetPrompt)
			settings.PUT("/prompt", h.settingsHandler.UpdatePrompt)

			// process-wide provider settings, development only
			if h.config.IsDevelopment() {
				settings.GET("/ai", h.aiSettings.GetAISettings)
				settings.PUT("/ai", h.aiSettings.UpdateAISettings)
				settings.POST("/ai/test", h.aiSettings.TestOllamaConnection)
			}
		}
	}
}
