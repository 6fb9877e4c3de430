package chat

import (
	"github.com/amverse/amverse/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// Register routes for the chat module. Every route is gated on a valid
// session.
func RegisterRoutes(g *gin.RouterGroup) {
	group := g.Group("/chat")
	group.Use(middleware.SessionGuard(GetService().sessions))

	group.GET("", GetState)                // Current transcript and chat list
	group.POST("/messages", PostMessage)   // Submit a chat message
	group.POST("/advice", PostAdvice)      // Issue a canned advice topic
	group.POST("/cancel", CancelPending)   // Cancel the in-flight query
	group.POST("/new", NewChat)            // Start an unsaved new chat
	group.POST("/select", SelectChat)      // Open a saved chat
	group.DELETE("/:id", DeleteChat)       // Delete a saved chat
	group.GET("/export", ExportTranscript) // Download the transcript as text
}
