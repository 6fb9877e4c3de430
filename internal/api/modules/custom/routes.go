package custom

import (
	"github.com/amverse/amverse/internal/api/middleware"
	"github.com/ethanbaker/api/pkg/api_key"
	"github.com/gin-gonic/gin"
)

// Register routes for the customization module. Every route is gated on
// a valid session.
func RegisterRoutes(g *gin.RouterGroup) {
	service := GetService()

	group := g.Group("/custom")
	group.Use(middleware.SessionGuard(service.sessions))

	group.GET("", GetState)              // Current transcript and prompt template
	group.POST("/messages", PostMessage) // Submit a chat message
	group.PUT("/template", PutTemplate)  // Save the prompt template
	group.POST("/reset", ResetHistory)   // Clear the visible transcript

	// Uploads can additionally be gated behind an API key so ingestion
	// is only reachable by operator-approved clients
	uploadHandlers := []gin.HandlerFunc{}
	if service.ingestKey != "" {
		uploadHandlers = append(uploadHandlers, api_key.APIKeyHeaderHandler(func(key string) bool {
			return key == service.ingestKey
		}))
	}
	uploadHandlers = append(uploadHandlers, Upload)
	group.POST("/upload", uploadHandlers...) // Upload a document for ingestion
}
