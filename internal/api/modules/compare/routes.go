package compare

import (
	"github.com/amverse/amverse/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// Register routes for the comparison module. Every route is gated on a
// valid session.
func RegisterRoutes(g *gin.RouterGroup) {
	group := g.Group("/compare")
	group.Use(middleware.SessionGuard(GetService().sessions))

	group.GET("", GetState)              // Both comparison transcripts
	group.POST("/messages", PostMessage) // Submit a message to both sides
	group.POST("/cancel", CancelPending) // Cancel the in-flight queries
}
