package auth

import "github.com/gin-gonic/gin"

// Register routes for the auth module
func RegisterRoutes(g *gin.RouterGroup) {
	group := g.Group("/auth")

	group.POST("/signup", Signup)
	group.POST("/login", Login)
	group.POST("/logout", Logout)
}
