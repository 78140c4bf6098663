package chat

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"omnix/controllers"
	"omnix/middleware"
)

// Register registers the streaming chat endpoint (protected).
func Register(g *gin.RouterGroup, db *gorm.DB) {
	g.POST("/chat", middleware.RateLimit(), controllers.ChatStream(db))
}
