package conversation

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"omnix/controllers"
)

// Register registers conversation routes (protected)
func Register(g *gin.RouterGroup, db *gorm.DB) {
	g.GET("/conversation", controllers.ListConversations(db))
	g.GET("/conversation/:conversation_id", controllers.GetConversation(db))
	g.DELETE("/conversation/:conversation_id", controllers.DeleteConversation(db))
	g.POST("/conversation/title", controllers.RenameConversation(db))
}
