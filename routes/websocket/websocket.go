package websocket

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"omnix/controllers"
	"omnix/middleware"
)

func Register(r *gin.Engine, db *gorm.DB) {
	r.GET("/ws/chat", middleware.RateLimit(), controllers.ChatWS(db))
}
