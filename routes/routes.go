package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"omnix/middleware"

	authRoutes "omnix/routes/auth"
	chatRoutes "omnix/routes/chat"
	convRoutes "omnix/routes/conversation"
	websocketRoutes "omnix/routes/websocket"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "omnix streaming chat backend running"})
	})

	websocketRoutes.Register(r, db)
	authRoutes.RegisterPublic(r, db)

	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	authRoutes.RegisterProtected(protected, db)
	chatRoutes.Register(protected, db)
	convRoutes.Register(protected, db)
}
