package auth

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"omnix/controllers"
)

// RegisterPublic registers public auth routes: /api/auth/register, /api/auth/login
func RegisterPublic(r *gin.Engine, db *gorm.DB) {
	r.POST("/api/auth/register", controllers.Register(db))
	r.POST("/api/auth/login", controllers.Login(db))
}

// RegisterProtected registers auth routes that need a valid token
func RegisterProtected(g *gin.RouterGroup, db *gorm.DB) {
	g.GET("/auth/user", controllers.CurrentUser(db))
	g.POST("/auth/logout", controllers.Logout())
}
