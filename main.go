package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"omnix/middleware"
	"omnix/models"
	"omnix/pkg/cache"
	"omnix/pkg/config"
	"omnix/routes"
)

func main() {
	// config init via package init()

	db, err := gorm.Open(mysql.Open(config.DatabaseDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// auto-migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.UserMessage{},
		&models.AssistantMessage{},
	); err != nil {
		log.Fatalf("failed migrate: %v", err)
	}

	// apply runtime tunables from config
	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
		config.UserConcurrencyLimit,
	)
	middleware.SetDuplicateTTL(time.Duration(config.DuplicateWindowSeconds) * time.Second)
	cache.SetMaxItems(config.ListCacheMaxItems)

	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
