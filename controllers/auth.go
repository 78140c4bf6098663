package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"omnix/middleware"
	"omnix/models"
	"omnix/pkg/config"
	"omnix/pkg/response"
	tokenstore "omnix/pkg/token"
	utils "omnix/pkg/utills"
)

// Register handler
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Username string `json:"username" binding:"required,max=50"`
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		email := strings.TrimSpace(strings.ToLower(body.Email))
		username := strings.TrimSpace(body.Username)

		// password must carry at least one letter and one number
		if !utils.HasLetter(body.Password) || !utils.HasNumber(body.Password) {
			response.BadRequest(c, "password must contain at least one letter and one number")
			return
		}

		var exists models.User
		if err := db.Where("email = ? OR username = ?", email, username).First(&exists).Error; err == nil {
			response.BadRequest(c, "username or email already exists")
			return
		} else if err != gorm.ErrRecordNotFound {
			response.Internal(c, "db error")
			return
		}

		user := models.User{Email: email, Username: username}
		if err := user.SetPassword(body.Password); err != nil {
			response.Internal(c, "failed to set password")
			return
		}
		if err := db.Create(&user).Error; err != nil {
			response.Internal(c, "failed to create user")
			return
		}

		response.Created(c, gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		}, "User registered successfully")
	}
}

// Login handler. Issues a JWT with a 1 day expiry.
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Username string `json:"username" binding:"required,max=50"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		var user models.User
		if err := db.Where("username = ?", strings.TrimSpace(body.Username)).First(&user).Error; err != nil {
			response.Unauthorized(c, "invalid username or password")
			return
		}
		if !user.CheckPassword(body.Password) {
			response.Unauthorized(c, "invalid username or password")
			return
		}

		jti := uuid.NewString()
		claims := jwt.MapClaims{
			"sub": strconv.Itoa(int(user.ID)),
			"exp": time.Now().Add(24 * time.Hour).Unix(),
			"jti": jti,
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenStr, err := token.SignedString([]byte(config.JWTSecret))
		if err != nil {
			response.Internal(c, "failed to create token")
			return
		}

		response.SuccessMessage(c, gin.H{
			"accessToken": tokenStr,
			"username":    user.Username,
		}, "Login successful")
	}
}

// CurrentUser returns the authenticated user's profile.
func CurrentUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		var user models.User
		if err := db.First(&user, uid).Error; err != nil {
			response.Unauthorized(c, "user not found")
			return
		}
		response.Success(c, gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		})
	}
}

// Logout revokes the current token's jti.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		jti, _ := c.Get(middleware.ContextJTIKey)
		if s, ok := jti.(string); ok && s != "" {
			tokenstore.RevokeToken(s)
		}
		response.SuccessMessage(c, nil, "logged out")
	}
}
