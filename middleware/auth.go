package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"omnix/pkg/config"
	"omnix/pkg/response"
	tokenstore "omnix/pkg/token"
)

const (
	ContextUserIDKey = "current_user_id"
	ContextJTIKey    = "current_jti"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token has been revoked")
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing authorization header", "Unauthorized")
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.AbortError(c, http.StatusUnauthorized, "invalid authorization header", "Unauthorized")
			return
		}

		uid, jti, err := ParseToken(parts[1])
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, err.Error(), "Unauthorized")
			return
		}

		c.Set(ContextUserIDKey, uid)
		c.Set(ContextJTIKey, jti)
		c.Next()
	}
}

// ParseToken validates a bearer token and returns the user id and jti.
// Shared with the websocket handler, which authenticates via query param.
func ParseToken(tokenStr string) (uint, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// only accept HMAC signing
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}

	jti, _ := claims["jti"].(string)
	if tokenstore.IsRevoked(jti) {
		return 0, "", ErrRevokedToken
	}

	// subject (user id); the jwt lib may parse numeric subjects as float64
	var uidStr string
	if sub, ok := claims["sub"].(string); ok {
		uidStr = sub
	} else if subf, ok := claims["sub"].(float64); ok {
		uidStr = strconv.Itoa(int(subf))
	}
	uid, err := strconv.Atoi(uidStr)
	if err != nil || uid <= 0 {
		return 0, "", ErrInvalidToken
	}
	return uint(uid), jti, nil
}

// UserID returns the authenticated user id set by AuthMiddleware.
func UserID(c *gin.Context) uint {
	v, _ := c.Get(ContextUserIDKey)
	uid, _ := v.(uint)
	return uid
}
