package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

const (
	// ContextKeyUser is the key for the session user in gin context
	ContextKeyUser = "user"
)

// AuthMiddleware validates JWT tokens and sets the session user in context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			if err == ErrExpiredToken {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyUser, claims.User())
		c.Next()
	}
}

// RequireOwner middleware checks that the session user is an owner
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetUser(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if !user.IsOwner() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Owner access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUser returns the session user from the gin context
func GetUser(c *gin.Context) (models.User, bool) {
	v, exists := c.Get(ContextKeyUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// GetUserID returns the session user's id from the gin context
func GetUserID(c *gin.Context) (string, bool) {
	user, ok := GetUser(c)
	if !ok {
		return "", false
	}
	return user.ID, true
}
