package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/arenahub/server/cache"
	"github.com/arenahub/server/config"
	"github.com/arenahub/server/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const UsernameKey = "username"

// Auth validates the Bearer JWT token, checks the session cache, and
// refreshes the account's last_active_at timestamp. Presence is derived
// from that timestamp, so the refresh runs on every authenticated request
// rather than through an explicit heartbeat.
func Auth(sec config.SecurityConfig, c cache.Cache, db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := ParseToken(tokenStr, sec.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// The session entry in the cache is authoritative: it must still
		// exist and name the same user the token claims.
		sessionKey := "session:" + tokenStr
		cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		sessionUser, err := c.Get(cacheCtx, sessionKey)
		if err != nil || sessionUser != claims.Username {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		// Touch last activity (best-effort).
		now := time.Now()
		_ = db.Model(&model.Account{}).
			Where("username = ?", claims.Username).
			Update("last_active_at", now).Error

		ctx.Set(UsernameKey, claims.Username)
		ctx.Next()
	}
}

// GetUsername retrieves the authenticated username from the Gin context.
func GetUsername(c *gin.Context) string {
	if v, exists := c.Get(UsernameKey); exists {
		return v.(string)
	}
	return ""
}
