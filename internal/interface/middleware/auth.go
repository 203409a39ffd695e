package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-landing-pages/internal/application"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/response"
)

var errNoSession = errors.New("session not found")

// Auth validates the access token and requires its Redis session to be live.
// On success userID, userName and userEmail are set on the Gin context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := accessClaims(c, jwt)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, err.Error(), nil)
			c.Abort()
			return
		}
		if err := loadSession(c, rdb, claims); err != nil {
			response.Error[any](c, http.StatusUnauthorized, err.Error(), nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth behaves like Auth but lets anonymous requests through, so the
// public site can show unpublished pages to signed-in editors.
func OptionalAuth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := accessClaims(c, jwt); err == nil {
			_ = loadSession(c, rdb, claims)
		}
		c.Next()
	}
}

func loadSession(c *gin.Context, rdb *redis.Client, claims *helpers.Claims) error {
	if rdb == nil {
		c.Set(CtxUserIDKey, claims.UserID)
		return nil
	}
	data, err := rdb.HGetAll(c.Request.Context(), application.SessionKey(claims.UserID)).Result()
	if err != nil || len(data) == 0 {
		return errNoSession
	}
	if sid := data["sid"]; sid != "" && sid != claims.SessionID {
		return errNoSession
	}
	c.Set(CtxUserIDKey, data["user_id"])
	c.Set("userName", data["name"])
	c.Set("userEmail", data["email"])
	return nil
}
