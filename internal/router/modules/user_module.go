package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-landing-pages/internal/interface/http"
	"github.com/oksasatya/go-ddd-landing-pages/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
)

// UserModule wires editor sign-in routes.
// Public: POST /api/login, POST /api/refresh
// Protected: POST /api/logout, GET /api/profile
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Locales middleware.LocaleMatcher
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client, locales middleware.LocaleMatcher) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb, Locales: locales}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.Redis, middleware.Limit{Name: "login", Max: 10, Window: time.Minute, Key: middleware.KeyByIP()})
	refreshLimiter := middleware.RateLimit(m.Redis, middleware.Limit{Name: "refresh", Max: 60, Window: time.Minute, Key: middleware.KeyByIP()})

	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(
		middleware.RateLimit(m.Redis, middleware.Limit{Name: "account", Max: 120, Window: time.Minute, Key: middleware.KeyByUserID()}),
		middleware.Actor(m.Locales),
	)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
	}
}
