package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-landing-pages/internal/interface/http"
	"github.com/oksasatya/go-ddd-landing-pages/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
)

// PublicModule serves landing pages and the tracking pixel on the site root.
type PublicModule struct {
	Handler *handlers.PublicHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Locales middleware.LocaleMatcher
}

func NewPublicModule(h *handlers.PublicHandler, jwt *helpers.JWTManager, rdb *redis.Client, locales middleware.LocaleMatcher) *PublicModule {
	return &PublicModule{Handler: h, JWT: jwt, Redis: rdb, Locales: locales}
}

func (m *PublicModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/")
	g.Use(
		middleware.RateLimit(m.Redis, middleware.Limit{Name: "public", Max: 600, Window: time.Minute, Key: middleware.KeyByVisitor()}),
		middleware.OptionalAuth(m.Redis, m.JWT),
		middleware.Actor(m.Locales),
	)
	g.GET("/p/:slug1", m.Handler.Show)
	g.GET("/p/:slug1/:slug2", m.Handler.Show)
	g.GET("/p/:slug1/:slug2/:slug3", m.Handler.Show)
	g.Any("/mtracking.gif", m.Handler.TrackingImage)
}
