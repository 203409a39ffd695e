package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-landing-pages/internal/interface/http"
	"github.com/oksasatya/go-ddd-landing-pages/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
)

// PageModule wires the page admin API under /api/pages. Every route needs a
// signed-in editor.
type PageModule struct {
	Handler *handlers.PageHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Locales middleware.LocaleMatcher
}

func NewPageModule(h *handlers.PageHandler, jwt *helpers.JWTManager, rdb *redis.Client, locales middleware.LocaleMatcher) *PageModule {
	return &PageModule{Handler: h, JWT: jwt, Redis: rdb, Locales: locales}
}

func (m *PageModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/pages")
	g.Use(
		middleware.Auth(m.Redis, m.JWT),
		middleware.RateLimit(m.Redis, middleware.Limit{Name: "pages", Max: 300, Window: time.Minute, Key: middleware.KeyByUserID()}),
		middleware.Actor(m.Locales),
	)
	g.GET("", m.Handler.List)
	g.GET("/search", m.Handler.SearchPages)
	g.POST("", m.Handler.Create)
	g.POST("/batch-delete", m.Handler.BatchDelete)
	g.GET("/:id", m.Handler.Get)
	g.PUT("/:id", m.Handler.Update)
	g.DELETE("/:id", m.Handler.Delete)
	g.POST("/:id/toggle", m.Handler.TogglePublish)
	g.GET("/:id/edit", m.Handler.Edit)
	g.POST("/:id/cancel", m.Handler.Cancel)
	g.POST("/:id/contact", m.Handler.Contact)
}
