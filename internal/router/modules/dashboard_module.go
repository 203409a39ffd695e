package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-landing-pages/internal/interface/http"
	"github.com/oksasatya/go-ddd-landing-pages/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
)

type DashboardModule struct {
	Handler *handlers.DashboardHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Locales middleware.LocaleMatcher
}

func NewDashboardModule(h *handlers.DashboardHandler, jwt *helpers.JWTManager, rdb *redis.Client, locales middleware.LocaleMatcher) *DashboardModule {
	return &DashboardModule{Handler: h, JWT: jwt, Redis: rdb, Locales: locales}
}

func (m *DashboardModule) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard/viewing-visitors", middleware.Auth(m.Redis, m.JWT), middleware.Actor(m.Locales), m.Handler.ViewingVisitors)
}
