package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-landing-pages/internal/interface/middleware"
)

// MetricsModule exposes the Prometheus registry at /metrics. Private-range
// scrapers bypass the per-IP limit.
type MetricsModule struct {
	Redis *redis.Client
}

func NewMetricsModule(rdb *redis.Client) *MetricsModule { return &MetricsModule{Redis: rdb} }

func (m *MetricsModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, middleware.Limit{Name: "metrics", Max: 120, Window: time.Minute, Key: middleware.KeyByIP(), Allow: middleware.AllowPrivateIP()})
	rg.GET("/metrics", rl, gin.WrapH(promhttp.Handler()))
}
