package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-landing-pages/config"
	"github.com/oksasatya/go-ddd-landing-pages/internal/infrastructure/events"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/i18n"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager *helpers.JWTManager

	mailQueue    *helpers.RabbitPublisher
	lifecyclePub *helpers.RabbitPublisher
	esClient     *elasticsearch.Client

	bus     *events.Bus
	catalog *i18n.Catalog
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetMailQueue(p *helpers.RabbitPublisher)    { mailQueue = p }
func GetMailQueue() *helpers.RabbitPublisher     { return mailQueue }
func SetLifecyclePub(p *helpers.RabbitPublisher) { lifecyclePub = p }
func GetLifecyclePub() *helpers.RabbitPublisher  { return lifecyclePub }
func SetES(c *elasticsearch.Client)              { esClient = c }
func GetES() *elasticsearch.Client               { return esClient }

// Bus is created lazily so modules and listeners registered in any order
// share one instance.
func GetBus() *events.Bus {
	if bus == nil {
		bus = events.NewBus(logger)
	}
	return bus
}

func SetCatalog(c *i18n.Catalog) { catalog = c }
func GetCatalog() *i18n.Catalog {
	if catalog == nil {
		catalog = i18n.Default(nil)
	}
	return catalog
}
