package router

import (
	"context"

	"github.com/oksasatya/go-ddd-landing-pages/internal/application"
	"github.com/oksasatya/go-ddd-landing-pages/internal/container"
	"github.com/oksasatya/go-ddd-landing-pages/internal/infrastructure/events"
	pginfra "github.com/oksasatya/go-ddd-landing-pages/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-landing-pages/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-landing-pages/internal/infrastructure/theme"
	handlers "github.com/oksasatya/go-ddd-landing-pages/internal/interface/http"
	"github.com/oksasatya/go-ddd-landing-pages/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-landing-pages/internal/router/modules"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
)

type PageModuleDeps struct {
	Model     *application.PageModel
	Contact   *application.PageContact
	Index     *search.PageIndex
	Themes    *theme.Store
	Handler   *handlers.PageHandler
	Public    *handlers.PublicHandler
	Dashboard *handlers.DashboardHandler
}

func buildPageDeps(cookies *helpers.Manager) PageModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	model := application.NewPageModel(
		pginfra.NewPageStore(pool),
		pginfra.NewHitStore(pool),
		container.GetBus(),
		container.GetCatalog(),
		logger,
		cfg.BatchSize,
	)
	var queue application.JobQueue
	if q := container.GetMailQueue(); q != nil {
		queue = q
	}
	contact := application.NewPageContact(model, pginfra.NewUserRepository(pool), queue, cfg.PublicBaseURL, logger)
	index := search.NewPageIndex(container.GetES(), cfg.ESPagesIndex, logger)
	themes := theme.NewStore(cfg.TemplatesDir)

	return PageModuleDeps{
		Model:     model,
		Contact:   contact,
		Index:     index,
		Themes:    themes,
		Handler:   handlers.NewPageHandler(model, contact, index, themes, logger),
		Public:    handlers.NewPublicHandler(model, themes, container.GetRedis(), cookies, container.GetCatalog(), logger),
		Dashboard: handlers.NewDashboardHandler(model, cfg.VisitorWindow, logger),
	}
}

func buildUserHandler(cookies *helpers.Manager) *handlers.UserHandler {
	svc := application.NewUserService(
		pginfra.NewUserRepository(container.GetPGPool()),
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
	)
	return handlers.NewUserHandler(svc, container.GetLogger(), cookies)
}

// InitModules builds every module from the container and registers it.
// Call once at startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	rdb := container.GetRedis()
	jwt := container.GetJWT()
	locales := container.GetCatalog()
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	r.Use(middleware.UnitOfWork(container.GetPGPool(), container.GetLogger()))

	pages := buildPageDeps(cookies)
	bus := container.GetBus()
	if err := pages.Index.EnsureIndex(context.Background()); err != nil {
		container.GetLogger().WithError(err).Warn("search index unavailable")
	}
	pages.Index.Register(bus, application.PageEventPrefix)
	if pub := container.GetLifecyclePub(); pub != nil {
		events.NewForwarder(pub, container.GetLogger()).Register(bus, application.PageEventPrefix)
	}

	r.Add(modules.NewUserModule(buildUserHandler(cookies), jwt, rdb, locales))
	r.Add(modules.NewPageModule(pages.Handler, jwt, rdb, locales))
	r.Add(modules.NewDashboardModule(pages.Dashboard, jwt, rdb, locales))
	r.AddSite(modules.NewPublicModule(pages.Public, jwt, rdb, locales))
	if cfg.MetricsEnabled {
		r.AddSite(modules.NewMetricsModule(rdb))
	}
}
