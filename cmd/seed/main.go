package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/oksasatya/go-ddd-landing-pages/config"
	"github.com/oksasatya/go-ddd-landing-pages/internal/application"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/repository"
	"github.com/oksasatya/go-ddd-landing-pages/internal/infrastructure/events"
	pginfra "github.com/oksasatya/go-ddd-landing-pages/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/i18n"
)

var demoPages = []struct {
	Title, Language, Content string
}{
	{"Spring Launch", "en", "<h1>Spring Launch</h1><p>Everything new this season.</p>"},
	{"Lancement de printemps", "fr", "<h1>Lancement de printemps</h1><p>Toutes les nouveautés de la saison.</p>"},
	{"Spring Launch (US)", "en_US", "<h1>Spring Launch</h1><p>Now shipping across the US.</p>"},
	{"Webinar Sign-up", "en", "<h1>Join the webinar</h1>"},
	{"Pricing", "en", "<h1>Pricing</h1>"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{
		DSN:             cfg.PostgresDSN(),
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	email := "admin@example.com"
	password := "password123"
	admin, err := users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		hash, hErr := helpers.HashPassword(password)
		if hErr != nil {
			log.Fatalf("failed to hash password: %v", hErr)
		}
		admin = &entity.User{Email: email, Password: hash, Name: "Admin"}
		err = users.Create(ctx, admin)
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", admin.ID, email, password)

	model := application.NewPageModel(
		pginfra.NewPageStore(pool),
		pginfra.NewHitStore(pool),
		events.NewBus(logger),
		i18n.Default(nil),
		logger,
		cfg.BatchSize,
	)

	ctx = application.WithActor(ctx, application.Actor{User: admin, Locale: language.English})
	ctx = pginfra.WithUnitOfWork(ctx, pginfra.NewUnitOfWork(pool))

	pages := make([]*entity.Page, 0, len(demoPages))
	for _, d := range demoPages {
		p := &entity.Page{Title: d.Title, Language: d.Language, Content: d.Content, Template: "default"}
		p.IsPublished = true
		model.NormalizeAlias(p)
		pages = append(pages, p)
	}
	if err := model.SaveEntities(ctx, pages, true); err != nil {
		log.Fatalf("failed to seed pages: %v", err)
	}

	// Link the translations to the first page now that it has an id.
	parentID := pages[0].ID
	for _, p := range pages[1:3] {
		p.TranslationParentID = &parentID
	}
	if err := model.SaveEntities(ctx, pages[1:3], true); err != nil {
		log.Fatalf("failed to link translations: %v", err)
	}
	for _, p := range pages {
		fmt.Printf("seeded page: id=%d alias=%s language=%s\n", p.ID, p.Alias, p.Language)
	}
}
