package repository

import (
	"context"
	"errors"

	"golang.org/x/text/language"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/i18n"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// ListArgs controls a listing. Actor, Locale and Translator are filled in by
// the lifecycle model so stores can apply user- and locale-aware filters.
type ListArgs struct {
	Start      int
	Limit      int
	Filter     string
	OrderBy    string
	OrderByDir string

	Actor      *entity.User
	Locale     language.Tag
	Translator i18n.Translator
}

// ListResult is one page of a listing plus the total match count.
type ListResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Start int `json:"start"`
	Limit int `json:"limit"`
}

// Repository is the storage contract the lifecycle model delegates to.
// flush=false queues the write until the next Session.Flush.
type Repository[T any] interface {
	FindByID(ctx context.Context, id int64) (T, error)
	GetEntities(ctx context.Context, args ListArgs) (ListResult[T], error)
	SaveEntity(ctx context.Context, e T, flush bool) error
	DeleteEntity(ctx context.Context, e T, flush bool) error
}

// EntityGetter is an optional repository capability: a richer single-entity
// lookup (joins, eager loads) preferred over FindByID when present.
type EntityGetter[T any] interface {
	GetEntity(ctx context.Context, id int64) (T, error)
}

// Session is the unit of work behind a repository.
type Session[T any] interface {
	Persist(ctx context.Context, e T) error
	// Flush durably commits everything persisted since the last flush.
	Flush(ctx context.Context) error
	// Refresh drops pending changes for e and reloads it from the store.
	Refresh(ctx context.Context, e T) error
}
