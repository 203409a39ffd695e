package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
)

// PageRepository stores landing pages.
type PageRepository interface {
	Repository[*entity.Page]
	EntityGetter[*entity.Page]
	Session[*entity.Page]

	// TranslationChildren lists pages whose translation parent is parentID.
	TranslationChildren(ctx context.Context, parentID int64) ([]*entity.Page, error)
	IncrementHits(ctx context.Context, pageID int64) error
}

// HitRepository stores page hits.
type HitRepository interface {
	Record(ctx context.Context, h *entity.Hit) error
	// CountVisitors counts distinct visitors with a hit at or after since.
	CountVisitors(ctx context.Context, since time.Time) (int, error)
}
