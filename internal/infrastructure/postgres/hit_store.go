package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/repository"
)

// HitStore writes page hits straight to the pool; hits are not part of the
// editor's unit of work.
type HitStore struct {
	pool *pgxpool.Pool
}

func NewHitStore(pool *pgxpool.Pool) *HitStore {
	return &HitStore{pool: pool}
}

func (s *HitStore) Record(ctx context.Context, h *entity.Hit) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO page_hits (page_id, visitor_id, ip_address, url, referer, user_agent, language, code, date_hit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, h.PageID, h.VisitorID, h.IPAddress, h.URL, h.Referer, h.UserAgent, h.Language, h.Code, h.DateHit).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("failed to record hit: %w", err)
	}
	return nil
}

func (s *HitStore) CountVisitors(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT visitor_id) FROM page_hits WHERE date_hit >= $1 AND visitor_id <> ''
	`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count visitors: %w", err)
	}
	return n, nil
}

var _ repository.HitRepository = (*HitStore)(nil)
