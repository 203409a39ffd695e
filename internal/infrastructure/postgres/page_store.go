package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/repository"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/i18n"
)

const (
	defaultListLimit = 30
	maxListLimit     = 100
)

const pageSelect = `
	SELECT p.id, p.title, p.alias, p.content, p.template, p.language, p.translation_parent_id,
	       p.category_id, c.title, c.is_published, p.hits,
	       p.is_published, p.publish_up, p.publish_down,
	       p.date_added, p.created_by::text, p.date_modified, p.modified_by::text,
	       p.checked_out, p.checked_out_by::text, cu.name
	FROM pages p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN users cu ON cu.id = p.checked_out_by
`

const pageSelectBare = `
	SELECT p.id, p.title, p.alias, p.content, p.template, p.language, p.translation_parent_id,
	       p.category_id, NULL::text, NULL::boolean, p.hits,
	       p.is_published, p.publish_up, p.publish_down,
	       p.date_added, p.created_by::text, p.date_modified, p.modified_by::text,
	       p.checked_out, p.checked_out_by::text, NULL::text
	FROM pages p
`

// PageStore is the Postgres page repository. Writes go through the request's
// UnitOfWork when one is attached to the context and commit immediately
// otherwise.
type PageStore struct {
	pool *pgxpool.Pool
}

func NewPageStore(pool *pgxpool.Pool) *PageStore {
	return &PageStore{pool: pool}
}

func userRef(id *string, name *string) *entity.User {
	if id == nil || *id == "" {
		return nil
	}
	u := &entity.User{ID: *id}
	if name != nil {
		u.Name = *name
	}
	return u
}

func userID(u *entity.User) *string {
	if !u.HasIdentity() {
		return nil
	}
	return &u.ID
}

func scanPage(row pgx.Row, p *entity.Page) error {
	var (
		categoryID    *int64
		categoryTitle *string
		categoryPub   *bool
		createdBy     *string
		modifiedBy    *string
		checkedOutBy  *string
		checkedByName *string
		fresh         entity.Page
	)
	err := row.Scan(
		&fresh.ID, &fresh.Title, &fresh.Alias, &fresh.Content, &fresh.Template, &fresh.Language, &fresh.TranslationParentID,
		&categoryID, &categoryTitle, &categoryPub, &fresh.Hits,
		&fresh.IsPublished, &fresh.PublishUp, &fresh.PublishDown,
		&fresh.DateAdded, &createdBy, &fresh.DateModified, &modifiedBy,
		&fresh.CheckedOut, &checkedOutBy, &checkedByName,
	)
	if err != nil {
		return err
	}
	if categoryID != nil {
		fresh.Category = &entity.Category{ID: *categoryID, IsPublished: true}
		if categoryTitle != nil {
			fresh.Category.Title = *categoryTitle
		}
		if categoryPub != nil {
			fresh.Category.IsPublished = *categoryPub
		}
	}
	fresh.CreatedBy = userRef(createdBy, nil)
	fresh.ModifiedBy = userRef(modifiedBy, nil)
	fresh.CheckedOutBy = userRef(checkedOutBy, checkedByName)
	*p = fresh
	return nil
}

func (s *PageStore) queryOne(ctx context.Context, query string, id int64) (*entity.Page, error) {
	p := &entity.Page{}
	if err := scanPage(s.pool.QueryRow(ctx, query+" WHERE p.id = $1", id), p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return p, nil
}

// FindByID loads the page row without its joins.
func (s *PageStore) FindByID(ctx context.Context, id int64) (*entity.Page, error) {
	return s.queryOne(ctx, pageSelectBare, id)
}

// GetEntity loads the page with its category and lock holder.
func (s *PageStore) GetEntity(ctx context.Context, id int64) (*entity.Page, error) {
	return s.queryOne(ctx, pageSelect, id)
}

var pageOrderColumns = map[string]string{
	"id":            "p.id",
	"title":         "p.title",
	"alias":         "p.alias",
	"language":      "p.language",
	"hits":          "p.hits",
	"date_added":    "p.date_added",
	"date_modified": "p.date_modified",
}

// GetEntities lists pages. The filter is a title/alias search, or the
// localized "is:mine" command which restricts to pages the actor created.
func (s *PageStore) GetEntities(ctx context.Context, args repository.ListArgs) (repository.ListResult[*entity.Page], error) {
	var (
		where  []string
		params []any
	)
	if filter := strings.TrimSpace(args.Filter); filter != "" {
		if isMineCommand(args, filter) {
			if args.Actor.HasIdentity() {
				params = append(params, args.Actor.ID)
				where = append(where, fmt.Sprintf("p.created_by = $%d::text::uuid", len(params)))
			}
		} else {
			params = append(params, "%"+filter+"%")
			where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.alias ILIKE $%d)", len(params), len(params)))
		}
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM pages p"+whereSQL, params...).Scan(&total); err != nil {
		return repository.ListResult[*entity.Page]{}, fmt.Errorf("failed to count pages: %w", err)
	}

	order, ok := pageOrderColumns[args.OrderBy]
	if !ok {
		order = "p.id"
	}
	dir := "ASC"
	if strings.EqualFold(args.OrderByDir, "desc") {
		dir = "DESC"
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	start := args.Start
	if start < 0 {
		start = 0
	}
	params = append(params, limit, start)
	query := fmt.Sprintf("%s%s ORDER BY %s %s LIMIT $%d OFFSET $%d", pageSelect, whereSQL, order, dir, len(params)-1, len(params))

	rows, err := s.pool.Query(ctx, query, params...)
	if err != nil {
		return repository.ListResult[*entity.Page]{}, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	items := make([]*entity.Page, 0, limit)
	for rows.Next() {
		p := &entity.Page{}
		if err := scanPage(rows, p); err != nil {
			return repository.ListResult[*entity.Page]{}, fmt.Errorf("failed to scan page: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return repository.ListResult[*entity.Page]{}, fmt.Errorf("failed to list pages: %w", err)
	}
	return repository.ListResult[*entity.Page]{Items: items, Total: total, Start: start, Limit: limit}, nil
}

func isMineCommand(args repository.ListArgs, filter string) bool {
	if strings.EqualFold(filter, "is:mine") {
		return true
	}
	if args.Translator == nil {
		return false
	}
	return strings.EqualFold(filter, args.Translator.Trans(args.Locale, i18n.KeySearchCommandIsMine, nil))
}

func (s *PageStore) TranslationChildren(ctx context.Context, parentID int64) ([]*entity.Page, error) {
	rows, err := s.pool.Query(ctx, pageSelect+" WHERE p.translation_parent_id = $1 ORDER BY p.id", parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	defer rows.Close()
	var out []*entity.Page
	for rows.Next() {
		p := &entity.Page{}
		if err := scanPage(rows, p); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PageStore) IncrementHits(ctx context.Context, pageID int64) error {
	if _, err := s.pool.Exec(ctx, `UPDATE pages SET hits = hits + 1 WHERE id = $1`, pageID); err != nil {
		return fmt.Errorf("failed to increment hits: %w", err)
	}
	return nil
}

// write queues op on the request's unit of work, or runs it in its own
// transaction when the context carries none.
func (s *PageStore) write(ctx context.Context, key any, op func(ctx context.Context, tx pgx.Tx) error) error {
	if u, ok := UnitOfWorkFrom(ctx); ok {
		u.enqueue(key, op)
		return nil
	}
	u := NewUnitOfWork(s.pool)
	u.enqueue(key, op)
	return u.Flush(ctx)
}

func (s *PageStore) Persist(ctx context.Context, p *entity.Page) error {
	return s.write(ctx, p, func(ctx context.Context, tx pgx.Tx) error {
		return upsertPage(ctx, tx, p)
	})
}

func (s *PageStore) Flush(ctx context.Context) error {
	if u, ok := UnitOfWorkFrom(ctx); ok {
		return u.Flush(ctx)
	}
	return nil
}

// Refresh discards queued writes for p and reloads it.
func (s *PageStore) Refresh(ctx context.Context, p *entity.Page) error {
	if u, ok := UnitOfWorkFrom(ctx); ok {
		u.discard(p)
	}
	if p.ID == 0 {
		return repository.ErrNotFound
	}
	if err := scanPage(s.pool.QueryRow(ctx, pageSelect+" WHERE p.id = $1", p.ID), p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to refresh page: %w", err)
	}
	return nil
}

func (s *PageStore) SaveEntity(ctx context.Context, p *entity.Page, flush bool) error {
	if err := s.Persist(ctx, p); err != nil {
		return err
	}
	if flush {
		return s.Flush(ctx)
	}
	return nil
}

// DeleteEntity removes p; ID is cleared once the delete has run.
func (s *PageStore) DeleteEntity(ctx context.Context, p *entity.Page, flush bool) error {
	id := p.ID
	err := s.write(ctx, p, func(ctx context.Context, tx pgx.Tx) error {
		if id == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete page %d: %w", id, err)
		}
		p.ID = 0
		return nil
	})
	if err != nil {
		return err
	}
	if flush {
		return s.Flush(ctx)
	}
	return nil
}

func categoryID(p *entity.Page) *int64 {
	if p.Category == nil || p.Category.ID == 0 {
		return nil
	}
	return &p.Category.ID
}

func upsertPage(ctx context.Context, tx pgx.Tx, p *entity.Page) error {
	args := []any{
		p.Title, p.Alias, p.Content, p.Template, p.Language, p.TranslationParentID, categoryID(p),
		p.IsPublished, p.PublishUp, p.PublishDown,
		p.DateAdded, userID(p.CreatedBy), p.DateModified, userID(p.ModifiedBy),
		p.CheckedOut, userID(p.CheckedOutBy),
	}
	if p.ID == 0 {
		err := tx.QueryRow(ctx, `
			INSERT INTO pages (title, alias, content, template, language, translation_parent_id, category_id,
			                   is_published, publish_up, publish_down,
			                   date_added, created_by, date_modified, modified_by,
			                   checked_out, checked_out_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::text::uuid, $13, $14::text::uuid, $15, $16::text::uuid)
			RETURNING id
		`, args...).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("failed to insert page: %w", err)
		}
		return nil
	}
	args = append(args, p.ID)
	if _, err := tx.Exec(ctx, `
		UPDATE pages
		SET title = $1, alias = $2, content = $3, template = $4, language = $5, translation_parent_id = $6, category_id = $7,
		    is_published = $8, publish_up = $9, publish_down = $10,
		    date_added = $11, created_by = $12::text::uuid, date_modified = $13, modified_by = $14::text::uuid,
		    checked_out = $15, checked_out_by = $16::text::uuid
		WHERE id = $17
	`, args...); err != nil {
		return fmt.Errorf("failed to update page %d: %w", p.ID, err)
	}
	return nil
}

var _ repository.PageRepository = (*PageStore)(nil)
