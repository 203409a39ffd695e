package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/event"
	repo "github.com/oksasatya/go-ddd-landing-pages/internal/domain/repository"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/i18n"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/metrics"
)

var (
	ErrPageNotFound = errors.New("page not found")
	ErrPageLocked   = errors.New("page is checked out by another user")
)

// PageEventPrefix names page lifecycle events on the bus, e.g. "page.post_save".
const PageEventPrefix = "page"

// PageOnDisplay is dispatched with a *DisplayEvent before a public page renders,
// letting listeners rewrite its content.
const PageOnDisplay = "page.on_display"

// DisplayEvent carries the content about to be rendered for Page.
type DisplayEvent struct {
	Page    *entity.Page
	Content string
}

// HitRequest describes the request behind a page hit.
type HitRequest struct {
	VisitorID string
	IPAddress string
	URL       string
	Referer   string
	UserAgent string
	Language  string
}

// PageModel is the lifecycle model for landing pages plus the page-specific
// operations used by the public site and dashboard.
type PageModel struct {
	*Model[*entity.Page]
	Pages  repo.PageRepository
	Hits   repo.HitRepository
	Bus    event.Bus
	Logger *logrus.Logger
}

func NewPageModel(pages repo.PageRepository, hits repo.HitRepository, bus event.Bus, tr i18n.Translator, logger *logrus.Logger, batchSize int) *PageModel {
	m := NewModel[*entity.Page](pages, pages, NewBusDispatcher[*entity.Page](bus, PageEventPrefix), tr, logger)
	m.Forms = PageFormBuilder{}
	if batchSize > 0 {
		m.BatchSize = batchSize
	}
	return &PageModel{Model: m, Pages: pages, Hits: hits, Bus: bus, Logger: logger}
}

// GenerateURL returns the canonical public path of p.
func (m *PageModel) GenerateURL(p *entity.Page) string {
	return "/p/" + strconv.FormatInt(p.ID, 10) + ":" + p.Alias
}

// NormalizeAlias derives the alias from the title when it is empty and
// slugs it otherwise.
func (m *PageModel) NormalizeAlias(p *entity.Page) {
	if p.Alias == "" {
		p.Alias = Slugify(p.Title)
		return
	}
	p.Alias = Slugify(p.Alias)
}

// CanView reports whether the actor may see p in its current state. Anyone
// may see a published page in a published category; unpublished ones need a
// signed-in user.
func (m *PageModel) CanView(ctx context.Context, p *entity.Page) bool {
	if p.IsVisibleAt(m.now()) && p.CategoryPublished() {
		return true
	}
	return ActorFromContext(ctx).HasIdentity()
}

// TranslationGroup returns the parent of p's translation group and its
// children. grouped is false when p has neither.
func (m *PageModel) TranslationGroup(ctx context.Context, p *entity.Page) (parent *entity.Page, children []*entity.Page, grouped bool, err error) {
	parent = p
	if p.IsTranslated() {
		found, ok, gErr := m.GetEntity(ctx, *p.TranslationParentID)
		if gErr != nil {
			return nil, nil, false, gErr
		}
		if ok {
			parent = found
		}
	}
	children, err = m.Pages.TranslationChildren(ctx, parent.ID)
	if err != nil {
		return nil, nil, false, err
	}
	return parent, children, parent != p || len(children) > 0, nil
}

// PreferredTranslation returns the page of p's group the visitor should see.
// It returns p itself when no other page matches better.
func (m *PageModel) PreferredTranslation(parent *entity.Page, children []*entity.Page, acceptLanguage string) (*entity.Page, bool) {
	options := make([]TranslationOption, 0, len(children)+1)
	byID := make(map[int64]*entity.Page, len(children)+1)
	options = append(options, TranslationOption{PageID: parent.ID, Language: parent.Language})
	byID[parent.ID] = parent
	for _, c := range children {
		options = append(options, TranslationOption{PageID: c.ID, Language: c.Language})
		byID[c.ID] = c
	}
	id, ok := PreferredTranslation(acceptLanguage, options)
	if !ok {
		return nil, false
	}
	return byID[id], true
}

// RenderContent gives page.on_display listeners a chance to rewrite content.
func (m *PageModel) RenderContent(ctx context.Context, p *entity.Page) (string, error) {
	if m.Bus == nil || !m.Bus.HasListeners(PageOnDisplay) {
		return p.Content, nil
	}
	ev := &DisplayEvent{Page: p, Content: p.Content}
	if err := m.Bus.Dispatch(ctx, PageOnDisplay, ev); err != nil {
		return "", err
	}
	return ev.Content, nil
}

// HitPage records a hit for p (nil for the tracking pixel) with the response
// code the visitor got. Only 200s count towards the page's hit total.
func (m *PageModel) HitPage(ctx context.Context, p *entity.Page, req HitRequest, code int) error {
	h := &entity.Hit{
		VisitorID: req.VisitorID,
		IPAddress: req.IPAddress,
		URL:       req.URL,
		Referer:   req.Referer,
		UserAgent: req.UserAgent,
		Language:  req.Language,
		Code:      code,
		DateHit:   m.now(),
	}
	if p != nil && p.ID != 0 {
		id := p.ID
		h.PageID = &id
	}
	metrics.PageHits.WithLabelValues(strconv.Itoa(code)).Inc()
	if err := m.Hits.Record(ctx, h); err != nil {
		return err
	}
	if h.PageID != nil && code == 200 {
		return m.Pages.IncrementHits(ctx, *h.PageID)
	}
	return nil
}

// CountViewingVisitors counts distinct visitors seen within window.
func (m *PageModel) CountViewingVisitors(ctx context.Context, window time.Duration) (int, error) {
	return m.Hits.CountVisitors(ctx, m.now().Add(-window))
}

// PageFormBuilder builds the page edit form.
type PageFormBuilder struct{}

func (PageFormBuilder) Build(p *entity.Page, action string, opts FormOptions) (*Form, error) {
	method := "POST"
	if p.ID != 0 {
		method = "PUT"
	}
	var parentID any
	if p.TranslationParentID != nil {
		parentID = *p.TranslationParentID
	}
	var categoryID any
	if p.Category != nil {
		categoryID = p.Category.ID
	}
	templates, _ := opts["templates"].([]string)
	return &Form{
		Name:   "page",
		Action: action,
		Method: method,
		Fields: []FormField{
			{Name: "title", Type: "text", Label: "Title", Required: true, Value: p.Title},
			{Name: "alias", Type: "text", Label: "Alias", Value: p.Alias},
			{Name: "content", Type: "html", Label: "Content", Value: p.Content},
			{Name: "template", Type: "choice", Label: "Template", Required: true, Value: p.Template, Choices: templates},
			{Name: "language", Type: "locale", Label: "Language", Required: true, Value: p.Language},
			{Name: "translation_parent_id", Type: "page", Label: "Translation of", Value: parentID},
			{Name: "category_id", Type: "category", Label: "Category", Value: categoryID},
			{Name: "is_published", Type: "yesno", Label: "Published", Value: p.IsPublished},
			{Name: "publish_up", Type: "datetime", Label: "Publish at", Value: p.PublishUp},
			{Name: "publish_down", Type: "datetime", Label: "Unpublish at", Value: p.PublishDown},
		},
	}, nil
}
