package entity

import "time"

// Category groups pages; an unpublished category hides its pages.
type Category struct {
	ID          int64
	Title       string
	IsPublished bool
}

// Page is a landing page. Pages sharing a translation parent form a
// translation group; the parent itself is the group's default language.
type Page struct {
	ID                  int64
	Title               string
	Alias               string
	Content             string
	Template            string
	Language            string
	TranslationParentID *int64
	Category            *Category
	Hits                int64

	// DeletedID is set after a delete, once the store has cleared ID.
	DeletedID int64

	AuditFields
	CheckoutFields
	PublishFields
}

func (p *Page) GetID() int64          { return p.ID }
func (p *Page) GetName() string       { return p.Title }
func (p *Page) SetDeletedID(id int64) { p.DeletedID = id }

// CategoryPublished is true when the page has no category.
func (p *Page) CategoryPublished() bool {
	return p.Category == nil || p.Category.IsPublished
}

// IsTranslated reports whether the page belongs to a translation group as a child.
func (p *Page) IsTranslated() bool {
	return p.TranslationParentID != nil && *p.TranslationParentID != 0
}

// Hit records one public request for a page or the tracking pixel.
type Hit struct {
	ID        int64
	PageID    *int64
	VisitorID string
	IPAddress string
	URL       string
	Referer   string
	UserAgent string
	Language  string
	Code      int
	DateHit   time.Time
}
