package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-landing-pages/internal/application"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-landing-pages/internal/domain/repository"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/response"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/validation"
)

// PageSearcher is the full-text page search backing GET /pages/search.
type PageSearcher interface {
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// TemplateLister lists the templates a page may use.
type TemplateLister interface {
	Names() ([]string, error)
}

type PageHandler struct {
	Pages     *application.PageModel
	Contacts  *application.PageContact
	Search    PageSearcher
	Templates TemplateLister
	Logger    *logrus.Logger
}

func NewPageHandler(pages *application.PageModel, contact *application.PageContact, search PageSearcher, templates TemplateLister, logger *logrus.Logger) *PageHandler {
	return &PageHandler{Pages: pages, Contacts: contact, Search: search, Templates: templates, Logger: logger}
}

type pageRequest struct {
	Title               string     `json:"title" binding:"required,max=255"`
	Alias               string     `json:"alias" binding:"omitempty,max=255,alias"`
	Content             string     `json:"content"`
	Template            string     `json:"template" binding:"required"`
	Language            string     `json:"language" binding:"required,locale"`
	TranslationParentID *int64     `json:"translation_parent_id"`
	CategoryID          *int64     `json:"category_id"`
	IsPublished         bool       `json:"is_published"`
	PublishUp           *time.Time `json:"publish_up"`
	PublishDown         *time.Time `json:"publish_down"`
}

type batchDeleteRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1,max=500"`
}

type contactRequest struct {
	Subject string `json:"subject" binding:"omitempty,oneof=locked regarding"`
	Message string `json:"message" binding:"required,max=5000"`
}

func userRef(u *entity.User) any {
	if !u.HasIdentity() {
		return nil
	}
	return gin.H{"id": u.ID, "name": u.Name}
}

func (h *PageHandler) view(c *gin.Context, p *entity.Page) gin.H {
	v := gin.H{
		"id":                    p.ID,
		"title":                 p.Title,
		"alias":                 p.Alias,
		"content":               p.Content,
		"template":              p.Template,
		"language":              p.Language,
		"translation_parent_id": p.TranslationParentID,
		"hits":                  p.Hits,
		"is_published":          p.IsPublished,
		"publish_up":            p.PublishUp,
		"publish_down":          p.PublishDown,
		"publish_status":        p.GetPublishStatus(),
		"date_added":            p.DateAdded,
		"created_by":            userRef(p.CreatedBy),
		"date_modified":         p.DateModified,
		"modified_by":           userRef(p.ModifiedBy),
		"checked_out":           p.CheckedOut,
		"checked_out_by":        userRef(p.CheckedOutBy),
		"locked":                h.Pages.IsLocked(c.Request.Context(), p),
		"url":                   h.Pages.GenerateURL(p),
	}
	if p.Category != nil {
		v["category"] = gin.H{"id": p.Category.ID, "title": p.Category.Title, "is_published": p.Category.IsPublished}
	}
	return v
}

func (r pageRequest) apply(p *entity.Page) {
	p.Title = r.Title
	p.Alias = r.Alias
	p.Content = r.Content
	p.Template = r.Template
	p.Language = r.Language
	p.TranslationParentID = r.TranslationParentID
	p.Category = nil
	if r.CategoryID != nil && *r.CategoryID != 0 {
		p.Category = &entity.Category{ID: *r.CategoryID, IsPublished: true}
	}
	p.IsPublished = r.IsPublished
	p.PublishUp = r.PublishUp
	p.PublishDown = r.PublishDown
}

// load resolves :id, writing a 404 or 500 itself when it returns false.
func (h *PageHandler) load(c *gin.Context) (*entity.Page, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusNotFound, "page not found", nil)
		return nil, false
	}
	p, ok, err := h.Pages.GetEntity(c.Request.Context(), id)
	if err != nil {
		h.Logger.WithError(err).WithField("page_id", id).Error("load page failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to load page", nil)
		return nil, false
	}
	if !ok {
		response.Error[any](c, http.StatusNotFound, "page not found", nil)
		return nil, false
	}
	return p, true
}

func (h *PageHandler) refuseLocked(c *gin.Context, p *entity.Page) bool {
	if !h.Pages.IsLocked(c.Request.Context(), p) {
		return false
	}
	response.Error[any](c, http.StatusConflict, application.ErrPageLocked.Error(), gin.H{
		"checked_out":    p.CheckedOut,
		"checked_out_by": userRef(p.CheckedOutBy),
	})
	return true
}

func (h *PageHandler) List(c *gin.Context) {
	start, _ := strconv.Atoi(c.DefaultQuery("start", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	res, err := h.Pages.GetEntities(c.Request.Context(), repo.ListArgs{
		Start:      start,
		Limit:      limit,
		Filter:     c.Query("filter"),
		OrderBy:    c.Query("orderBy"),
		OrderByDir: c.Query("orderByDir"),
	})
	if err != nil {
		h.Logger.WithError(err).Error("list pages failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list pages", nil)
		return
	}
	items := make([]gin.H, 0, len(res.Items))
	for _, p := range res.Items {
		items = append(items, h.view(c, p))
	}
	response.Success(c, http.StatusOK, items, "pages", response.Page{Total: res.Total, Start: res.Start, Limit: res.Limit})
}

func (h *PageHandler) Get(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, h.view(c, p), "page", nil)
}

func (h *PageHandler) Create(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p := &entity.Page{}
	req.apply(p)
	h.Pages.NormalizeAlias(p)
	if _, err := h.Pages.SaveEntity(c.Request.Context(), p, true); err != nil {
		h.Logger.WithError(err).Error("create page failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to create page", nil)
		return
	}
	response.Success(c, http.StatusCreated, h.view(c, p), "page created", nil)
}

// Update saves the page and releases the caller's lock on it. A page locked
// by someone else is refused with 409.
func (h *PageHandler) Update(c *gin.Context) {
	p, ok := h.load(c)
	if !ok || h.refuseLocked(c, p) {
		return
	}
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	req.apply(p)
	h.Pages.NormalizeAlias(p)
	if _, err := h.Pages.SaveEntity(c.Request.Context(), p, c.Query("keepLock") == ""); err != nil {
		h.Logger.WithError(err).WithField("page_id", p.ID).Error("update page failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update page", nil)
		return
	}
	response.Success(c, http.StatusOK, h.view(c, p), "page updated", nil)
}

func (h *PageHandler) Delete(c *gin.Context) {
	p, ok := h.load(c)
	if !ok || h.refuseLocked(c, p) {
		return
	}
	if err := h.Pages.DeleteEntity(c.Request.Context(), p); err != nil {
		h.Logger.WithError(err).WithField("page_id", p.ID).Error("delete page failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to delete page", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": p.DeletedID}, "page deleted", nil)
}

// BatchDelete deletes the listed pages, reporting ids that matched nothing.
func (h *PageHandler) BatchDelete(c *gin.Context) {
	var req batchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Pages.DeleteEntities(c.Request.Context(), req.IDs)
	if err != nil {
		h.Logger.WithError(err).Error("batch delete pages failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to delete pages", nil)
		return
	}
	deleted := make([]int64, 0, len(res))
	missing := make([]int64, 0)
	for _, id := range req.IDs {
		if res[id] != nil {
			deleted = append(deleted, id)
		} else {
			missing = append(missing, id)
		}
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": deleted, "missing": missing}, "pages deleted", nil)
}

func (h *PageHandler) TogglePublish(c *gin.Context) {
	p, ok := h.load(c)
	if !ok || h.refuseLocked(c, p) {
		return
	}
	if err := h.Pages.TogglePublishStatus(c.Request.Context(), p); err != nil {
		h.Logger.WithError(err).WithField("page_id", p.ID).Error("toggle page failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to toggle page", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": p.ID, "publish_status": p.GetPublishStatus()}, "publish status toggled", nil)
}

// Edit checks the page out to the caller and returns its edit form.
func (h *PageHandler) Edit(c *gin.Context) {
	p, ok := h.load(c)
	if !ok || h.refuseLocked(c, p) {
		return
	}
	ctx := c.Request.Context()
	if err := h.Pages.LockEntity(ctx, p); err != nil {
		h.Logger.WithError(err).WithField("page_id", p.ID).Error("lock page failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to lock page", nil)
		return
	}
	opts := application.FormOptions{}
	if h.Templates != nil {
		if names, err := h.Templates.Names(); err == nil {
			opts["templates"] = names
		}
	}
	form, err := h.Pages.CreateForm(p, "/api/pages/"+strconv.FormatInt(p.ID, 10), opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, application.ErrFormNotFound) {
			status = http.StatusNotImplemented
		}
		response.Error[any](c, status, err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"page": h.view(c, p), "form": form}, "page checked out", nil)
}

// Cancel abandons an edit: unsaved changes are dropped and the lock released.
func (h *PageHandler) Cancel(c *gin.Context) {
	p, ok := h.load(c)
	if !ok || h.refuseLocked(c, p) {
		return
	}
	if err := h.Pages.UnlockEntity(c.Request.Context(), p); err != nil {
		h.Logger.WithError(err).WithField("page_id", p.ID).Error("unlock page failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to unlock page", nil)
		return
	}
	response.Success(c, http.StatusOK, h.view(c, p), "page checked in", nil)
}

// Contact queues an email to the page's creator, or to its lock holder when
// the subject is "locked".
func (h *PageHandler) Contact(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	job, err := h.Contacts.ContactOwner(c.Request.Context(), p, application.ContactRequest{Subject: req.Subject, Message: req.Message})
	if err != nil {
		if errors.Is(err, application.ErrNoContact) {
			response.Error[any](c, http.StatusUnprocessableEntity, err.Error(), nil)
			return
		}
		response.Error[any](c, http.StatusBadGateway, "failed to queue message", nil)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"to": job.To, "subject": job.Subject}, "message queued", nil)
}

func (h *PageHandler) SearchPages(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Search.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Warn("page search failed")
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", nil)
}
