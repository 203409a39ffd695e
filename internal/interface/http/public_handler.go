package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-landing-pages/internal/application"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/internal/infrastructure/theme"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/i18n"
)

const (
	visitorTTL = 2 * 365 * 24 * time.Hour
	// redirectFlagTTL bounds how long a visitor is left on the translation
	// they landed on before language redirection applies again.
	redirectFlagTTL = 24 * time.Hour
)

// trackingGIF is a transparent 1x1 GIF.
var trackingGIF = []byte{
	71, 73, 70, 56, 57, 97, 1, 0, 1, 0, 128, 255, 0, 192, 192, 192, 0, 0, 0, 33,
	249, 4, 1, 0, 0, 0, 0, 44, 0, 0, 0, 0, 1, 0, 1, 0, 0, 2, 2, 68, 1, 0, 59,
}

// ThemeLoader resolves a page's template.
type ThemeLoader interface {
	Load(name string) (*theme.Theme, error)
}

// PublicHandler serves landing pages and the tracking pixel to visitors.
type PublicHandler struct {
	Pages      *application.PageModel
	Themes     ThemeLoader
	Redis      *redis.Client
	Cookies    *helpers.Manager
	Translator i18n.Translator
	Logger     *logrus.Logger
}

func NewPublicHandler(pages *application.PageModel, themes ThemeLoader, rdb *redis.Client, cookies *helpers.Manager, tr i18n.Translator, logger *logrus.Logger) *PublicHandler {
	return &PublicHandler{Pages: pages, Themes: themes, Redis: rdb, Cookies: cookies, Translator: tr, Logger: logger}
}

// visitorID returns the visitor cookie, issuing one on first visit.
func (h *PublicHandler) visitorID(c *gin.Context) string {
	if id, err := c.Cookie(helpers.VisitorCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	if h.Cookies != nil {
		h.Cookies.SetVisitorID(c, id, time.Now().Add(visitorTTL))
	}
	return id
}

func (h *PublicHandler) hitRequest(c *gin.Context, visitor string) application.HitRequest {
	ip := c.GetString("real_ip")
	if ip == "" {
		ip = c.ClientIP()
	}
	return application.HitRequest{
		VisitorID: visitor,
		IPAddress: ip,
		URL:       c.Request.URL.String(),
		Referer:   c.Request.Referer(),
		UserAgent: c.Request.UserAgent(),
		Language:  c.GetHeader("Accept-Language"),
	}
}

// hit records a page hit; failures are logged and never change the response.
func (h *PublicHandler) hit(c *gin.Context, p *entity.Page, req application.HitRequest, code int) {
	if err := h.Pages.HitPage(c.Request.Context(), p, req, code); err != nil {
		h.Logger.WithError(err).WithField("code", code).Warn("record page hit failed")
	}
}

func (h *PublicHandler) trans(c *gin.Context, key string) string {
	if h.Translator == nil {
		return key
	}
	return h.Translator.Trans(application.ActorFromContext(c.Request.Context()).Locale, key, nil)
}

func (h *PublicHandler) fail(c *gin.Context, status int, key string) {
	c.Header("Cache-Control", "no-store")
	c.Data(status, "text/plain; charset=utf-8", []byte(h.trans(c, key)))
}

// Show serves /p/:slug1[/:slug2[/:slug3]].
func (h *PublicHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()
	visitor := h.visitorID(c)
	hreq := h.hitRequest(c, visitor)

	p, ok, err := h.Pages.GetEntityBySlugs(ctx, c.Param("slug1"), c.Param("slug2"), c.Param("slug3"))
	if err != nil {
		h.Logger.WithError(err).Error("resolve page slugs failed")
		c.Status(http.StatusInternalServerError)
		return
	}
	if !ok {
		h.hit(c, nil, hreq, http.StatusNotFound)
		h.fail(c, http.StatusNotFound, i18n.KeyURLError404)
		return
	}

	if !h.Pages.CanView(ctx, p) {
		h.hit(c, p, hreq, http.StatusUnauthorized)
		h.fail(c, http.StatusUnauthorized, i18n.KeyURLError401)
		return
	}

	canonical := h.Pages.GenerateURL(p)
	if c.Request.URL.Path != canonical {
		h.hit(c, p, hreq, http.StatusMovedPermanently)
		target := canonical
		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}
		c.Redirect(http.StatusMovedPermanently, target)
		return
	}

	if target, ok := h.translationRedirect(c, p, visitor); ok {
		h.hit(c, p, hreq, http.StatusFound)
		c.Redirect(http.StatusFound, target)
		return
	}

	th, err := h.Themes.Load(p.Template)
	if err != nil {
		if !errors.Is(err, theme.ErrNotFound) {
			h.Logger.WithError(err).WithField("template", p.Template).Error("load template failed")
		}
		h.fail(c, http.StatusNotFound, i18n.KeyTemplateNotFound)
		return
	}

	content, err := h.Pages.RenderContent(ctx, p)
	if err != nil {
		h.Logger.WithError(err).WithField("page_id", p.ID).Error("page display listener failed")
		c.Status(http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := th.Render(&buf, theme.View{Title: p.Title, Language: p.Language, Content: template.HTML(content)}); err != nil {
		h.Logger.WithError(err).WithField("page_id", p.ID).Error("render page failed")
		c.Status(http.StatusInternalServerError)
		return
	}
	h.hit(c, p, hreq, http.StatusOK)
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// translationRedirect returns the URL of the visitor's preferred translation
// of p. Each translation group redirects a visitor at most once per flag TTL.
func (h *PublicHandler) translationRedirect(c *gin.Context, p *entity.Page, visitor string) (string, bool) {
	ctx := c.Request.Context()
	parent, children, grouped, err := h.Pages.TranslationGroup(ctx, p)
	if err != nil {
		h.Logger.WithError(err).WithField("page_id", p.ID).Warn("load translation group failed")
		return "", false
	}
	if !grouped {
		return "", false
	}
	if h.Redis != nil {
		key := "page:donotredirect:" + visitor + ":" + strconv.FormatInt(parent.ID, 10)
		first, err := helpers.RedisMarkOnce(ctx, h.Redis, key, redirectFlagTTL)
		if err != nil {
			h.Logger.WithError(err).WithField("key", key).Warn("redis redirect flag failed")
			return "", false
		}
		if !first {
			return "", false
		}
	}
	preferred, ok := h.Pages.PreferredTranslation(parent, children, c.GetHeader("Accept-Language"))
	if !ok || preferred.ID == p.ID {
		return "", false
	}
	return h.Pages.GenerateURL(preferred), true
}

// TrackingImage serves /mtracking.gif and records an anonymous hit.
func (h *PublicHandler) TrackingImage(c *gin.Context) {
	visitor := h.visitorID(c)
	c.Header("Content-Encoding", "none")
	if c.Request.Method == http.MethodGet {
		c.Header("Cache-Control", "private, no-cache, no-cache=Set-Cookie, proxy-revalidate")
		c.Header("Expires", "Wed, 11 Jan 2000 12:59:00 GMT")
		c.Header("Last-Modified", "Wed, 11 Jan 2006 12:59:00 GMT")
		c.Header("Pragma", "no-cache")
		c.Data(http.StatusOK, "image/gif", trackingGIF)
	} else {
		c.Data(http.StatusOK, "text/plain", []byte(" "))
	}
	h.hit(c, nil, h.hitRequest(c, visitor), http.StatusOK)
}
