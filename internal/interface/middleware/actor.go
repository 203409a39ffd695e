package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/oksasatya/go-ddd-landing-pages/internal/application"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
)

// LocaleMatcher picks the supported locale closest to a requested one.
type LocaleMatcher interface {
	Match(tag language.Tag) language.Tag
}

// Actor puts an application.Actor on the request context. The user comes from
// whatever Auth or OptionalAuth placed on the Gin context; the locale from the
// "lang" query parameter, then Accept-Language, matched against locales.
func Actor(locales LocaleMatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := application.Actor{Locale: requestLocale(c, locales)}
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			a.User = &entity.User{
				ID:    uid,
				Name:  c.GetString("userName"),
				Email: c.GetString("userEmail"),
			}
		}
		c.Request = c.Request.WithContext(application.WithActor(c.Request.Context(), a))
		c.Next()
	}
}

func requestLocale(c *gin.Context, locales LocaleMatcher) language.Tag {
	var requested language.Tag
	if q := c.Query("lang"); q != "" {
		if t, err := language.Parse(q); err == nil {
			requested = t
		}
	}
	if requested == language.Und {
		if tags, _, err := language.ParseAcceptLanguage(c.GetHeader("Accept-Language")); err == nil && len(tags) > 0 {
			requested = tags[0]
		}
	}
	if locales == nil {
		if requested == language.Und {
			return language.English
		}
		return requested
	}
	return locales.Match(requested)
}
