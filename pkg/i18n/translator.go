// Package i18n resolves message keys to localized strings.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator looks up key for tag and substitutes params (e.g. "%entityName%").
type Translator interface {
	Trans(tag language.Tag, key string, params map[string]string) string
}

// Catalog is a Translator backed by an x/text message catalog.
type Catalog struct {
	builder   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
}

// NewCatalog builds a catalog from messages keyed by locale then message key.
// The first supported tag is the fallback.
func NewCatalog(supported []language.Tag, messages map[string]map[string]string) (*Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(supported[0]))
	for locale, msgs := range messages {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, err
		}
		for key, msg := range msgs {
			// params use %name% placeholders; keep them out of printf.
			if err := b.SetString(tag, key, strings.ReplaceAll(msg, "%", "%%")); err != nil {
				return nil, err
			}
		}
	}
	return &Catalog{
		builder:   b,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}, nil
}

// Default returns the catalog of built-in messages.
func Default(supported []language.Tag) *Catalog {
	if len(supported) == 0 {
		supported = []language.Tag{language.English}
	}
	c, err := NewCatalog(supported, builtinMessages)
	if err != nil {
		panic(err)
	}
	return c
}

// Match picks the best supported tag for tag.
func (c *Catalog) Match(tag language.Tag) language.Tag {
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return c.supported[0]
	}
	return c.supported[idx]
}

func (c *Catalog) Trans(tag language.Tag, key string, params map[string]string) string {
	p := message.NewPrinter(c.Match(tag), message.Catalog(c.builder))
	out := p.Sprintf(key)
	if len(params) == 0 {
		return out
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(out)
}

// ParseTags parses a comma-separated locale list, skipping invalid entries.
func ParseTags(list string) []language.Tag {
	var tags []language.Tag
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if tag, err := language.Parse(part); err == nil {
			tags = append(tags, tag)
		}
	}
	return tags
}
