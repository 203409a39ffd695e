package application

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// TranslationOption is one page of a translation group and its language.
type TranslationOption struct {
	PageID   int64
	Language string
}

// normalizeLang turns "en-us" or "en_US" into "en_US". Values that are not
// BCP 47 tags, such as "*", are returned trimmed.
func normalizeLang(l string) string {
	l = strings.TrimSpace(l)
	if l == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(l, "_", "-"))
	if err != nil {
		return strings.ReplaceAll(l, "-", "_")
	}
	return strings.ReplaceAll(tag.String(), "-", "_")
}

func baseLang(l string) string {
	if i := strings.IndexByte(l, '_'); i >= 0 {
		return l[:i]
	}
	return l
}

// browserLanguages splits an Accept-Language header in header order, with
// quality weights removed.
func browserLanguages(acceptLanguage string) []string {
	var langs []string
	for _, l := range strings.Split(acceptLanguage, ",") {
		if i := strings.Index(l, ";q="); i >= 0 {
			l = l[:i]
		}
		if l = normalizeLang(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

// PreferredTranslation picks the page of a translation group that best
// matches an Accept-Language header. Both sides get a generic fallback for
// each dialect (en for en_US) unless that base language is already listed,
// and the first browser language present among the pages wins.
func PreferredTranslation(acceptLanguage string, options []TranslationOption) (int64, bool) {
	var (
		pageLangs []string
		pageIDs   []int64
	)
	for _, o := range options {
		l := normalizeLang(o.Language)
		if l == "" {
			continue
		}
		pageLangs = append(pageLangs, l)
		pageIDs = append(pageIDs, o.PageID)
		if base := baseLang(l); base != l && !slices.Contains(pageLangs, base) {
			pageLangs = append(pageLangs, base)
			pageIDs = append(pageIDs, o.PageID)
		}
	}

	browser := browserLanguages(acceptLanguage)
	userLangs := make([]string, 0, len(browser))
	for _, l := range browser {
		userLangs = append(userLangs, l)
		if base := baseLang(l); base != l && !slices.Contains(browser, base) && !slices.Contains(userLangs, base) {
			userLangs = append(userLangs, base)
		}
	}

	for _, l := range userLangs {
		if idx := slices.Index(pageLangs, l); idx >= 0 {
			return pageIDs[idx], true
		}
	}
	return 0, false
}
