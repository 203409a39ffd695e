package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLang(t *testing.T) {
	assert.Equal(t, "en_US", normalizeLang("en-us"))
	assert.Equal(t, "en_US", normalizeLang(" en_US "))
	assert.Equal(t, "fr", normalizeLang("fr"))
	assert.Equal(t, "*", normalizeLang("*"))
	assert.Equal(t, "", normalizeLang("  "))
}

func TestBrowserLanguagesDropsWeights(t *testing.T) {
	got := browserLanguages("fr-CA;q=0.9, en-US;q=0.8,de")
	assert.Equal(t, []string{"fr_CA", "en_US", "de"}, got)
}

func TestPreferredTranslation(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		options []TranslationOption
		want    int64
		found   bool
	}{
		{
			name:    "weighted dialect resolves to the base page",
			header:  "de-DE;q=0.9,en;q=0.8",
			options: []TranslationOption{{1, "en"}, {2, "de"}},
			want:    2, found: true,
		},
		{
			name:    "weights are removed without truncating the tag",
			header:  "fr-CA;q=0.9,fr;q=0.8",
			options: []TranslationOption{{1, "fr"}, {2, "fr_CA"}},
			want:    2, found: true,
		},
		{
			name:    "page dialect offers its base language",
			header:  "en",
			options: []TranslationOption{{1, "en_US"}, {2, "fr"}},
			want:    1, found: true,
		},
		{
			name:    "browser dialect falls back to its base language",
			header:  "en-GB",
			options: []TranslationOption{{1, "en"}, {2, "fr"}},
			want:    1, found: true,
		},
		{
			name:    "base already listed by the browser keeps its position",
			header:  "en-GB,fr,en",
			options: []TranslationOption{{1, "fr"}, {2, "en"}},
			want:    1, found: true,
		},
		{
			name:    "first browser preference wins over page order",
			header:  "fr,en",
			options: []TranslationOption{{1, "en"}, {2, "fr"}},
			want:    2, found: true,
		},
		{
			name:    "case and separators are canonicalized",
			header:  "EN-us",
			options: []TranslationOption{{1, "fr"}, {2, "en-US"}},
			want:    2, found: true,
		},
		{
			name:    "no common language",
			header:  "ja,ko;q=0.5",
			options: []TranslationOption{{1, "en"}, {2, "fr"}},
		},
		{
			name:    "empty header",
			header:  "",
			options: []TranslationOption{{1, "en"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PreferredTranslation(tt.header, tt.options)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
