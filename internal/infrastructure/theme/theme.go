// Package theme loads page templates from disk. Each template lives in its
// own directory holding a config.json and, optionally, html/page.html.
package theme

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned for a template that is missing or cannot render
// pages.
var ErrNotFound = errors.New("template not found")

//go:embed default.html
var defaultFS embed.FS

// Config is a template's config.json.
type Config struct {
	Name     string              `json:"name"`
	Features []string            `json:"features"`
	Slots    map[string][]string `json:"slots"`
}

// Theme is a loaded template ready to render a page.
type Theme struct {
	Name  string
	Slots []string
	tmpl  *template.Template
}

// View is what a page template renders.
type View struct {
	Title    string
	Language string
	Content  template.HTML
	Slots    []string
	Template string
}

func (t *Theme) Render(w io.Writer, v View) error {
	v.Slots = t.Slots
	v.Template = t.Name
	return t.tmpl.Execute(w, v)
}

// Store reads templates under Dir and caches the parsed ones.
type Store struct {
	Dir string

	mu    sync.RWMutex
	cache map[string]*Theme
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir, cache: map[string]*Theme{}}
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}

func (s *Store) readConfig(name string) (*Config, error) {
	b, err := os.ReadFile(filepath.Join(s.Dir, name, "config.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("template %s: bad config.json: %w", name, err)
	}
	return &cfg, nil
}

// Names lists the templates that define a page slot.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		cfg, err := s.readConfig(e.Name())
		if err != nil {
			continue
		}
		if _, ok := cfg.Slots["page"]; ok {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Load returns the named template. It fails with ErrNotFound when the
// template has no config.json or its config has no page slot.
func (s *Store) Load(name string) (*Theme, error) {
	if !validName(name) {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	t, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	cfg, err := s.readConfig(name)
	if err != nil {
		return nil, err
	}
	slots, ok := cfg.Slots["page"]
	if !ok {
		return nil, ErrNotFound
	}

	var tmpl *template.Template
	custom := filepath.Join(s.Dir, name, "html", "page.html")
	if _, statErr := os.Stat(custom); statErr == nil {
		tmpl, err = template.ParseFiles(custom)
	} else {
		tmpl, err = template.ParseFS(defaultFS, "default.html")
	}
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}

	t = &Theme{Name: name, Slots: slots, tmpl: tmpl}
	s.mu.Lock()
	s.cache[name] = t
	s.mu.Unlock()
	return t, nil
}
