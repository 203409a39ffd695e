// Package search keeps an Elasticsearch index of pages in step with page
// lifecycle events and serves admin search over it.
package search

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/event"
	"github.com/oksasatya/go-ddd-landing-pages/internal/infrastructure/events"
)

type PageIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewPageIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *PageIndex {
	return &PageIndex{ES: es, Index: index, Logger: logger}
}

func (s *PageIndex) enabled() bool {
	return s != nil && s.ES != nil && s.Index != ""
}

// Register subscribes the index to page post_save and post_delete events.
func (s *PageIndex) Register(bus *events.Bus, prefix string) {
	bus.Subscribe(s.Handle, prefix+"."+string(event.PostSave), prefix+"."+string(event.PostDelete))
}

// Handle indexes or removes the page carried by a lifecycle event once its
// write is committed. Indexing is best effort: failures are logged and never
// fail the write.
func (s *PageIndex) Handle(ctx context.Context, _ string, ev any) error {
	le, ok := ev.(*event.LifecycleEvent[*entity.Page])
	if !ok || le.Entity == nil {
		return nil
	}
	p := le.Entity
	switch le.Action {
	case event.PostSave:
		event.AfterCommit(ctx, func(ctx context.Context) {
			if p.ID != 0 {
				_ = s.IndexPage(ctx, p)
			}
		})
	case event.PostDelete:
		id := p.DeletedID
		if id == 0 {
			id = p.ID
		}
		if id == 0 {
			return nil
		}
		event.AfterCommit(ctx, func(ctx context.Context) {
			_ = s.DeletePage(ctx, id)
		})
	}
	return nil
}

// Document is the indexed representation of a page.
func Document(p *entity.Page) map[string]any {
	doc := map[string]any{
		"id":           p.ID,
		"title":        p.Title,
		"alias":        p.Alias,
		"language":     p.Language,
		"template":     p.Template,
		"is_published": p.IsPublished,
		"hits":         p.Hits,
	}
	if p.DateAdded != nil {
		doc["date_added"] = p.DateAdded.Format(time.RFC3339Nano)
	}
	if p.DateModified != nil {
		doc["date_modified"] = p.DateModified.Format(time.RFC3339Nano)
	}
	if p.CreatedBy.HasIdentity() {
		doc["created_by"] = p.CreatedBy.ID
	}
	return doc
}

func (s *PageIndex) IndexPage(ctx context.Context, p *entity.Page) error {
	if !s.enabled() {
		return nil
	}
	b, _ := json.Marshal(Document(p))
	req := esapi.IndexRequest{Index: s.Index, DocumentID: strconv.FormatInt(p.ID, 10), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("page_id", p.ID).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("page_id", p.ID).Warn("es index response error")
	}
	return nil
}

func (s *PageIndex) DeletePage(ctx context.Context, id int64) error {
	if !s.enabled() {
		return nil
	}
	req := esapi.DeleteRequest{Index: s.Index, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("page_id", id).Warn("es delete failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		s.Logger.WithField("status", res.Status()).WithField("page_id", id).Warn("es delete response error")
	}
	return nil
}

// Search runs a multi_match over title and alias.
func (s *PageIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if !s.enabled() {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "alias"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.Index), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
