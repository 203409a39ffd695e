package search

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// NewClient connects to Elasticsearch, with basic auth when username is set.
func NewClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	})
}

const pagesMapping = `{
  "mappings": {
    "properties": {
      "id":            {"type": "long"},
      "title":         {"type": "text"},
      "alias":         {"type": "keyword"},
      "language":      {"type": "keyword"},
      "template":      {"type": "keyword"},
      "is_published":  {"type": "boolean"},
      "hits":          {"type": "long"},
      "created_by":    {"type": "keyword"},
      "date_added":    {"type": "date"},
      "date_modified": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the pages index with its mapping unless it exists.
func (s *PageIndex) EnsureIndex(ctx context.Context) error {
	if !s.enabled() {
		return nil
	}
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := esapi.IndicesExistsRequest{Index: []string{s.Index}}.Do(c, s.ES)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{Index: s.Index, Body: strings.NewReader(pagesMapping)}.Do(c, s.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", s.Index, res.Status())
	}
	s.Logger.WithField("index", s.Index).Info("created search index")
	return nil
}
