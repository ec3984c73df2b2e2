// Package search wraps the Elasticsearch client with the domain-level
// operations the service needs: index lifecycle, uri-keyed bulk upserts,
// sorted listing with cursor pagination, and ranked search. The engine owns
// all scoring and storage; this package only shapes requests and responses.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"flare-backend/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ListMaxLimit caps a paginated page size; LegacyPageSize is the fixed size
// of the unpaginated scan kept for older clients.
const (
	ListMaxLimit   = 1000
	LegacyPageSize = 1000
)

// Hit mirrors one engine hit. Source is kept raw so search responses are
// relayed verbatim.
type Hit struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Score  *float64        `json:"_score"`
	Sort   []any           `json:"sort,omitempty"`
	Source json.RawMessage `json:"_source"`
}

type searchResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []Hit `json:"hits"`
	} `json:"hits"`
}

// Store is the single long-lived handle to the search engine, constructed
// once at process start and injected into every handler.
type Store struct {
	es    *elasticsearch.Client
	index string
}

func NewStore(es *elasticsearch.Client, index string) *Store {
	return &Store{es: es, index: index}
}

// IndexName returns the backing index name.
func (s *Store) IndexName() string {
	return s.index
}

// EnsureIndex creates the index without a schema if it is absent. Concurrent
// callers may race on creation; "already exists" from the engine is not an
// error.
func (s *Store) EnsureIndex(ctx context.Context) error {
	exists, err := s.indexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	res, err := s.es.Indices.Create(s.index, s.es.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		if strings.Contains(string(body), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("search: create index [%s]: %s", res.Status(), body)
	}
	return nil
}

// CreateIndex creates the index with the fixed event mapping. It reports
// whether the index was created; false means it already existed.
func (s *Store) CreateIndex(ctx context.Context) (bool, error) {
	exists, err := s.indexExists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	body, err := json.Marshal(eventMapping)
	if err != nil {
		return false, err
	}
	res, err := s.es.Indices.Create(
		s.index,
		s.es.Indices.Create.WithBody(bytes.NewReader(body)),
		s.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("search: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		if strings.Contains(string(raw), "resource_already_exists_exception") {
			return false, nil
		}
		return false, fmt.Errorf("search: create index [%s]: %s", res.Status(), raw)
	}
	return true, nil
}

// DeleteIndex removes the whole index. It reports whether the index was
// found; deleting an absent index is a not-found condition, not a failure.
func (s *Store) DeleteIndex(ctx context.Context) (bool, error) {
	exists, err := s.indexExists(ctx)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	res, err := s.es.Indices.Delete([]string{s.index}, s.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("search: delete index: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return false, nil
	}
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return false, fmt.Errorf("search: delete index [%s]: %s", res.Status(), raw)
	}
	return true, nil
}

func (s *Store) indexExists(ctx context.Context) (bool, error) {
	res, err := s.es.Indices.Exists([]string{s.index}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("search: index exists: %w", err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	if res.StatusCode == 404 {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("search: index exists [%s]", res.Status())
	}
	return true, nil
}

// BulkUpsert writes events in one bulk request keyed by uri, so a repeated
// uri overwrites the stored document. Callers must not pass an empty slice;
// the engine rejects bulk bodies with zero actions.
func (s *Store) BulkUpsert(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return fmt.Errorf("search: bulk upsert called with no events")
	}

	var buf bytes.Buffer
	for _, ev := range events {
		meta := map[string]any{
			"index": map[string]any{"_index": s.index, "_id": ev.URI},
		}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return err
		}
		if err := json.NewEncoder(&buf).Encode(ev); err != nil {
			return err
		}
	}

	res, err := s.es.Bulk(bytes.NewReader(buf.Bytes()), s.es.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: bulk request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("search: bulk error [%s]: %s", res.Status(), raw)
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int             `json:"status"`
			Error  json.RawMessage `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("search: decode bulk response: %w", err)
	}
	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			for _, op := range item {
				if op.Status > 299 {
					return fmt.Errorf("search: bulk item failed [%d]: %s", op.Status, op.Error)
				}
			}
		}
		return fmt.Errorf("search: bulk reported errors")
	}
	return nil
}

// ListArticles returns one sorted page of documents. The sort key is
// popularity descending with event date as a tie-breaker; without the
// tie-breaker the engine does not guarantee a stable order across pages.
// after, when non-nil, is the decoded sort tuple of the last hit of the
// previous page. next is non-nil only when the returned page is full-sized:
// a partial page is the end of the stream.
func (s *Store) ListArticles(ctx context.Context, limit int, after []any) (items []json.RawMessage, next []any, err error) {
	if limit < 1 {
		limit = 1
	}
	if limit > ListMaxLimit {
		limit = ListMaxLimit
	}

	body := map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
		"sort": []any{
			map[string]any{"socialScore": map[string]any{"order": "desc"}},
			map[string]any{"eventDate": map[string]any{"order": "desc"}},
		},
		"size": limit,
	}
	if len(after) > 0 {
		body["search_after"] = after
	}

	resp, err := s.search(ctx, body)
	if err != nil {
		return nil, nil, err
	}

	items = make([]json.RawMessage, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		items = append(items, hit.Source)
	}
	if len(resp.Hits.Hits) == limit {
		next = resp.Hits.Hits[len(resp.Hits.Hits)-1].Sort
	}
	return items, next, nil
}

// LegacyArticles is the unpaginated scan older clients depend on: a fixed
// 1000-document page sorted by popularity.
func (s *Store) LegacyArticles(ctx context.Context) ([]json.RawMessage, error) {
	items, _, err := s.ListArticles(ctx, LegacyPageSize, nil)
	return items, err
}

// Search runs the canonical ranking strategy for a free-text query and
// returns the engine hits verbatim.
func (s *Store) Search(ctx context.Context, query string) ([]Hit, error) {
	resp, err := s.search(ctx, BuildSearchQuery(query))
	if err != nil {
		return nil, err
	}
	if resp.Hits.Hits == nil {
		return []Hit{}, nil
	}
	return resp.Hits.Hits, nil
}

// Export walks the whole index with the scroll API and returns every
// document. Meant for snapshot/debug use, not for serving pages.
func (s *Store) Export(ctx context.Context) ([]json.RawMessage, error) {
	body := map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
		"size":  1500,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(raw)),
		s.es.Search.WithScroll(2*time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("search: export request: %w", err)
	}
	resp, err := decodeSearchResponse(res)
	if err != nil {
		return nil, err
	}

	all := make([]json.RawMessage, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		all = append(all, hit.Source)
	}

	scrollID := resp.ScrollID
	for len(resp.Hits.Hits) > 0 {
		res, err := s.es.Scroll(
			s.es.Scroll.WithContext(ctx),
			s.es.Scroll.WithScrollID(scrollID),
			s.es.Scroll.WithScroll(2*time.Minute),
		)
		if err != nil {
			return nil, fmt.Errorf("search: scroll request: %w", err)
		}
		resp, err = decodeSearchResponse(res)
		if err != nil {
			return nil, err
		}
		scrollID = resp.ScrollID
		for _, hit := range resp.Hits.Hits {
			all = append(all, hit.Source)
		}
	}
	return all, nil
}

func (s *Store) search(ctx context.Context, body map[string]any) (*searchResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(raw)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: query request: %w", err)
	}
	return decodeSearchResponse(res)
}

func decodeSearchResponse(res *esapi.Response) (*searchResponse, error) {
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search: query error [%s]: %s", res.Status(), raw)
	}
	var resp searchResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}
	return &resp, nil
}
