package search

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flare-backend/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// newTestStore points a real client at a stub engine. The v8 client
// verifies the product header on every response, so the stub always sets it.
func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return NewStore(es, "events")
}

func TestBulkUpsertKeysDocumentsByURI(t *testing.T) {
	var bulkBody []byte
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/_bulk") {
			bulkBody, _ = io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"took":1,"errors":false,"items":[]}`)
			return
		}
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	events := []models.Event{
		{URI: "eng-100", Title: models.LangText{Eng: "first"}},
		{URI: "eng-200", Title: models.LangText{Eng: "second"}},
	}
	if err := store.BulkUpsert(context.Background(), events); err != nil {
		t.Fatalf("bulk upsert: %v", err)
	}

	var ids []string
	scanner := bufio.NewScanner(bytes.NewReader(bulkBody))
	for scanner.Scan() {
		var meta struct {
			Index struct {
				ID string `json:"_id"`
			} `json:"index"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &meta); err == nil && meta.Index.ID != "" {
			ids = append(ids, meta.Index.ID)
		}
	}
	if len(ids) != 2 || ids[0] != "eng-100" || ids[1] != "eng-200" {
		t.Fatalf("bulk actions not keyed by uri: %v", ids)
	}
}

func TestBulkUpsertRejectsEmptySet(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("bulk with zero actions must not reach the engine: %s %s", r.Method, r.URL.Path)
	})
	if err := store.BulkUpsert(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty bulk")
	}
}

func TestBulkUpsertSurfacesItemFailures(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"took":1,"errors":true,"items":[{"index":{"status":400,"error":{"type":"mapper_parsing_exception"}}}]}`)
	})
	err := store.BulkUpsert(context.Background(), []models.Event{{URI: "eng-1"}})
	if err == nil {
		t.Fatal("expected error when the engine reports item failures")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Fatalf("error should carry the failing status: %v", err)
	}
}

func listHandler(t *testing.T, hitCount int, wantSearchAfter bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/_search") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode search body: %v", err)
		}

		sort, ok := body["sort"].([]any)
		if !ok || len(sort) != 2 {
			t.Errorf("expected composite sort, got %v", body["sort"])
		}
		_, hasAfter := body["search_after"]
		if hasAfter != wantSearchAfter {
			t.Errorf("search_after present=%v, want %v", hasAfter, wantSearchAfter)
		}

		var hits []string
		for i := 0; i < hitCount; i++ {
			hits = append(hits, `{"_index":"events","_id":"e`+string(rune('a'+i))+`","_score":null,"sort":[100,1714003200000],"_source":{"uri":"e`+string(rune('a'+i))+`"}}`)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"hits":{"total":{"value":`+"7"+`},"hits":[`+strings.Join(hits, ",")+`]}}`)
	}
}

func TestListArticlesFullPageHasNext(t *testing.T) {
	store := newTestStore(t, listHandler(t, 3, false))
	items, next, err := store.ListArticles(context.Background(), 3, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if next == nil {
		t.Fatal("full page must carry a next sort tuple")
	}
}

func TestListArticlesPartialPageEndsStream(t *testing.T) {
	store := newTestStore(t, listHandler(t, 1, true))
	items, next, err := store.ListArticles(context.Background(), 3, []any{100.0, 1714003200000.0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if next != nil {
		t.Fatalf("partial page must end the stream, got next=%v", next)
	}
}

func TestDeleteIndexMissingIsNotFound(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		t.Errorf("delete of a missing index must stop at the existence check, got %s %s", r.Method, r.URL.Path)
	})
	found, err := store.DeleteIndex(context.Background())
	if err != nil {
		t.Fatalf("delete missing index must not error: %v", err)
	}
	if found {
		t.Fatal("missing index reported as found")
	}
}

func TestCreateIndexAlreadyExists(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		t.Errorf("existing index must not be re-created, got %s %s", r.Method, r.URL.Path)
	})
	created, err := store.CreateIndex(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created {
		t.Fatal("existing index reported as created")
	}
}

func TestEnsureIndexCreatesWhenAbsent(t *testing.T) {
	var createCalls int
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut:
			createCalls++
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"acknowledged":true}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})
	if err := store.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if createCalls != 1 {
		t.Fatalf("expected one create call, got %d", createCalls)
	}
}
