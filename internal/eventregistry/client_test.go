package eventregistry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchPageSendsRequestedPage(t *testing.T) {
	var gotPages []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/event/getEvents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotPages = append(gotPages, int(body["eventsPage"].(float64)))
		if body["lang"] != "eng" {
			t.Errorf("lang = %v, want eng", body["lang"])
		}
		if body["minArticlesInEvent"].(float64) != 5 {
			t.Errorf("minArticlesInEvent = %v, want 5", body["minArticlesInEvent"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"events":{"results":[{"uri":"eng-1"}],"pages":10,"totalResults":500}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")

	for _, page := range []int{2, 3} {
		result, err := c.FetchPage(context.Background(), Query{}, page)
		if err != nil {
			t.Fatalf("fetch page %d: %v", page, err)
		}
		if len(result.Events) != 1 || result.Events[0].URI != "eng-1" {
			t.Fatalf("page %d events mangled: %+v", page, result.Events)
		}
	}

	if len(gotPages) != 2 || gotPages[0] != 2 || gotPages[1] != 3 {
		t.Fatalf("upstream saw pages %v, want [2 3]", gotPages)
	}
}

func TestFetchPageSurfacesUpstreamError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	if _, err := c.FetchPage(context.Background(), Query{}, 1); err == nil {
		t.Fatal("expected error from upstream failure")
	}
	// One attempt per call; no retries hide behind the breaker.
	if calls != 1 {
		t.Fatalf("upstream called %d times, want 1", calls)
	}
}

func TestFetchPageSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-key")
	if _, err := c.FetchPage(context.Background(), Query{}, 1); err == nil {
		t.Fatal("expected error from api-level failure")
	}
}
