// Package eventregistry is the HTTP client for the EventRegistry getEvents
// endpoint, the upstream source of indexed events. Every call is attempted
// exactly once; a circuit breaker fails fast after repeated upstream
// failures and a client-side rate limiter keeps the service inside the API
// plan, but neither retries.
package eventregistry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"flare-backend/internal/logger"
	"flare-backend/models"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://eventregistry.org"

	// Upstream query shape: English events with at least 5 articles,
	// mentioned within the last 30 days, 50 per page sorted by relevance.
	pageSize           = 50
	minArticlesInEvent = 5
	maxArticlesInEvent = 999
	mentionWindowDays  = 30
)

// Query filters a fetch run. Zero values mean "no filter".
type Query struct {
	CategoryURI string
	ConceptURIs []string
}

// Page is one page of upstream results.
type Page struct {
	Events []models.Event
	Pages  int
	Total  int
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "EventRegistry",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		breaker:    breaker,
		// The free plan allows roughly one request per second sustained.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

type getEventsRequest struct {
	Action                  string   `json:"action"`
	APIKey                  string   `json:"apiKey"`
	ResultType              string   `json:"resultType"`
	ConceptURI              []string `json:"conceptUri,omitempty"`
	CategoryURI             string   `json:"categoryUri,omitempty"`
	Lang                    string   `json:"lang"`
	MinArticlesInEvent      int      `json:"minArticlesInEvent"`
	MaxArticlesInEvent      int      `json:"maxArticlesInEvent"`
	DateMentionStart        string   `json:"dateMentionStart"`
	EventsPage              int      `json:"eventsPage"`
	EventsCount             int      `json:"eventsCount"`
	EventsSortBy            string   `json:"eventsSortBy"`
	IncludeEventConcepts    bool     `json:"includeEventConcepts"`
	IncludeEventImages      bool     `json:"includeEventImages"`
	EventImageCount         int      `json:"eventImageCount"`
	IncludeEventLocation    bool     `json:"includeEventLocation"`
	IncludeEventSocialScore bool     `json:"includeEventSocialScore"`
	IncludeEventInfoArticle bool     `json:"includeEventInfoArticle"`
	IncludeLocationGeo      bool     `json:"includeLocationGeoLocation"`
}

type getEventsResponse struct {
	Events struct {
		Results      []models.Event `json:"results"`
		Pages        int            `json:"pages"`
		TotalResults int            `json:"totalResults"`
	} `json:"events"`
	Error string `json:"error,omitempty"`
}

// FetchPage requests exactly one page of events matching q.
func (c *Client) FetchPage(ctx context.Context, q Query, page int) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetchPage(ctx, q, page)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Page), nil
}

func (c *Client) fetchPage(ctx context.Context, q Query, page int) (*Page, error) {
	reqBody := getEventsRequest{
		Action:                  "getEvents",
		APIKey:                  c.apiKey,
		ResultType:              "events",
		ConceptURI:              q.ConceptURIs,
		CategoryURI:             q.CategoryURI,
		Lang:                    "eng",
		MinArticlesInEvent:      minArticlesInEvent,
		MaxArticlesInEvent:      maxArticlesInEvent,
		DateMentionStart:        time.Now().AddDate(0, 0, -mentionWindowDays).Format("2006-01-02"),
		EventsPage:              page,
		EventsCount:             pageSize,
		EventsSortBy:            "rel",
		IncludeEventConcepts:    true,
		IncludeEventImages:      true,
		EventImageCount:         1,
		IncludeEventLocation:    true,
		IncludeEventSocialScore: true,
		IncludeEventInfoArticle: true,
		IncludeLocationGeo:      true,
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/event/getEvents", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eventregistry: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("eventregistry: status %d: %s", res.StatusCode, body)
	}

	var decoded getEventsResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("eventregistry: decode response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("eventregistry: api error: %s", decoded.Error)
	}

	return &Page{
		Events: decoded.Events.Results,
		Pages:  decoded.Events.Pages,
		Total:  decoded.Events.TotalResults,
	}, nil
}
