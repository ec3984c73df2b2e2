package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"flare-backend/internal/eventregistry"
	"flare-backend/internal/logger"
	"flare-backend/models"
)

// maxPageSpan bounds one run so a typo like "1-100000" cannot hammer the
// upstream API.
const maxPageSpan = 100

// PageRange is an inclusive window of upstream result pages.
type PageRange struct {
	Start int
	End   int
}

// ErrInvalidPageRange marks client input errors from ParsePageRange; routes
// map it to a 400 instead of a generic 500.
type ErrInvalidPageRange struct {
	Input  string
	Reason string
}

func (e *ErrInvalidPageRange) Error() string {
	return fmt.Sprintf("invalid page range %q: %s", e.Input, e.Reason)
}

// ParsePageRange parses "<start>-<end>" (inclusive). A single number means
// start == end.
func ParsePageRange(s string) (PageRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PageRange{}, &ErrInvalidPageRange{Input: s, Reason: "empty"}
	}

	parts := strings.SplitN(s, "-", 2)
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return PageRange{}, &ErrInvalidPageRange{Input: s, Reason: "start is not a number"}
	}
	end := start
	if len(parts) == 2 {
		end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return PageRange{}, &ErrInvalidPageRange{Input: s, Reason: "end is not a number"}
		}
	}

	switch {
	case start < 1:
		return PageRange{}, &ErrInvalidPageRange{Input: s, Reason: "pages start at 1"}
	case end < start:
		return PageRange{}, &ErrInvalidPageRange{Input: s, Reason: "end before start"}
	case end-start+1 > maxPageSpan:
		return PageRange{}, &ErrInvalidPageRange{Input: s, Reason: fmt.Sprintf("span exceeds %d pages", maxPageSpan)}
	}
	return PageRange{Start: start, End: end}, nil
}

// EventFetcher pages through the upstream event source.
type EventFetcher interface {
	FetchPage(ctx context.Context, q eventregistry.Query, page int) (*eventregistry.Page, error)
}

// EventIndexer is the slice of the search store ingestion needs.
type EventIndexer interface {
	EnsureIndex(ctx context.Context) error
	BulkUpsert(ctx context.Context, events []models.Event) error
}

// Ingestor synchronizes the index with the upstream source for a bounded
// page range. Concurrent runs are not coordinated: index creation is
// idempotent and overlapping uri upserts are last-write-wins.
type Ingestor struct {
	fetcher   EventFetcher
	indexer   EventIndexer
	snapshots *SnapshotWriter // optional
}

func NewIngestor(fetcher EventFetcher, indexer EventIndexer, snapshots *SnapshotWriter) *Ingestor {
	return &Ingestor{fetcher: fetcher, indexer: indexer, snapshots: snapshots}
}

// Run fetches every page in pr, normalizes and dedups the events, and issues
// a single bulk write. It returns exactly the written set. A fetch failure
// aborts the whole run before anything is written; there is no partial
// commit and no retry.
func (ing *Ingestor) Run(ctx context.Context, pr PageRange, categoryURI string, conceptURIs []string) ([]models.Event, error) {
	if err := ing.indexer.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	q := eventregistry.Query{CategoryURI: categoryURI, ConceptURIs: conceptURIs}

	var fetched []models.Event
	for page := pr.Start; page <= pr.End; page++ {
		result, err := ing.fetcher.FetchPage(ctx, q, page)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		fetched = append(fetched, result.Events...)
	}

	written := prepareEvents(fetched)
	if len(written) == 0 {
		logger.Info("ingest run wrote nothing", "pages", fmt.Sprintf("%d-%d", pr.Start, pr.End))
		return []models.Event{}, nil
	}

	if err := ing.indexer.BulkUpsert(ctx, written); err != nil {
		return nil, err
	}
	logger.Info("ingest run complete",
		"fetched", len(fetched), "written", len(written),
		"pages", fmt.Sprintf("%d-%d", pr.Start, pr.End))

	if ing.snapshots != nil {
		if err := ing.snapshots.Export(ctx, written); err != nil {
			// Snapshots are a side channel; the indexed data is already
			// committed, so an export failure does not fail the run.
			logger.Warn("snapshot export failed", "error", err)
		}
	}
	return written, nil
}

// prepareEvents normalizes fetched events and dedups them by uri, first
// occurrence winning. Concepts scored at or below 50 are noise and dropped.
// Coordinate coercion happened when the upstream response was decoded.
func prepareEvents(fetched []models.Event) []models.Event {
	written := make([]models.Event, 0, len(fetched))
	seen := make(map[string]struct{}, len(fetched))

	for _, ev := range fetched {
		if ev.URI == "" {
			logger.Warn("dropping event without uri", "title", ev.Title.Eng)
			continue
		}
		if _, dup := seen[ev.URI]; dup {
			continue
		}
		seen[ev.URI] = struct{}{}

		if len(ev.Concepts) > 0 {
			kept := ev.Concepts[:0]
			for _, c := range ev.Concepts {
				if c.Score > 50 {
					kept = append(kept, c)
				}
			}
			ev.Concepts = kept
		}
		written = append(written, ev)
	}
	return written
}
