package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"flare-backend/internal/logger"

	"github.com/go-co-op/gocron"
)

// IngestScheduler replays a configured list of ingest query strings on a
// cron schedule, replacing the external scheduler trigger the deployed
// variants relied on. Each line has the same shape as the /fetch query
// string: pages=1-2&categories=<uri>&concepts=<uri>&concepts=<uri>.
type IngestScheduler struct {
	scheduler *gocron.Scheduler
	ingestor  *Ingestor
	queries   []string
}

func NewIngestScheduler(ingestor *Ingestor, queries []string) *IngestScheduler {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	return &IngestScheduler{
		scheduler: s,
		ingestor:  ingestor,
		queries:   queries,
	}
}

// Start registers the ingest job and runs the scheduler in the background.
func (s *IngestScheduler) Start(cronExpr string) error {
	if len(s.queries) == 0 {
		return nil
	}
	if _, err := s.scheduler.Cron(cronExpr).Tag("scheduled-ingest").Do(s.runAll); err != nil {
		return fmt.Errorf("schedule ingest job: %w", err)
	}
	s.scheduler.StartAsync()
	logger.Info("scheduled ingestion started", "cron", cronExpr, "queries", len(s.queries))
	return nil
}

func (s *IngestScheduler) Stop() {
	s.scheduler.Stop()
}

// runAll executes every configured query. One bad line is logged and
// skipped; it does not stop the others.
func (s *IngestScheduler) runAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	total := 0
	for _, q := range s.queries {
		written, err := s.runQuery(ctx, q)
		if err != nil {
			logger.Error("scheduled ingest query failed", "query", q, "error", err)
			continue
		}
		total += written
	}
	logger.Info("scheduled ingest finished", "queries", len(s.queries), "written", total)
}

func (s *IngestScheduler) runQuery(ctx context.Context, q string) (int, error) {
	params, err := url.ParseQuery(q)
	if err != nil {
		return 0, fmt.Errorf("parse query string: %w", err)
	}

	pages := params.Get("pages")
	if pages == "" {
		pages = "1-1"
	}
	pr, err := ParsePageRange(pages)
	if err != nil {
		return 0, err
	}

	written, err := s.ingestor.Run(ctx, pr, params.Get("categories"), params["concepts"])
	if err != nil {
		return 0, err
	}
	return len(written), nil
}
