// Command migrate loads a snapshot JSON file (an array of events, as
// written by the export endpoint or a decompressed snapshot object) into the
// events index. Used to seed a fresh cluster from a previous deployment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"flare-backend/internal/config"
	"flare-backend/internal/logger"
	"flare-backend/internal/search"
	"flare-backend/models"
)

func main() {
	file := flag.String("file", "flare-snapshot.json", "path to the snapshot JSON file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	es, err := config.NewElasticClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Elasticsearch:", err)
	}
	store := search.NewStore(es, cfg.EventIndex)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	created, err := store.CreateIndex(ctx)
	if err != nil {
		log.Fatal("Failed to create index:", err)
	}
	if created {
		logger.Info("created index with mapping", "index", cfg.EventIndex)
	} else {
		logger.Info("index already exists", "index", cfg.EventIndex)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal("Failed to read snapshot file:", err)
	}

	var events []models.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		log.Fatal("Failed to parse snapshot file:", err)
	}
	if len(events) == 0 {
		logger.Info("snapshot is empty, nothing to migrate")
		return
	}

	if err := store.BulkUpsert(ctx, events); err != nil {
		log.Fatal("Migration failed:", err)
	}
	logger.Info("migration complete", "indexed", len(events))
}
