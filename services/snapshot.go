package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flare-backend/internal/config"
	"flare-backend/internal/logger"
	"flare-backend/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// SnapshotWriter exports each ingest run's written set as a gzip NDJSON
// object, partitioned by date so downstream analytics can pick up new
// partitions cheaply. Keys look like
// snapshots/dt=2026-08-30/fetch-20260830T120000Z-1a2b3c4d.json.gz.
type SnapshotWriter struct {
	client *minio.Client
	bucket string
}

// NewSnapshotWriter returns nil (snapshots disabled) when no bucket is
// configured.
func NewSnapshotWriter(cfg *config.Config) (*SnapshotWriter, error) {
	if cfg.SnapshotBucket == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.SnapshotEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.SnapshotAccessKey, cfg.SnapshotSecretKey, ""),
		Secure: cfg.SnapshotUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot storage client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.SnapshotBucket)
	if err != nil {
		logger.Warn("could not verify snapshot bucket, continuing", "bucket", cfg.SnapshotBucket, "error", err)
	} else if !exists {
		if err := client.MakeBucket(ctx, cfg.SnapshotBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create snapshot bucket %s: %w", cfg.SnapshotBucket, err)
		}
		logger.Info("snapshot bucket created", "bucket", cfg.SnapshotBucket)
	}

	return &SnapshotWriter{client: client, bucket: cfg.SnapshotBucket}, nil
}

// Export writes one gzip NDJSON object containing items.
func (w *SnapshotWriter) Export(ctx context.Context, items []models.Event) error {
	now := time.Now().UTC()
	key := fmt.Sprintf("snapshots/dt=%s/fetch-%s-%s.json.gz",
		now.Format("2006-01-02"),
		now.Format("20060102T150405Z"),
		uuid.New().String()[:8])

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := json.NewEncoder(gz)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("encode snapshot item: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}

	_, err := w.client.PutObject(ctx, w.bucket, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()),
		minio.PutObjectOptions{
			ContentType:     "application/json",
			ContentEncoding: "gzip",
		})
	if err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}

	logger.Info("snapshot exported", "bucket", w.bucket, "key", key, "items", len(items))
	return nil
}
