package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Search engine
	ElasticURL string
	EventIndex string

	// EventRegistry
	ERAPIKey  string
	ERBaseURL string

	// Scheduled ingestion: newline-separated query strings
	// (pages=1-2&categories=...&concepts=...) run on IngestCron.
	IngestQueries []string
	IngestCron    string

	// Snapshot export (object storage); disabled when bucket is empty
	SnapshotEndpoint  string
	SnapshotBucket    string
	SnapshotAccessKey string
	SnapshotSecretKey string
	SnapshotUseSSL    bool

	// Redis (rate limiting); disabled when URL is empty
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow int

	// Tracing; disabled when endpoint is empty
	OTLPEndpoint string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),

		ElasticURL: getEnv("ELASTIC_URL", "http://localhost:9200"),
		EventIndex: getEnv("EVENT_INDEX", "events"),

		ERAPIKey:  getEnv("ER_APIKEY", ""),
		ERBaseURL: getEnv("ER_BASE_URL", ""),

		IngestQueries: splitLines(getEnv("INGEST_QUERIES", "")),
		IngestCron:    getEnv("INGEST_CRON", "0 */6 * * *"),

		SnapshotEndpoint:  getEnv("SNAPSHOT_ENDPOINT", ""),
		SnapshotBucket:    getEnv("SNAPSHOT_BUCKET", ""),
		SnapshotAccessKey: getEnv("SNAPSHOT_ACCESS_KEY", ""),
		SnapshotSecretKey: getEnv("SNAPSHOT_SECRET_KEY", ""),
		SnapshotUseSSL:    getEnvBool("SNAPSHOT_USE_SSL", true),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
	}

	return cfg, nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
