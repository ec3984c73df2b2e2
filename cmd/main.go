package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flare-backend/internal/config"
	"flare-backend/internal/eventregistry"
	"flare-backend/internal/logger"
	"flare-backend/internal/search"
	"flare-backend/internal/telemetry"
	"flare-backend/middleware"
	"flare-backend/routes"
	"flare-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to Elasticsearch; this is the single client handle every
	// request reuses.
	es, err := config.NewElasticClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Elasticsearch:", err)
	}
	store := search.NewStore(es, cfg.EventIndex)

	erClient := eventregistry.NewClient(cfg.ERBaseURL, cfg.ERAPIKey)

	snapshots, err := services.NewSnapshotWriter(cfg)
	if err != nil {
		log.Fatal("Failed to init snapshot storage:", err)
	}
	ingestor := services.NewIngestor(erClient, store, snapshots)

	// Tracing is optional; enabled by OTLP_ENDPOINT
	var shutdownTracer func()
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err = telemetry.InitTracer("flare-backend", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to init tracer:", err)
		}
		defer shutdownTracer()
	}

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.OTLPEndpoint != "" {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	// Rate limiting is optional; enabled by REDIS_URL
	if cfg.RedisURL != "" {
		rdb, err := config.NewRedisClient(cfg)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer rdb.Close()
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	routes.SetupArticleRoutes(router, store)
	routes.SetupSearchRoutes(router, store)
	routes.SetupIngestRoutes(router, ingestor)
	routes.SetupIndexRoutes(router, store)

	// Scheduled ingestion replaces the external scheduler trigger
	scheduler := services.NewIngestScheduler(ingestor, cfg.IngestQueries)
	if err := scheduler.Start(cfg.IngestCron); err != nil {
		log.Fatal("Failed to start ingest scheduler:", err)
	}
	defer scheduler.Stop()

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
