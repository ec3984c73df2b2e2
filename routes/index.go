package routes

import (
	"context"
	"fmt"
	"net/http"

	"flare-backend/internal/logger"
	"flare-backend/utils"

	"github.com/gin-gonic/gin"
)

// IndexAdmin manages the lifecycle of the backing index.
type IndexAdmin interface {
	IndexName() string
	CreateIndex(ctx context.Context) (created bool, err error)
	DeleteIndex(ctx context.Context) (found bool, err error)
}

func SetupIndexRoutes(router *gin.Engine, store IndexAdmin) {
	router.GET("/es-index", func(c *gin.Context) {
		created, err := store.CreateIndex(c.Request.Context())
		if err != nil {
			logger.Error("failed to create index", "index", store.IndexName(), "error", err)
			utils.RespondWithInternalError(c, "Failed to create index")
			return
		}
		if created {
			c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Index '%s' created", store.IndexName())})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Index already exists"})
	})

	router.DELETE("/delete_index", func(c *gin.Context) {
		found, err := store.DeleteIndex(c.Request.Context())
		if err != nil {
			logger.Error("failed to delete index", "index", store.IndexName(), "error", err)
			utils.RespondWithInternalError(c, "Failed to delete index")
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"message": "Index not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Index '%s' deleted", store.IndexName())})
	})
}
