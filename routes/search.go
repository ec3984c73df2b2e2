package routes

import (
	"context"
	"net/http"

	"flare-backend/internal/logger"
	"flare-backend/internal/search"
	"flare-backend/utils"

	"github.com/gin-gonic/gin"
)

type EventSearcher interface {
	Search(ctx context.Context, query string) ([]search.Hit, error)
}

func SetupSearchRoutes(router *gin.Engine, store EventSearcher) {
	router.GET("/search", func(c *gin.Context) {
		query := c.DefaultQuery("query", "*")

		hits, err := store.Search(c.Request.Context(), query)
		if err != nil {
			// Includes engine rejections of pathological query strings;
			// those surface as search failures rather than being sanitized
			// here.
			logger.Error("search failed", "query", query, "error", err)
			utils.RespondWithInternalError(c, "Failed to search events")
			return
		}
		c.JSON(http.StatusOK, hits)
	})
}
