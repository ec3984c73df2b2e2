package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"flare-backend/internal/logger"
	"flare-backend/internal/search"
	"flare-backend/utils"

	"github.com/gin-gonic/gin"
)

// ArticleLister is the read slice of the search store the article routes
// need; tests substitute an in-memory double.
type ArticleLister interface {
	ListArticles(ctx context.Context, limit int, after []any) ([]json.RawMessage, []any, error)
	LegacyArticles(ctx context.Context) ([]json.RawMessage, error)
	Export(ctx context.Context) ([]json.RawMessage, error)
}

// ArticlesPage is the paginated response shape. Next is null on the final
// page; that is the client's termination signal.
type ArticlesPage struct {
	Items []json.RawMessage `json:"items"`
	Next  *string           `json:"next"`
}

func SetupArticleRoutes(router *gin.Engine, store ArticleLister) {
	// Two response shapes coexist on /articles by design: without a limit
	// param the legacy fixed-size scan returns a bare array; with one, a
	// cursor-paginated {items, next} envelope.
	router.GET("/articles", func(c *gin.Context) {
		limitStr := c.Query("limit")
		if limitStr == "" {
			items, err := store.LegacyArticles(c.Request.Context())
			if err != nil {
				logger.Error("failed to fetch articles", "error", err)
				utils.RespondWithInternalError(c, "Failed to fetch articles")
				return
			}
			c.JSON(http.StatusOK, items)
			return
		}

		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			utils.RespondWithBadRequest(c, "limit must be a number")
			return
		}
		if limit < 1 {
			limit = 1
		}
		if limit > search.ListMaxLimit {
			limit = search.ListMaxLimit
		}

		// A malformed cursor decodes to nil and the listing restarts from
		// the beginning; clients are never asked to interpret tokens.
		after := search.DecodeCursor(c.Query("after"))

		items, next, err := store.ListArticles(c.Request.Context(), limit, after)
		if err != nil {
			logger.Error("failed to fetch articles", "error", err)
			utils.RespondWithInternalError(c, "Failed to fetch articles")
			return
		}

		page := ArticlesPage{Items: items}
		if token := search.EncodeCursor(next); token != "" {
			page.Next = &token
		}
		c.JSON(http.StatusOK, page)
	})

	router.GET("/export", func(c *gin.Context) {
		items, err := store.Export(c.Request.Context())
		if err != nil {
			logger.Error("failed to export articles", "error", err)
			utils.RespondWithInternalError(c, "Failed to export articles")
			return
		}
		c.JSON(http.StatusOK, items)
	})
}
