package routes

import (
	"context"
	"errors"
	"net/http"

	"flare-backend/internal/logger"
	"flare-backend/models"
	"flare-backend/services"
	"flare-backend/utils"

	"github.com/gin-gonic/gin"
)

type IngestRunner interface {
	Run(ctx context.Context, pr services.PageRange, categoryURI string, conceptURIs []string) ([]models.Event, error)
}

func SetupIngestRoutes(router *gin.Engine, ingestor IngestRunner) {
	router.GET("/fetch", func(c *gin.Context) {
		pages := c.DefaultQuery("pages", "1-1")
		categories := c.Query("categories")
		concepts := c.QueryArray("concepts")

		pr, err := services.ParsePageRange(pages)
		if err != nil {
			var badRange *services.ErrInvalidPageRange
			if errors.As(err, &badRange) {
				utils.RespondWithBadRequest(c, badRange.Error())
				return
			}
			utils.RespondWithBadRequest(c, "invalid pages parameter")
			return
		}

		written, err := ingestor.Run(c.Request.Context(), pr, categories, concepts)
		if err != nil {
			logger.Error("ingest run failed", "pages", pages, "error", err)
			utils.RespondWithInternalError(c, "Failed to index events")
			return
		}
		c.JSON(http.StatusOK, written)
	})
}
