package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hospital-pos/internal/service"
)

// respondError maps workflow error kinds onto HTTP statuses. State conflicts
// surface as a generic not-found: the caller cannot distinguish a missing
// row from an already-processed one, and the coarse signal keeps retries
// idempotent.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		return
	}

	var nothingErr *service.NothingToProcessError
	if errors.As(err, &nothingErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "No pending services found to process",
			"duplicates":        emptyIfNil(nothingErr.Duplicates),
			"already_processed": emptyIfNil(nothingErr.AlreadyProcessed),
			"details": gin.H{
				"total_requested":         nothingErr.TotalRequested,
				"duplicates_count":        len(nothingErr.Duplicates),
				"already_processed_count": len(nothingErr.AlreadyProcessed),
			},
		})
		return
	}

	if errors.Is(err, service.ErrStateConflict) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found or already processed"})
		return
	}

	log.Error("request failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
