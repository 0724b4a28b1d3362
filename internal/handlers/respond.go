package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-path-service/internal/genai"
	"learning-path-service/internal/progression"
	"learning-path-service/internal/service"
)

// respondError maps the service error taxonomy onto HTTP statuses. Locked
// checkpoints and closed batches are user-actionable conditions; invariant
// violations are surfaced loudly since they mean progression corruption.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCheckpointLocked):
		c.JSON(http.StatusConflict, gin.H{
			"error": "checkpoint is locked",
			"code":  "CHECKPOINT_LOCKED",
		})
	case errors.Is(err, service.ErrBatchClosed):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"code":  "BATCH_CLOSED",
		})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "submission raced with another update, retry it",
			"code":  "RETRY_SUBMISSION",
		})
	case errors.Is(err, genai.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "question generation is unavailable, try again later",
			"code":  "GENERATION_UNAVAILABLE",
		})
	case errors.Is(err, progression.ErrInvariant):
		log.Printf("INVARIANT VIOLATION: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "progression state is inconsistent",
			"code":  "INVARIANT_VIOLATION",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
