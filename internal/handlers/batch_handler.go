package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-path-service/internal/models"
	"learning-path-service/internal/service"
)

type BatchHandler struct {
	Service *service.BatchService
}

func NewBatchHandler(s *service.BatchService) *BatchHandler {
	return &BatchHandler{Service: s}
}

// StartBatch issues a new question batch, scoped to a checkpoint or ad-hoc
// when checkpoint_id is omitted.
func (h *BatchHandler) StartBatch(c *gin.Context) {
	var req struct {
		Subject      string `json:"subject" binding:"required"`
		CheckpointID string `json:"checkpoint_id"`
		Difficulty   string `json:"difficulty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	difficulty := models.Difficulty(req.Difficulty)
	if req.Difficulty != "" && !difficulty.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "difficulty must be easy, medium or hard"})
		return
	}

	studentID := c.GetHeader("X-User-ID")
	batch, err := h.Service.StartBatch(c.Request.Context(), studentID, req.Subject, req.CheckpointID, difficulty)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sanitizeBatch(batch))
}

// GetBatch returns an issued batch without correct answers.
func (h *BatchHandler) GetBatch(c *gin.Context) {
	studentID := c.GetHeader("X-User-ID")
	batch, err := h.Service.GetBatch(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sanitizeBatch(batch))
}

// SkipBatch abandons a pending batch.
func (h *BatchHandler) SkipBatch(c *gin.Context) {
	studentID := c.GetHeader("X-User-ID")
	batch, err := h.Service.Skip(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sanitizeBatch(batch))
}

// sanitizeBatch strips stored correct answers before a batch goes over the
// wire. The json:"-" tag already hides them; clearing too keeps any future
// re-marshals safe.
func sanitizeBatch(batch *models.QuestionBatch) *models.QuestionBatch {
	out := *batch
	out.Questions = make([]models.Question, len(batch.Questions))
	for i, q := range batch.Questions {
		q.CorrectAnswer = ""
		out.Questions[i] = q
	}
	return &out
}
