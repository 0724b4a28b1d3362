package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-path-service/internal/service"
)

type SubmissionHandler struct {
	Service *service.SubmissionService
}

func NewSubmissionHandler(s *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{Service: s}
}

// SubmitAnswer grades one answer for a batch question and returns the full
// progression and reward outcome in one response.
func (h *SubmissionHandler) SubmitAnswer(c *gin.Context) {
	var req struct {
		QuestionID string `json:"question_id" binding:"required"`
		Answer     string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	studentID := c.GetHeader("X-User-ID")
	result, err := h.Service.SubmitAnswer(c.Request.Context(), studentID, c.Param("id"), req.QuestionID, req.Answer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
