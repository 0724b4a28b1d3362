package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-path-service/internal/models"
	"learning-path-service/internal/service"
)

type SessionHandler struct {
	Service *service.SessionService
}

func NewSessionHandler(s *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// RecordSession ingests one analyzed study session from the transcript
// analysis collaborator and returns the rebuilt path.
func (h *SessionHandler) RecordSession(c *gin.Context) {
	var req struct {
		Subject string   `json:"subject" binding:"required"`
		Topics  []string `json:"topics" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	session := &models.StudySession{
		StudentID: c.GetHeader("X-User-ID"),
		Subject:   req.Subject,
		Topics:    req.Topics,
	}
	path, err := h.Service.RecordSession(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session": session,
		"path":    path,
	})
}
