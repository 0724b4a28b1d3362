package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-path-service/internal/service"
)

type PathHandler struct {
	Service *service.PathService
}

func NewPathHandler(s *service.PathService) *PathHandler {
	return &PathHandler{Service: s}
}

// GetPath returns the caller's path for a subject, building it on first
// request. An empty path is a valid response, not an error.
func (h *PathHandler) GetPath(c *gin.Context) {
	studentID := c.GetHeader("X-User-ID")
	subject := c.Param("subject")
	if subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject is required"})
		return
	}

	path, err := h.Service.GetOrBuildPath(c.Request.Context(), studentID, subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, path)
}

// GetPublicPath is the read-only variant used by shared dashboards; the
// student id comes from the route instead of the auth header.
func (h *PathHandler) GetPublicPath(c *gin.Context) {
	studentID := c.Param("studentId")
	subject := c.Param("subject")

	path, err := h.Service.GetOrBuildPath(c.Request.Context(), studentID, subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, path)
}
