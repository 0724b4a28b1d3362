package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-path-service/internal/service"
)

type RewardHandler struct {
	Service *service.RewardService
}

func NewRewardHandler(s *service.RewardService) *RewardHandler {
	return &RewardHandler{Service: s}
}

func (h *RewardHandler) GetRewardState(c *gin.Context) {
	studentID := c.GetHeader("X-User-ID")
	state, err := h.Service.GetState(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
