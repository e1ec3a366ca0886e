package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nypc/nypc-perf-backend/internal/service"
	"github.com/nypc/nypc-perf-backend/pkg/logger"
)

type RatingHandler struct {
	ratingService *service.RatingService
}

func NewRatingHandler(ratingService *service.RatingService) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
	}
}

// Recalculate 전체 레이팅 즉시 재계산 (주기 재계산과 동일한 경로)
func (h *RatingHandler) Recalculate(c *gin.Context) {
	summary, err := h.ratingService.Recalculate()
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecalcInProgress):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Recalculation already in progress",
			})
		case errors.Is(err, service.ErrNoPlayers):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "No players registered",
			})
		default:
			logger.Error("Rating recalculation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to recalculate ratings",
			})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}
