package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nypc/nypc-perf-backend/internal/service"
)

type LeaderboardHandler struct {
	playerService *service.PlayerService
}

func NewLeaderboardHandler(playerService *service.PlayerService) *LeaderboardHandler {
	return &LeaderboardHandler{
		playerService: playerService,
	}
}

// GetLeaderboard 레이팅 상위 플레이어 조회
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	players, err := h.playerService.Leaderboard(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get leaderboard",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": players,
		"total":       len(players),
	})
}
