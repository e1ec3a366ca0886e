package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nypc/nypc-perf-backend/internal/models"
	"github.com/nypc/nypc-perf-backend/internal/service"
	"github.com/nypc/nypc-perf-backend/pkg/logger"
)

type BattleHandler struct {
	playerService *service.PlayerService
}

func NewBattleHandler(playerService *service.PlayerService) *BattleHandler {
	return &BattleHandler{
		playerService: playerService,
	}
}

// ReportBattle 배틀 결과 보고
// 레이팅은 즉시 바뀌지 않고 다음 전체 재계산에서 반영됨
func (h *BattleHandler) ReportBattle(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ReportBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	battle, err := h.playerService.ReportBattle(userID.(string), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSamePlayer), errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid battle result",
			})
		case errors.Is(err, service.ErrPlayerNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Player not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to record battle",
			})
		}
		return
	}

	logger.Info("Battle reported",
		"battleId", battle.ID,
		"playerI", battle.PlayerI,
		"playerJ", battle.PlayerJ,
		"reporterId", userID,
	)

	c.JSON(http.StatusCreated, battle)
}

// ListBattles 최근 배틀 목록 (페이지네이션)
func (h *BattleHandler) ListBattles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	battles, err := h.playerService.ListBattles(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list battles",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"battles": battles,
		"page":    page,
		"total":   len(battles),
	})
}
