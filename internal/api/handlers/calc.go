package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nypc/nypc-perf-backend/pkg/logger"
	"github.com/nypc/nypc-perf-backend/pkg/perf"
)

type CalcHandler struct{}

func NewCalcHandler() *CalcHandler {
	return &CalcHandler{}
}

type calcRatingInput struct {
	Fixed bool    `json:"fixed"`
	Value float64 `json:"value"`
}

type calcBattleInput struct {
	I   int     `json:"i"`
	J   int     `json:"j"`
	Wij float64 `json:"wij"`
	Wji float64 `json:"wji"`
}

type calcOptionsInput struct {
	MaxIterations int     `json:"max_iterations"`
	Epsilon       float64 `json:"epsilon"`
}

type calcRequest struct {
	Ratings []calcRatingInput `json:"ratings" binding:"required"`
	Battles []calcBattleInput `json:"battles"`
	Options *calcOptionsInput `json:"options"`
}

// Calc 저장소를 거치지 않는 단발성 레이팅 계산
func (h *CalcHandler) Calc(c *gin.Context) {
	var req calcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	ratings := make([]perf.Rating, len(req.Ratings))
	for i, r := range req.Ratings {
		ratings[i] = perf.Rating{Fixed: r.Fixed, Value: r.Value}
	}

	battles := make([]perf.BattleResult, len(req.Battles))
	for i, b := range req.Battles {
		battles[i] = perf.BattleResult{I: b.I, J: b.J, Wij: b.Wij, Wji: b.Wji}
	}

	var opts *perf.Options
	if req.Options != nil {
		opts = &perf.Options{
			MaxIterations: req.Options.MaxIterations,
			Epsilon:       req.Options.Epsilon,
		}
	}

	result, err := perf.Solve(ratings, battles, opts)
	if err != nil {
		switch {
		case errors.Is(err, perf.ErrInvalidRating),
			errors.Is(err, perf.ErrInvalidIndex),
			errors.Is(err, perf.ErrInvalidBattle),
			errors.Is(err, perf.ErrDegeneratePlayer),
			errors.Is(err, perf.ErrInvalidOptions):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		default:
			logger.Error("Calc failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Calculation failed",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ratings":    result.Ratings,
		"iterations": result.Iterations,
	})
}
