package service

import (
	"fmt"
	"sync/atomic"

	"github.com/nypc/nypc-perf-backend/internal/models"
	"github.com/nypc/nypc-perf-backend/internal/repository"
	"github.com/nypc/nypc-perf-backend/internal/websocket"
	"github.com/nypc/nypc-perf-backend/pkg/logger"
	"github.com/nypc/nypc-perf-backend/pkg/perf"
)

// RatingService 저장된 배틀 집계로부터 전체 레이팅을 다시 피팅하는 서비스
// 점수는 증분 갱신이 아니라 매번 전체 배틀 로그에서 재계산됨
type RatingService struct {
	playerRepo *repository.PlayerRepository
	battleRepo *repository.BattleRepository
	hub        *websocket.Hub
	opts       perf.Options
	running    atomic.Bool
}

// RecalcSummary 재계산 결과 요약
type RecalcSummary struct {
	Players    int  `json:"players"`
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
}

func NewRatingService(
	playerRepo *repository.PlayerRepository,
	battleRepo *repository.BattleRepository,
	hub *websocket.Hub,
	opts perf.Options,
) *RatingService {
	return &RatingService{
		playerRepo: playerRepo,
		battleRepo: battleRepo,
		hub:        hub,
		opts:       opts,
	}
}

// Recalculate 전체 플레이어 레이팅 재계산
// 1. 플레이어를 생성 순서로 읽어 솔버 인덱스를 부여
// 2. 쌍 단위로 합산된 배틀 집계를 솔버 입력으로 변환
// 3. 피팅 결과를 단일 트랜잭션으로 반영하고 WebSocket으로 알림
func (s *RatingService) Recalculate() (*RecalcSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRecalcInProgress
	}
	defer s.running.Store(false)

	players, err := s.playerRepo.FindAllOrdered()
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}

	tallies, err := s.battleRepo.AggregateByPair()
	if err != nil {
		return nil, fmt.Errorf("failed to load battle tallies: %w", err)
	}

	input, err := buildSolverInput(players, tallies)
	if err != nil {
		return nil, err
	}
	if len(input.ids) == 0 {
		// 판정된 게임이 아직 하나도 없음
		return &RecalcSummary{Players: 0, Iterations: 0, Converged: true}, nil
	}

	result, err := perf.Solve(input.ratings, input.battles, &s.opts)
	if err != nil {
		return nil, fmt.Errorf("solver failed: %w", err)
	}

	updates := make(map[string]float64)
	for idx, id := range input.ids {
		if !input.ratings[idx].Fixed {
			updates[id] = result.Ratings[idx]
		}
	}

	if err := s.playerRepo.UpdateRatings(updates); err != nil {
		return nil, fmt.Errorf("failed to persist ratings: %w", err)
	}

	converged := result.Iterations < s.opts.MaxIterations
	if !converged {
		logger.Warn("Rating fit did not converge within iteration bound",
			"iterations", result.Iterations,
			"players", len(input.ids),
		)
	}

	summary := &RecalcSummary{
		Players:    len(input.ids),
		Iterations: result.Iterations,
		Converged:  converged,
	}

	if s.hub != nil {
		s.hub.Broadcast("rating_update", websocket.RatingUpdateMessage{
			Iterations: summary.Iterations,
			Converged:  summary.Converged,
			Players:    summary.Players,
		})
	}

	return summary, nil
}

// solverInput 솔버 입력과 인덱스 <-> 플레이어 ID 매핑
type solverInput struct {
	ratings []perf.Rating
	battles []perf.BattleResult
	ids     []string // 솔버 인덱스 -> 플레이어 ID
}

// buildSolverInput converts stored players and pair tallies into solver
// input. Players are indexed in the order given. Non-fixed players without
// any decided game are left out so that a single idle player cannot fail
// the whole refit; their stored rating simply stays as is.
func buildSolverInput(players []*models.Player, tallies []*models.PairTally) (*solverInput, error) {
	decided := make(map[string]float64, len(players))
	known := make(map[string]*models.Player, len(players))
	for _, p := range players {
		known[p.ID] = p
		decided[p.ID] = 0
	}

	for _, t := range tallies {
		if _, ok := known[t.PlayerI]; !ok {
			return nil, fmt.Errorf("%w: battle tally references unknown player %s", ErrPlayerNotFound, t.PlayerI)
		}
		if _, ok := known[t.PlayerJ]; !ok {
			return nil, fmt.Errorf("%w: battle tally references unknown player %s", ErrPlayerNotFound, t.PlayerJ)
		}
		decided[t.PlayerI] += t.WinsI + t.WinsJ
		decided[t.PlayerJ] += t.WinsI + t.WinsJ
	}

	input := &solverInput{}
	index := make(map[string]int, len(players))
	for _, p := range players {
		if !p.Fixed && decided[p.ID] == 0 {
			continue
		}
		index[p.ID] = len(input.ids)
		input.ids = append(input.ids, p.ID)
		input.ratings = append(input.ratings, perf.Rating{Fixed: p.Fixed, Value: p.Rating})
	}

	for _, t := range tallies {
		if t.WinsI+t.WinsJ == 0 {
			// 판정 없는 집계는 우도에 기여하지 않음
			continue
		}
		input.battles = append(input.battles, perf.BattleResult{
			I:   index[t.PlayerI],
			J:   index[t.PlayerJ],
			Wij: t.WinsI,
			Wji: t.WinsJ,
		})
	}

	return input, nil
}
