package service

import (
	"fmt"
	"math"

	"github.com/nypc/nypc-perf-backend/internal/models"
	"github.com/nypc/nypc-perf-backend/internal/repository"
)

type PlayerService struct {
	playerRepo *repository.PlayerRepository
	battleRepo *repository.BattleRepository
}

func NewPlayerService(playerRepo *repository.PlayerRepository, battleRepo *repository.BattleRepository) *PlayerService {
	return &PlayerService{
		playerRepo: playerRepo,
		battleRepo: battleRepo,
	}
}

// Create 새 플레이어 생성. 초기 레이팅과 앵커 여부는 호출자가 지정
func (s *PlayerService) Create(name string, rating float64, fixed bool) (*models.Player, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return nil, ErrInvalidInput
	}

	player, err := s.playerRepo.Create(name, rating, fixed)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// GetByID ID로 플레이어 조회
func (s *PlayerService) GetByID(id string) (*models.Player, error) {
	player, err := s.playerRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	return player, nil
}

// List 전체 플레이어 조회 (생성 순서)
func (s *PlayerService) List() ([]*models.Player, error) {
	players, err := s.playerRepo.FindAllOrdered()
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return players, nil
}

// Leaderboard 레이팅 상위 플레이어 조회
func (s *PlayerService) Leaderboard(limit int) ([]*models.Player, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	players, err := s.playerRepo.Leaderboard(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return players, nil
}

// ReportBattle 배틀 결과 기록 및 플레이어 승패 누계 갱신
// 레이팅 자체는 건드리지 않음: 다음 전체 재계산에서 반영됨
func (s *PlayerService) ReportBattle(reporterID string, req *models.ReportBattleRequest) (*models.Battle, error) {
	if req.PlayerI == req.PlayerJ {
		return nil, ErrSamePlayer
	}
	if !(req.WinsI >= 0) || !(req.WinsJ >= 0) ||
		math.IsInf(req.WinsI, 0) || math.IsInf(req.WinsJ, 0) {
		return nil, ErrInvalidInput
	}

	// 두 플레이어 존재 확인
	for _, id := range []string{req.PlayerI, req.PlayerJ} {
		player, err := s.playerRepo.FindByID(id)
		if err != nil {
			return nil, fmt.Errorf("failed to check player: %w", err)
		}
		if player == nil {
			return nil, ErrPlayerNotFound
		}
	}

	battle, err := s.battleRepo.Create(req.PlayerI, req.PlayerJ, req.WinsI, req.WinsJ, reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to record battle: %w", err)
	}

	if err := s.playerRepo.AddResult(req.PlayerI, req.WinsI, req.WinsJ); err != nil {
		return nil, fmt.Errorf("failed to update player tally: %w", err)
	}
	if err := s.playerRepo.AddResult(req.PlayerJ, req.WinsJ, req.WinsI); err != nil {
		return nil, fmt.Errorf("failed to update player tally: %w", err)
	}

	return battle, nil
}

// ListBattles 최근 배틀 조회 (페이지네이션)
func (s *PlayerService) ListBattles(page, pageSize int) ([]*models.Battle, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	battles, err := s.battleRepo.FindRecent(pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list battles: %w", err)
	}

	return battles, nil
}
