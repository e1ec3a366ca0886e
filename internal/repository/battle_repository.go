package repository

import (
	"fmt"

	"github.com/nypc/nypc-perf-backend/internal/models"
	"github.com/nypc/nypc-perf-backend/pkg/database"
)

type BattleRepository struct {
	db *database.DB
}

func NewBattleRepository(db *database.DB) *BattleRepository {
	return &BattleRepository{db: db}
}

// Create 배틀 결과 기록
func (r *BattleRepository) Create(playerI, playerJ string, winsI, winsJ float64, reporterID string) (*models.Battle, error) {
	query := `
		INSERT INTO battles (player_i, player_j, wins_i, wins_j, reporter_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, player_i, player_j, wins_i, wins_j, reporter_id, created_at
	`

	battle := &models.Battle{}
	err := r.db.QueryRow(query, playerI, playerJ, winsI, winsJ, reporterID).Scan(
		&battle.ID,
		&battle.PlayerI,
		&battle.PlayerJ,
		&battle.WinsI,
		&battle.WinsJ,
		&battle.ReporterID,
		&battle.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create battle: %w", err)
	}

	return battle, nil
}

// FindRecent 최근 배틀 목록 (페이지네이션)
func (r *BattleRepository) FindRecent(limit, offset int) ([]*models.Battle, error) {
	query := `
		SELECT id, player_i, player_j, wins_i, wins_j, reporter_id, created_at
		FROM battles
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query battles: %w", err)
	}
	defer rows.Close()

	var battles []*models.Battle
	for rows.Next() {
		battle := &models.Battle{}
		err := rows.Scan(
			&battle.ID,
			&battle.PlayerI,
			&battle.PlayerJ,
			&battle.WinsI,
			&battle.WinsJ,
			&battle.ReporterID,
			&battle.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan battle: %w", err)
		}
		battles = append(battles, battle)
	}

	return battles, rows.Err()
}

// AggregateByPair 쌍 단위 승패 합산 (방향 무관하게 정규화)
// 솔버는 쌍별로 합산된 집계를 받으므로 중복 레코드를 여기서 병합함
func (r *BattleRepository) AggregateByPair() ([]*models.PairTally, error) {
	query := `
		SELECT
			LEAST(player_i, player_j) AS player_a,
			GREATEST(player_i, player_j) AS player_b,
			SUM(CASE WHEN player_i < player_j THEN wins_i ELSE wins_j END) AS wins_a,
			SUM(CASE WHEN player_i < player_j THEN wins_j ELSE wins_i END) AS wins_b
		FROM battles
		GROUP BY 1, 2
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate battles: %w", err)
	}
	defer rows.Close()

	var tallies []*models.PairTally
	for rows.Next() {
		tally := &models.PairTally{}
		if err := rows.Scan(&tally.PlayerI, &tally.PlayerJ, &tally.WinsI, &tally.WinsJ); err != nil {
			return nil, fmt.Errorf("failed to scan pair tally: %w", err)
		}
		tallies = append(tallies, tally)
	}

	return tallies, rows.Err()
}

// Count 전체 배틀 레코드 수
func (r *BattleRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM battles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count battles: %w", err)
	}
	return count, nil
}
