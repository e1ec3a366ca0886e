package repository

import (
	"database/sql"
	"fmt"

	"github.com/nypc/nypc-perf-backend/internal/models"
	"github.com/nypc/nypc-perf-backend/pkg/database"
)

type PlayerRepository struct {
	db *database.DB
}

func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create 새 플레이어 생성
func (r *PlayerRepository) Create(name string, rating float64, fixed bool) (*models.Player, error) {
	query := `
		INSERT INTO players (name, rating, fixed)
		VALUES ($1, $2, $3)
		RETURNING id, name, rating, fixed, wins, losses, created_at, updated_at
	`

	player := &models.Player{}
	err := r.db.QueryRow(query, name, rating, fixed).Scan(
		&player.ID,
		&player.Name,
		&player.Rating,
		&player.Fixed,
		&player.Wins,
		&player.Losses,
		&player.CreatedAt,
		&player.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// FindByID ID로 플레이어 찾기
func (r *PlayerRepository) FindByID(id string) (*models.Player, error) {
	query := `
		SELECT id, name, rating, fixed, wins, losses, created_at, updated_at
		FROM players
		WHERE id = $1
	`

	player := &models.Player{}
	err := r.db.QueryRow(query, id).Scan(
		&player.ID,
		&player.Name,
		&player.Rating,
		&player.Fixed,
		&player.Wins,
		&player.Losses,
		&player.CreatedAt,
		&player.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find player: %w", err)
	}

	return player, nil
}

// FindAllOrdered 생성 순서대로 전체 플레이어 조회
// 재계산 시 솔버 인덱스가 이 순서로 부여되므로 순서가 안정적이어야 함
func (r *PlayerRepository) FindAllOrdered() ([]*models.Player, error) {
	query := `
		SELECT id, name, rating, fixed, wins, losses, created_at, updated_at
		FROM players
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// Leaderboard 레이팅 내림차순 상위 플레이어 조회
func (r *PlayerRepository) Leaderboard(limit int) ([]*models.Player, error) {
	query := `
		SELECT id, name, rating, fixed, wins, losses, created_at, updated_at
		FROM players
		ORDER BY rating DESC, name
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// UpdateRatings 재계산된 레이팅 일괄 반영 (단일 트랜잭션)
func (r *PlayerRepository) UpdateRatings(ratings map[string]float64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE players SET rating = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		return fmt.Errorf("failed to prepare update: %w", err)
	}
	defer stmt.Close()

	for id, rating := range ratings {
		if _, err := stmt.Exec(rating, id); err != nil {
			return fmt.Errorf("failed to update rating for player %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rating updates: %w", err)
	}

	return nil
}

// AddResult 배틀 보고 시 승/패 누계 갱신
func (r *PlayerRepository) AddResult(playerID string, wins, losses float64) error {
	query := `
		UPDATE players
		SET wins = wins + $1, losses = losses + $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.db.Exec(query, wins, losses, playerID)
	if err != nil {
		return fmt.Errorf("failed to add result: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// Count 전체 플레이어 수
func (r *PlayerRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM players`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

func scanPlayers(rows *sql.Rows) ([]*models.Player, error) {
	var players []*models.Player
	for rows.Next() {
		player := &models.Player{}
		err := rows.Scan(
			&player.ID,
			&player.Name,
			&player.Rating,
			&player.Fixed,
			&player.Wins,
			&player.Losses,
			&player.CreatedAt,
			&player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}

	return players, rows.Err()
}
