package models

import "time"

// Battle 두 플레이어 사이의 승패 집계 레코드
// WinsI는 PlayerI의 승수, WinsJ는 PlayerJ의 승수. 같은 쌍의 레코드가
// 여러 개 쌓일 수 있으며 재계산 시 합산됨
type Battle struct {
	ID         string    `json:"id" db:"id"`
	PlayerI    string    `json:"playerI" db:"player_i"`
	PlayerJ    string    `json:"playerJ" db:"player_j"`
	WinsI      float64   `json:"winsI" db:"wins_i"`
	WinsJ      float64   `json:"winsJ" db:"wins_j"`
	ReporterID string    `json:"reporterId" db:"reporter_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

type ReportBattleRequest struct {
	PlayerI string  `json:"playerI" binding:"required"`
	PlayerJ string  `json:"playerJ" binding:"required"`
	WinsI   float64 `json:"winsI"`
	WinsJ   float64 `json:"winsJ"`
}

// PairTally 쌍 단위로 합산된 승패 (솔버 입력으로 변환됨)
type PairTally struct {
	PlayerI string  `json:"playerI"`
	PlayerJ string  `json:"playerJ"`
	WinsI   float64 `json:"winsI"`
	WinsJ   float64 `json:"winsJ"`
}
