package models

import "time"

// Player 레이팅 대상 참가자. Rating은 로그 스케일 퍼포먼스 추정치이며
// Fixed가 true이면 스케일 앵커로 사용되어 재계산 시 변경되지 않음
type Player struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Rating    float64   `json:"rating" db:"rating"`
	Fixed     bool      `json:"fixed" db:"fixed"`
	Wins      float64   `json:"wins" db:"wins"`
	Losses    float64   `json:"losses" db:"losses"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type CreatePlayerRequest struct {
	Name   string  `json:"name" binding:"required,min=1,max=100"`
	Rating float64 `json:"rating"`
	Fixed  bool    `json:"fixed"`
}
