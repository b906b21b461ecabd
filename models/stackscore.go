package models

import "time"

// StackScoreHistory is an append-only point-in-time snapshot of a StackScore
// computation, kept for trend display. Never updated or deleted.
type StackScoreHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Score       int       `gorm:"not null" json:"score"`
	Consistency float64   `json:"consistency"`
	Progress    float64   `json:"progress"`
	Balance     float64   `json:"balance"`
	Bonus       int       `json:"bonus"`
	CreatedAt   time.Time `json:"created_at"`
}
