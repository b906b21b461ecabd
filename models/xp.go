package models

import "time"

// XP transaction action types. The ledger is append-only; rows are never
// mutated or deleted.
const (
	XPActionAchievement   = "achievement"
	XPActionQuestComplete = "quest_complete"
	XPActionManual        = "manual"
)

// XPTransaction is a single append-only XP ledger entry.
type XPTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Amount      int       `gorm:"not null" json:"amount"`
	ActionType  string    `gorm:"size:32;not null" json:"action_type"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserXP is the per-user XP aggregate. TotalXP is incremented atomically in
// the same transaction that appends the ledger entry, and CurrentLevel is
// recomputed from TotalXP inside that transaction so the two never diverge.
// LifetimeXP is monotonically non-decreasing.
type UserXP struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalXP        int        `gorm:"default:0" json:"total_xp"`
	LifetimeXP     int        `gorm:"default:0" json:"lifetime_xp"`
	CurrentLevel   int        `gorm:"default:1" json:"current_level"`
	LastXPEarnedAt *time.Time `json:"last_xp_earned_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
