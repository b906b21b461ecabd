package models

import "time"

// UserBadge records an earned achievement. Uniqueness is keyed on the
// catalog's stable achievement id, not the display name, so renaming an
// achievement cannot grant it twice. Immutable once created.
type UserBadge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;uniqueIndex:idx_badge_user_type_id;not null" json:"user_id"`
	BadgeType   string    `gorm:"size:32;uniqueIndex:idx_badge_user_type_id;not null" json:"badge_type"`
	BadgeID     string    `gorm:"size:64;uniqueIndex:idx_badge_user_type_id;not null" json:"badge_id"`
	BadgeName   string    `gorm:"size:128;not null" json:"badge_name"`
	Description string    `gorm:"size:255" json:"description"`
	Rarity      string    `gorm:"size:16" json:"rarity"`
	EarnedAt    time.Time `json:"earned_at"`
	CreatedAt   time.Time `json:"created_at"`
}
