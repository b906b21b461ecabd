package models

import "time"

// Group is a community circle users can join.
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description"`
	InviteCode  string    `gorm:"size:36;uniqueIndex" json:"invite_code"`
	CreatedBy   uint      `gorm:"index;not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GroupMember links a user to a group, at most once per pair.
type GroupMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"index;uniqueIndex:idx_member_group_user;not null" json:"group_id"`
	UserID    uint      `gorm:"index;uniqueIndex:idx_member_group_user;not null" json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Challenge is a community challenge with an XP reward on completion.
type Challenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:128;not null" json:"title"`
	Description string    `gorm:"size:512" json:"description"`
	XPReward    int       `gorm:"default:0" json:"xp_reward"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChallengeCompletion marks a challenge done by a user, at most once per pair.
type ChallengeCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChallengeID uint      `gorm:"index;uniqueIndex:idx_completion_challenge_user;not null" json:"challenge_id"`
	UserID      uint      `gorm:"index;uniqueIndex:idx_completion_challenge_user;not null" json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Insight is a textual insight a user shared to the community feed.
// Content is sanitized before storage.
type Insight struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Layer     string    `gorm:"size:32" json:"layer"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}
