package models

import "time"

// CheckIn stores one self-rating per user per calendar day. CheckinDate is
// always truncated to local midnight; the unique index on (user_id, checkin_date)
// is the authoritative guard against double submission for the same day.
type CheckIn struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;uniqueIndex:idx_checkin_user_date;not null" json:"user_id"`
	CheckinDate time.Time `gorm:"uniqueIndex:idx_checkin_user_date;not null" json:"checkin_date"`

	// Five layer ratings, 0-10 in 0.5 steps.
	BodyScore    float64 `gorm:"not null" json:"body_score"`
	MindScore    float64 `gorm:"not null" json:"mind_score"`
	HeartScore   float64 `gorm:"not null" json:"heart_score"`
	WorkScore    float64 `gorm:"not null" json:"work_score"`
	PurposeScore float64 `gorm:"not null" json:"purpose_score"`

	Mood       *int   `json:"mood,omitempty"`   // optional, 1-10
	Energy     *int   `json:"energy,omitempty"` // optional, 1-10
	Reflection string `gorm:"type:text" json:"reflection"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LayerScores returns the five ratings in canonical order.
func (c *CheckIn) LayerScores() []float64 {
	return []float64{c.BodyScore, c.MindScore, c.HeartScore, c.WorkScore, c.PurposeScore}
}

// TotalScore is the sum of the five layer ratings.
func (c *CheckIn) TotalScore() float64 {
	return c.BodyScore + c.MindScore + c.HeartScore + c.WorkScore + c.PurposeScore
}
