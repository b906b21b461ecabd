package progression

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/akofa/fixit/models"
)

// StreakState bundles the three streak counters cached on the user row.
type StreakState struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
	Total   int `json:"total_checkins"`
}

// Midnight truncates a time to local midnight of its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextStreak advances the streak counters for a first-of-day check-in.
// The streak only continues when the most recent prior check-in was exactly
// yesterday; any gap of two or more days resets it to 1.
func NextStreak(prev StreakState, lastCheckin *time.Time, today time.Time) StreakState {
	day := Midnight(today)
	next := StreakState{Current: 1, Longest: prev.Longest, Total: prev.Total + 1}
	if lastCheckin != nil && Midnight(*lastCheckin).Equal(day.AddDate(0, 0, -1)) {
		next.Current = prev.Current + 1
	}
	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	return next
}

// Tracker maintains the per-user streak counters.
type Tracker struct {
	db *gorm.DB
}

// NewTracker creates a streak Tracker bound to a database handle.
func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db}
}

// Record advances the streak for a NEW check-in on the given day and persists
// the counters onto the user row. It must only be called for a first-of-day
// insert, never for a same-day resubmission, and is expected to run inside
// the check-in transaction (pass the tx handle).
func (t *Tracker) Record(tx *gorm.DB, userID uint, today time.Time) (StreakState, error) {
	if tx == nil {
		tx = t.db
	}

	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return StreakState{}, err
	}

	day := Midnight(today)

	// Most recent check-in strictly before today decides continue vs reset.
	var last models.CheckIn
	var lastDate *time.Time
	err := tx.Where("user_id = ? AND checkin_date < ?", userID, day).
		Order("checkin_date DESC").
		First(&last).Error
	if err == nil {
		d := last.CheckinDate
		lastDate = &d
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return StreakState{}, err
	}

	prev := StreakState{Current: user.CurrentStreak, Longest: user.LongestStreak, Total: user.TotalCheckins}
	next := NextStreak(prev, lastDate, day)

	now := time.Now()
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"current_streak":  next.Current,
			"longest_streak":  next.Longest,
			"total_checkins":  next.Total,
			"last_checkin_at": now,
		}).Error; err != nil {
		return StreakState{}, err
	}

	return next, nil
}
