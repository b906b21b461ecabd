package controllers

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/akofa/fixit/models"
	"github.com/akofa/fixit/progression"
	"github.com/akofa/fixit/utils"
)

// dailyCheckinXP is credited once per calendar day, on the first submission.
const dailyCheckinXP = 10

// CheckinController handles daily check-in submission and retrieval.
type CheckinController struct {
	db        *gorm.DB
	tracker   *progression.Tracker
	ledger    *progression.Ledger
	evaluator *progression.Evaluator
}

// NewCheckinController creates a CheckinController.
func NewCheckinController(db *gorm.DB) *CheckinController {
	return &CheckinController{
		db:        db,
		tracker:   progression.NewTracker(db),
		ledger:    progression.NewLedger(db),
		evaluator: progression.NewEvaluator(db),
	}
}

type checkinRequest struct {
	BodyScore    float64 `json:"body_score"`
	MindScore    float64 `json:"mind_score"`
	HeartScore   float64 `json:"heart_score"`
	WorkScore    float64 `json:"work_score"`
	PurposeScore float64 `json:"purpose_score"`
	Mood         *int    `json:"mood"`
	Energy       *int    `json:"energy"`
	Reflection   string  `json:"reflection"`
}

// validRating accepts 0-10 in half-point steps.
func validRating(v float64) bool {
	if v < 0 || v > 10 {
		return false
	}
	doubled := v * 2
	return doubled == math.Trunc(doubled)
}

func (r *checkinRequest) validate() string {
	for _, v := range []float64{r.BodyScore, r.MindScore, r.HeartScore, r.WorkScore, r.PurposeScore} {
		if !validRating(v) {
			return "layer ratings must be between 0 and 10 in 0.5 steps"
		}
	}
	if r.Mood != nil && (*r.Mood < 1 || *r.Mood > 10) {
		return "mood must be between 1 and 10"
	}
	if r.Energy != nil && (*r.Energy < 1 || *r.Energy > 10) {
		return "energy must be between 1 and 10"
	}
	if len(r.Reflection) > 5000 {
		return "reflection is too long"
	}
	return ""
}

// Submit records today's check-in. The first submission of the day advances
// the streak; a later submission on the same day overwrites the ratings only,
// leaving streak and check-in counters untouched.
func (c *CheckinController) Submit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req checkinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	if msg := req.validate(); msg != "" {
		utils.Error(ctx, http.StatusBadRequest, 40061, msg)
		return
	}

	req.Reflection = utils.Sanitize(strings.TrimSpace(req.Reflection))

	today := progression.Midnight(time.Now())
	record := models.CheckIn{
		UserID:       userID,
		CheckinDate:  today,
		BodyScore:    req.BodyScore,
		MindScore:    req.MindScore,
		HeartScore:   req.HeartScore,
		WorkScore:    req.WorkScore,
		PurposeScore: req.PurposeScore,
		Mood:         req.Mood,
		Energy:       req.Energy,
		Reflection:   req.Reflection,
	}

	var streak progression.StreakState
	isFirstToday := true
	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			if !utils.IsDuplicateKeyError(err) {
				return err
			}
			// Same-day resubmission: update ratings in place. The unique
			// index already counted this day, so no streak movement.
			isFirstToday = false
			updates := map[string]interface{}{
				"body_score":    req.BodyScore,
				"mind_score":    req.MindScore,
				"heart_score":   req.HeartScore,
				"work_score":    req.WorkScore,
				"purpose_score": req.PurposeScore,
				"mood":          req.Mood,
				"energy":        req.Energy,
				"reflection":    req.Reflection,
			}
			if err := tx.Model(&models.CheckIn{}).
				Where("user_id = ? AND checkin_date = ?", userID, today).
				Updates(updates).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ? AND checkin_date = ?", userID, today).
				First(&record).Error; err != nil {
				return err
			}
			var user models.User
			if err := tx.First(&user, userID).Error; err != nil {
				return err
			}
			streak = progression.StreakState{
				Current: user.CurrentStreak,
				Longest: user.LongestStreak,
				Total:   user.TotalCheckins,
			}
			return nil
		}

		next, err := c.tracker.Record(tx, userID, today)
		if err != nil {
			return err
		}
		streak = next
		return nil
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to record check-in")
		return
	}

	// XP and achievement bookkeeping run outside the transaction: a grant
	// failure must never undo the check-in itself.
	var xpGrant *progression.GrantResult
	var unlocked []progression.Achievement
	if isFirstToday {
		grant, grantErr := c.ledger.Grant(userID, dailyCheckinXP, models.XPActionQuestComplete, "Daily check-in")
		if grantErr == nil {
			xpGrant = grant
		} else if utils.Sugar != nil {
			utils.Sugar.Warnf("daily xp grant failed user=%d err=%v", userID, grantErr)
		}

		if stats, statErr := progression.LoadStats(c.db, userID); statErr == nil {
			unlocked, _ = c.evaluator.Evaluate(userID, stats,
				progression.CategoryStreak, progression.CategoryCheckins,
				progression.CategoryLevels, progression.CategorySpecial)
		} else if utils.Sugar != nil {
			utils.Sugar.Warnf("stats load failed after check-in user=%d err=%v", userID, statErr)
		}
	}

	utils.Success(ctx, gin.H{
		"checkin":      record,
		"streak":       streak,
		"first_of_day": isFirstToday,
		"xp":           xpGrant,
		"unlocked":     unlocked,
	})
}

// Today reports whether the user already checked in today and returns the
// record when present.
func (c *CheckinController) Today(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	today := progression.Midnight(time.Now())
	var record models.CheckIn
	err := c.db.Where("user_id = ? AND checkin_date = ?", userID, today).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Success(ctx, gin.H{"checked_in": false})
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load check-in")
		return
	}
	utils.Success(ctx, gin.H{"checked_in": true, "checkin": record})
}

// History returns the user's check-ins newest first, paginated.
func (c *CheckinController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := c.db.Model(&models.CheckIn{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to count check-ins")
		return
	}

	var items []models.CheckIn
	if err := c.db.Where("user_id = ?", userID).
		Order("checkin_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load check-ins")
		return
	}

	utils.Success(ctx, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Streak returns the user's current streak counters.
func (c *CheckinController) Streak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	// A streak shown after a missed day reads as broken even before today's
	// check-in resets it in storage.
	current := user.CurrentStreak
	if user.LastCheckinAt != nil {
		last := progression.Midnight(*user.LastCheckinAt)
		yesterday := progression.Midnight(time.Now()).AddDate(0, 0, -1)
		if last.Before(yesterday) {
			current = 0
		}
	}

	utils.Success(ctx, gin.H{
		"current_streak":  current,
		"longest_streak":  user.LongestStreak,
		"total_checkins":  user.TotalCheckins,
		"last_checkin_at": user.LastCheckinAt,
	})
}
