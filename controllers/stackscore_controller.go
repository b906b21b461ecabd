package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/akofa/fixit/progression"
	"github.com/akofa/fixit/utils"
)

// StackScoreController exposes StackScore computation and history.
type StackScoreController struct {
	db        *gorm.DB
	scorer    *progression.StackScorer
	evaluator *progression.Evaluator
}

// NewStackScoreController creates a StackScoreController.
func NewStackScoreController(db *gorm.DB) *StackScoreController {
	return &StackScoreController{
		db:        db,
		scorer:    progression.NewStackScorer(db),
		evaluator: progression.NewEvaluator(db),
	}
}

// Compute recalculates the current user's StackScore, persists it and returns
// the full breakdown plus tier progress.
func (s *StackScoreController) Compute(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res, err := s.scorer.Compute(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to compute score")
		return
	}

	// A new score may cross an achievement threshold; failure here must not
	// fail the computation response.
	var unlocked []progression.Achievement
	if stats, statErr := progression.LoadStats(s.db, userID); statErr == nil {
		unlocked, _ = s.evaluator.Evaluate(userID, stats, progression.CategoryStackScore)
	}

	payload := gin.H{
		"score":     res.Score,
		"tier":      res.Tier,
		"breakdown": res.Breakdown,
		"unlocked":  unlocked,
	}
	if name, needed, more := progression.NextTier(res.Score); more {
		payload["next_tier"] = gin.H{"name": name, "points_needed": needed}
	}
	utils.Success(ctx, payload)
}

// Current returns the cached score from the user row without recomputing.
func (s *StackScoreController) Current(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var score int
	if err := s.db.Table("users").Select("stack_score").
		Where("id = ?", userID).Scan(&score).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to load score")
		return
	}
	if score == 0 {
		// Never computed yet; report the floor.
		score = 300
	}

	payload := gin.H{"score": score, "tier": progression.TierFor(score)}
	if name, needed, more := progression.NextTier(score); more {
		payload["next_tier"] = gin.H{"name": name, "points_needed": needed}
	}
	utils.Success(ctx, payload)
}

// History returns stored score snapshots, newest first.
func (s *StackScoreController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "30"))
	items, err := s.scorer.History(userID, limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to load score history")
		return
	}
	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}
