package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/akofa/fixit/models"
	"github.com/akofa/fixit/progression"
	"github.com/akofa/fixit/utils"
)

// ProgressController surfaces levels, XP, badges and the achievement catalog.
type ProgressController struct {
	db        *gorm.DB
	ledger    *progression.Ledger
	evaluator *progression.Evaluator
}

// NewProgressController creates a ProgressController.
func NewProgressController(db *gorm.DB) *ProgressController {
	return &ProgressController{
		db:        db,
		ledger:    progression.NewLedger(db),
		evaluator: progression.NewEvaluator(db),
	}
}

// Level returns the user's level status with unlocked features and the next
// unlock threshold.
func (p *ProgressController) Level(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	agg, err := p.ledger.Status(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load xp status")
		return
	}

	status := progression.LevelFor(agg.TotalXP)
	utils.Success(ctx, gin.H{
		"level":             status.Level,
		"total_xp":          agg.TotalXP,
		"lifetime_xp":       agg.LifetimeXP,
		"next_threshold":    status.NextThreshold,
		"xp_to_next":        status.XPToNext,
		"unlocked_features": progression.UnlockedFeatures(status.Level),
		"next_unlock":       progression.NextUnlock(status.Level),
		"last_xp_earned_at": agg.LastXPEarnedAt,
	})
}

// XPHistory returns the ledger entries for the current user, newest first.
func (p *ProgressController) XPHistory(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	items, total, err := p.ledger.History(userID, (page-1)*pageSize, pageSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to load xp history")
		return
	}

	utils.Success(ctx, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GrantXP lets an admin credit XP to any user, recorded as a manual ledger entry.
func (p *ProgressController) GrantXP(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40301, "admin only")
		return
	}

	var req struct {
		UserID      uint   `json:"user_id" binding:"required"`
		Amount      int    `json:"amount" binding:"required"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = "Manual adjustment"
	}

	res, err := p.ledger.Grant(req.UserID, req.Amount, models.XPActionManual, desc)
	if err != nil {
		if err == progression.ErrInvalidAmount {
			utils.Error(ctx, http.StatusBadRequest, 40071, "amount must be positive")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to grant xp")
		return
	}

	// Level milestones may have crossed; sweep the level category.
	if stats, statErr := progression.LoadStats(p.db, req.UserID); statErr == nil {
		_, _ = p.evaluator.Evaluate(req.UserID, stats, progression.CategoryLevels)
	}

	utils.Success(ctx, res)
}

// Badges lists the badges the current user has earned, newest first.
func (p *ProgressController) Badges(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var badges []models.UserBadge
	if err := p.db.Where("user_id = ?", userID).
		Order("earned_at DESC, id DESC").
		Find(&badges).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to load badges")
		return
	}
	utils.Success(ctx, gin.H{"items": badges, "total": len(badges)})
}

// Achievements returns the full catalog annotated with the user's earned state.
func (p *ProgressController) Achievements(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var ids []string
	if err := p.db.Model(&models.UserBadge{}).Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to load badges")
		return
	}
	earned := make(map[string]bool, len(ids))
	for _, id := range ids {
		earned[id] = true
	}

	category := strings.TrimSpace(ctx.Query("category"))

	type entry struct {
		progression.Achievement
		Earned bool `json:"earned"`
	}
	items := make([]entry, 0, len(progression.Catalog))
	for _, a := range progression.Catalog {
		if category != "" && a.Category != category {
			continue
		}
		items = append(items, entry{Achievement: a, Earned: earned[a.ID]})
	}

	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

// Evaluate runs a full achievement sweep for the current user and returns any
// newly unlocked achievements.
func (p *ProgressController) Evaluate(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	stats, err := progression.LoadStats(p.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to load stats")
		return
	}

	unlocked, err := p.evaluator.Evaluate(userID, stats)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50076, "failed to evaluate achievements")
		return
	}
	utils.Success(ctx, gin.H{"unlocked": unlocked, "stats": stats})
}
