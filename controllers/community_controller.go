package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/akofa/fixit/models"
	"github.com/akofa/fixit/progression"
	"github.com/akofa/fixit/utils"
)

// Layers a check-in rates and an insight may reference.
var knownLayers = map[string]bool{
	"body": true, "mind": true, "heart": true, "work": true, "purpose": true,
}

// CommunityController handles groups, challenges and the insight feed.
type CommunityController struct {
	db        *gorm.DB
	ledger    *progression.Ledger
	evaluator *progression.Evaluator
}

// NewCommunityController creates a CommunityController.
func NewCommunityController(db *gorm.DB) *CommunityController {
	return &CommunityController{
		db:        db,
		ledger:    progression.NewLedger(db),
		evaluator: progression.NewEvaluator(db),
	}
}

// CreateGroup creates a group with a fresh invite code; the creator joins
// automatically. Requires the community_groups feature unlock.
func (cc *CommunityController) CreateGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !cc.hasFeature(userID, "community_groups") {
		utils.Error(ctx, http.StatusForbidden, 40310, "community groups unlock at level 15")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required,min=2,max=128"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	group := models.Group{
		Name:        strings.TrimSpace(req.Name),
		Description: utils.Sanitize(strings.TrimSpace(req.Description)),
		InviteCode:  uuid.NewString(),
		CreatedBy:   userID,
	}

	err := cc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		member := models.GroupMember{GroupID: group.ID, UserID: userID, JoinedAt: time.Now()}
		return tx.Create(&member).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to create group")
		return
	}

	cc.sweepSocial(userID)
	utils.Success(ctx, group)
}

// JoinGroup adds the current user to the group matching an invite code.
func (cc *CommunityController) JoinGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, "invalid request payload")
		return
	}

	var group models.Group
	if err := cc.db.Where("invite_code = ?", strings.TrimSpace(req.InviteCode)).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to load group")
		return
	}

	member := models.GroupMember{GroupID: group.ID, UserID: userID, JoinedAt: time.Now()}
	if err := cc.db.Create(&member).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			utils.Error(ctx, http.StatusConflict, 40910, "already a member")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to join group")
		return
	}

	cc.sweepSocial(userID)
	utils.Success(ctx, gin.H{"group": group, "joined_at": member.JoinedAt})
}

// LeaveGroup removes the current user from a group.
func (cc *CommunityController) LeaveGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	groupID := ctx.Param("id")
	res := cc.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to leave group")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40421, "not a member of this group")
		return
	}
	utils.Success(ctx, gin.H{"message": "left group"})
}

// MyGroups lists the groups the current user belongs to, with member counts.
func (cc *CommunityController) MyGroups(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var groups []models.Group
	if err := cc.db.
		Joins("JOIN group_members ON group_members.group_id = groups.id AND group_members.user_id = ?", userID).
		Order("groups.created_at DESC").
		Find(&groups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50094, "failed to load groups")
		return
	}

	type groupView struct {
		models.Group
		MemberCount int64 `json:"member_count"`
	}
	items := make([]groupView, 0, len(groups))
	for _, g := range groups {
		var count int64
		cc.db.Model(&models.GroupMember{}).Where("group_id = ?", g.ID).Count(&count)
		items = append(items, groupView{Group: g, MemberCount: count})
	}

	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

// CreateChallenge lets a user with the challenge_creation unlock (or an admin)
// publish a challenge.
func (cc *CommunityController) CreateChallenge(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !isAdmin(ctx) && !cc.hasFeature(userID, "challenge_creation") {
		utils.Error(ctx, http.StatusForbidden, 40311, "challenge creation unlocks at level 25")
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required,min=2,max=128"`
		Description string `json:"description"`
		XPReward    int    `json:"xp_reward"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid request payload")
		return
	}
	if req.XPReward < 0 || req.XPReward > 500 {
		utils.Error(ctx, http.StatusBadRequest, 40083, "xp reward must be between 0 and 500")
		return
	}

	challenge := models.Challenge{
		Title:       strings.TrimSpace(req.Title),
		Description: utils.Sanitize(strings.TrimSpace(req.Description)),
		XPReward:    req.XPReward,
	}
	if err := cc.db.Create(&challenge).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to create challenge")
		return
	}
	utils.Success(ctx, challenge)
}

// ListChallenges lists challenges annotated with the user's completion state.
func (cc *CommunityController) ListChallenges(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var challenges []models.Challenge
	if err := cc.db.Order("created_at DESC").Find(&challenges).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50096, "failed to load challenges")
		return
	}

	var doneIDs []uint
	cc.db.Model(&models.ChallengeCompletion{}).Where("user_id = ?", userID).
		Pluck("challenge_id", &doneIDs)
	done := make(map[uint]bool, len(doneIDs))
	for _, id := range doneIDs {
		done[id] = true
	}

	type challengeView struct {
		models.Challenge
		Completed bool `json:"completed"`
	}
	items := make([]challengeView, 0, len(challenges))
	for _, c := range challenges {
		items = append(items, challengeView{Challenge: c, Completed: done[c.ID]})
	}

	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

// CompleteChallenge marks a challenge done and credits its XP reward once.
func (cc *CommunityController) CompleteChallenge(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var challenge models.Challenge
	if err := cc.db.First(&challenge, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "challenge not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50097, "failed to load challenge")
		return
	}

	completion := models.ChallengeCompletion{
		ChallengeID: challenge.ID,
		UserID:      userID,
		CompletedAt: time.Now(),
	}
	if err := cc.db.Create(&completion).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			utils.Error(ctx, http.StatusConflict, 40911, "challenge already completed")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50098, "failed to record completion")
		return
	}

	var grant *progression.GrantResult
	if challenge.XPReward > 0 {
		var err error
		grant, err = cc.ledger.Grant(userID, challenge.XPReward, models.XPActionQuestComplete,
			fmt.Sprintf("Completed challenge: %s", challenge.Title))
		if err != nil && utils.Sugar != nil {
			utils.Sugar.Warnf("challenge xp grant failed user=%d challenge=%d err=%v", userID, challenge.ID, err)
		}
	}

	var unlocked []progression.Achievement
	if stats, statErr := progression.LoadStats(cc.db, userID); statErr == nil {
		unlocked, _ = cc.evaluator.Evaluate(userID, stats,
			progression.CategoryChallenges, progression.CategoryLevels)
	}

	utils.Success(ctx, gin.H{
		"completed_at": completion.CompletedAt,
		"xp":           grant,
		"unlocked":     unlocked,
	})
}

var layerNames = [5]string{"body", "mind", "heart", "work", "purpose"}

// GenerateInsight derives a textual insight from the latest check-in's layer
// ratings. Deterministic for a given check-in; nothing is stored.
func (cc *CommunityController) GenerateInsight(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var latest models.CheckIn
	err := cc.db.Where("user_id = ?", userID).
		Order("checkin_date DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "no check-ins yet")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50101, "failed to load check-in")
		return
	}

	scores := latest.LayerScores()
	low, high := 0, 0
	for i, s := range scores {
		if s < scores[low] {
			low = i
		}
		if s > scores[high] {
			high = i
		}
	}

	var content string
	if scores[high]-scores[low] <= 1 {
		content = fmt.Sprintf(
			"Your stack is well balanced today, with all five layers between %.1f and %.1f. Keep the rhythm going.",
			scores[low], scores[high])
	} else {
		content = fmt.Sprintf(
			"Your %s layer is leading at %.1f, while %s sits at %.1f. Consider giving %s some attention tomorrow.",
			layerNames[high], scores[high], layerNames[low], scores[low], layerNames[low])
	}

	utils.Success(ctx, gin.H{
		"content":      content,
		"layer":        layerNames[low],
		"checkin_date": latest.CheckinDate,
	})
}

// ShareInsight publishes a sanitized insight to the community feed. Requires
// the insight_sharing feature unlock.
func (cc *CommunityController) ShareInsight(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !cc.hasFeature(userID, "insight_sharing") {
		utils.Error(ctx, http.StatusForbidden, 40312, "insight sharing unlocks at level 15")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,min=2"`
		Layer   string `json:"layer"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40084, "invalid request payload")
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40085, "content is empty after sanitization")
		return
	}
	if len(content) > 2000 {
		utils.Error(ctx, http.StatusBadRequest, 40086, "content is too long")
		return
	}

	layer := strings.ToLower(strings.TrimSpace(req.Layer))
	if layer != "" && !knownLayers[layer] {
		utils.Error(ctx, http.StatusBadRequest, 40087, "unknown layer")
		return
	}

	insight := models.Insight{UserID: userID, Content: content, Layer: layer}
	if err := cc.db.Create(&insight).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50099, "failed to share insight")
		return
	}

	cc.sweepSocial(userID)
	utils.Success(ctx, insight)
}

// InsightFeed returns recent insights with author info, paginated.
func (cc *CommunityController) InsightFeed(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	q := cc.db.Model(&models.Insight{})
	if layer := strings.ToLower(strings.TrimSpace(ctx.Query("layer"))); layer != "" {
		q = q.Where("layer = ?", layer)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to count insights")
		return
	}

	var insights []models.Insight
	if err := q.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&insights).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to load insights")
		return
	}

	type insightView struct {
		ID        uint      `json:"id"`
		Content   string    `json:"content"`
		Layer     string    `json:"layer"`
		CreatedAt time.Time `json:"created_at"`
		Author    gin.H     `json:"author"`
	}
	items := make([]insightView, 0, len(insights))
	for _, in := range insights {
		items = append(items, insightView{
			ID:        in.ID,
			Content:   in.Content,
			Layer:     in.Layer,
			CreatedAt: in.CreatedAt,
			Author: gin.H{
				"id":         in.User.ID,
				"username":   in.User.Username,
				"avatar_url": in.User.AvatarURL,
			},
		})
	}

	utils.Success(ctx, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// hasFeature reports whether the user's level has unlocked a feature flag.
func (cc *CommunityController) hasFeature(userID uint, feature string) bool {
	level := 1
	var agg models.UserXP
	if err := cc.db.Where("user_id = ?", userID).First(&agg).Error; err == nil {
		level = agg.CurrentLevel
	}
	for _, f := range progression.UnlockedFeatures(level) {
		if f == feature {
			return true
		}
	}
	return false
}

// sweepSocial runs a best-effort social-category achievement sweep.
func (cc *CommunityController) sweepSocial(userID uint) {
	stats, err := progression.LoadStats(cc.db, userID)
	if err != nil {
		return
	}
	_, _ = cc.evaluator.Evaluate(userID, stats, progression.CategorySocial)
}
