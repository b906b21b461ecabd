package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/akofa/fixit/config"
	"github.com/akofa/fixit/models"
	"github.com/akofa/fixit/utils"
)

// StatsController serves aggregate statistics and leaderboards.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a StatsController.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// Overview returns site-wide aggregate counters. Cached briefly since the
// numbers change constantly but nobody needs them fresh.
func (s *StatsController) Overview(ctx *gin.Context) {
	const cacheKey = "cache:stats:overview"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var users, checkins, badges, insights, groups int64
	s.db.Model(&models.User{}).Count(&users)
	s.db.Model(&models.CheckIn{}).Count(&checkins)
	s.db.Model(&models.UserBadge{}).Count(&badges)
	s.db.Model(&models.Insight{}).Count(&insights)
	s.db.Model(&models.Group{}).Count(&groups)

	var checkinsToday int64
	today := time.Now()
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	s.db.Model(&models.CheckIn{}).Where("checkin_date >= ?", midnight).Count(&checkinsToday)

	payload := gin.H{
		"users":          users,
		"checkins":       checkins,
		"checkins_today": checkinsToday,
		"badges":         badges,
		"insights":       insights,
		"groups":         groups,
	}
	utils.CacheSetJSON(cacheKey, wrap(payload), time.Minute)
	utils.Success(ctx, payload)
}

type leaderboardRow struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Value     int    `json:"value"`
}

// Leaderboard returns the top users ranked by xp, streak or stackscore. The
// rendered page is cached for LeaderboardCacheSec.
func (s *StatsController) Leaderboard(ctx *gin.Context) {
	metric := ctx.DefaultQuery("metric", "xp")
	switch metric {
	case "xp", "streak", "stackscore":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40090, "metric must be one of xp, streak, stackscore")
		return
	}

	cacheKey := fmt.Sprintf("cache:leaderboard:%s", metric)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	const topN = 50
	var rows []leaderboardRow
	var err error

	switch metric {
	case "xp":
		err = s.db.Table("user_xps").
			Select("user_xps.user_id, users.username, users.avatar_url, user_xps.total_xp AS value").
			Joins("JOIN users ON users.id = user_xps.user_id").
			Order("user_xps.total_xp DESC").
			Limit(topN).
			Scan(&rows).Error
	case "streak":
		err = s.db.Table("users").
			Select("users.id AS user_id, users.username, users.avatar_url, users.current_streak AS value").
			Where("users.current_streak > 0").
			Order("users.current_streak DESC").
			Limit(topN).
			Scan(&rows).Error
	case "stackscore":
		err = s.db.Table("users").
			Select("users.id AS user_id, users.username, users.avatar_url, users.stack_score AS value").
			Where("users.stack_score > 0").
			Order("users.stack_score DESC").
			Limit(topN).
			Scan(&rows).Error
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50110, "failed to build leaderboard")
		return
	}

	type rankedRow struct {
		Rank int `json:"rank"`
		leaderboardRow
	}
	ranked := make([]rankedRow, 0, len(rows))
	for i, r := range rows {
		ranked = append(ranked, rankedRow{Rank: i + 1, leaderboardRow: r})
	}

	payload := gin.H{"metric": metric, "items": ranked, "total": len(ranked)}
	ttl := time.Duration(config.Get().LeaderboardCacheSec) * time.Second
	utils.CacheSetJSON(cacheKey, wrap(payload), ttl)
	utils.Success(ctx, payload)
}
