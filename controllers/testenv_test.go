package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/akofa/fixit/middleware"
	"github.com/akofa/fixit/models"
	"github.com/akofa/fixit/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "controller-test-secret")
	os.Setenv("ADMIN_USERNAMES", "admin")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CheckIn{},
		&models.XPTransaction{},
		&models.UserXP{},
		&models.UserBadge{},
		&models.StackScoreHistory{},
		&models.Group{},
		&models.GroupMember{},
		&models.Challenge{},
		&models.ChallengeCompletion{},
		&models.Insight{},
	))
	return db
}

// newTestRouter wires every API controller against the given store, without
// access logging or CORS.
func newTestRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()

	authController := NewAuthController(db)
	checkinController := NewCheckinController(db)
	progressController := NewProgressController(db)
	scoreController := NewStackScoreController(db)
	communityController := NewCommunityController(db)
	statsController := NewStatsController(db)

	api := r.Group("/api/v1")
	api.POST("/auth/register", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.GET("/stats", statsController.Overview)
	api.GET("/leaderboard", statsController.Leaderboard)
	api.GET("/users/:id", authController.GetUserPublic)
	api.GET("/insights", communityController.InsightFeed)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.GET("/auth/me", authController.Me)
	protected.PATCH("/auth/profile", authController.UpdateProfile)
	protected.POST("/checkins", checkinController.Submit)
	protected.GET("/checkins/today", checkinController.Today)
	protected.GET("/checkins", checkinController.History)
	protected.GET("/streak", checkinController.Streak)
	protected.GET("/progress/level", progressController.Level)
	protected.GET("/progress/xp", progressController.XPHistory)
	protected.GET("/progress/badges", progressController.Badges)
	protected.GET("/progress/achievements", progressController.Achievements)
	protected.POST("/progress/evaluate", progressController.Evaluate)
	protected.POST("/admin/xp", progressController.GrantXP)
	protected.POST("/stackscore/compute", scoreController.Compute)
	protected.GET("/stackscore", scoreController.Current)
	protected.GET("/stackscore/history", scoreController.History)
	protected.POST("/groups", communityController.CreateGroup)
	protected.POST("/groups/join", communityController.JoinGroup)
	protected.DELETE("/groups/:id/membership", communityController.LeaveGroup)
	protected.GET("/groups", communityController.MyGroups)
	protected.GET("/challenges", communityController.ListChallenges)
	protected.POST("/challenges", communityController.CreateChallenge)
	protected.POST("/challenges/:id/complete", communityController.CompleteChallenge)
	protected.POST("/insights", communityController.ShareInsight)
	protected.GET("/insights/generate", communityController.GenerateInsight)

	return r
}

func createUser(t *testing.T, db *gorm.DB, username string) (models.User, string) {
	t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	user := models.User{Username: username, PasswordHash: hash, RegisterIP: "127.0.0.1"}
	require.NoError(t, db.Create(&user).Error)
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(t, err)
	return user, token
}

// dayOffset returns local midnight shifted by offset days.
func dayOffset(offset int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, offset)
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func decodeData(t *testing.T, resp apiResponse, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, out))
}
