package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akofa/fixit/models"
	"github.com/akofa/fixit/progression"
)

func TestComputeStackScore(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createUser(t, db, "stacker")

	// Seed a month of even check-ins.
	for i := 0; i < 10; i++ {
		require.NoError(t, db.Create(&models.CheckIn{
			UserID: user.ID, CheckinDate: dayOffset(-i),
			BodyScore: 7, MindScore: 7, HeartScore: 7, WorkScore: 7, PurposeScore: 7,
		}).Error)
	}
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("total_checkins", 10).Error)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/stackscore/compute", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Score     int                   `json:"score"`
		Tier      string                `json:"tier"`
		Breakdown progression.Breakdown `json:"breakdown"`
		NextTier  *struct {
			Name         string `json:"name"`
			PointsNeeded int    `json:"points_needed"`
		} `json:"next_tier"`
	}
	decodeData(t, resp, &data)
	require.GreaterOrEqual(t, data.Score, 300)
	require.LessOrEqual(t, data.Score, 850)
	require.Equal(t, progression.TierFor(data.Score), data.Tier)
	require.Equal(t, 5, data.Breakdown.Bonus)
	require.InDelta(t, 1.0, data.Breakdown.Balance, 1e-9)

	// The score is cached on the user and a snapshot is stored.
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, data.Score, reloaded.StackScore)

	var snapshots int64
	require.NoError(t, db.Model(&models.StackScoreHistory{}).
		Where("user_id = ?", user.ID).Count(&snapshots).Error)
	require.EqualValues(t, 1, snapshots)
}

func TestCurrentStackScoreDefaultsToFloor(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, token := createUser(t, db, "floor")

	w, resp := doRequest(t, r, http.MethodGet, "/api/v1/stackscore", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Score int    `json:"score"`
		Tier  string `json:"tier"`
	}
	decodeData(t, resp, &data)
	require.Equal(t, 300, data.Score)
	require.Equal(t, "Novice", data.Tier)
}

func TestStackScoreHistoryEndpoint(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, token := createUser(t, db, "historian")

	for i := 0; i < 3; i++ {
		w, _ := doRequest(t, r, http.MethodPost, "/api/v1/stackscore/compute", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, resp := doRequest(t, r, http.MethodGet, "/api/v1/stackscore/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Items []models.StackScoreHistory `json:"items"`
		Total int                        `json:"total"`
	}
	decodeData(t, resp, &data)
	require.Equal(t, 3, data.Total)
}

func TestStackScoreAchievementSweep(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createUser(t, db, "high-score")

	// A long perfect month plus heavy tenure pushes the score past 500.
	for i := 0; i < 30; i++ {
		require.NoError(t, db.Create(&models.CheckIn{
			UserID: user.ID, CheckinDate: dayOffset(-i),
			BodyScore: 9, MindScore: 9, HeartScore: 9, WorkScore: 9, PurposeScore: 9,
		}).Error)
	}
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("total_checkins", 100).Error)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/stackscore/compute", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var badge models.UserBadge
	require.NoError(t, db.Where("user_id = ? AND badge_id = ?", user.ID, "stackscore_500").
		First(&badge).Error)
}
