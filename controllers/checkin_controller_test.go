package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akofa/fixit/models"
	"github.com/akofa/fixit/progression"
)

func submitBody(score float64) map[string]interface{} {
	return map[string]interface{}{
		"body_score":    score,
		"mind_score":    score,
		"heart_score":   score,
		"work_score":    score,
		"purpose_score": score,
	}
}

func TestSubmitFirstCheckin(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createUser(t, db, "first")

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/checkins", token, submitBody(7))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, resp.Code)

	var data struct {
		FirstOfDay bool                      `json:"first_of_day"`
		Streak     progression.StreakState   `json:"streak"`
		Unlocked   []progression.Achievement `json:"unlocked"`
	}
	decodeData(t, resp, &data)
	require.True(t, data.FirstOfDay)
	require.Equal(t, 1, data.Streak.Current)
	require.Equal(t, 1, data.Streak.Total)

	// The very first check-in earns the First Step badge.
	ids := make([]string, 0, len(data.Unlocked))
	for _, a := range data.Unlocked {
		ids = append(ids, a.ID)
	}
	require.Contains(t, ids, "checkins_1")

	var badge models.UserBadge
	require.NoError(t, db.Where("user_id = ? AND badge_id = ?", user.ID, "checkins_1").First(&badge).Error)

	// Daily XP plus the First Step reward both land in the ledger.
	var agg models.UserXP
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&agg).Error)
	require.Equal(t, 20, agg.TotalXP)

	var daily models.XPTransaction
	require.NoError(t, db.Where("user_id = ? AND action_type = ?", user.ID, models.XPActionQuestComplete).
		First(&daily).Error)
	require.Equal(t, 10, daily.Amount)
}

func TestSubmitSameDayTwice(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createUser(t, db, "twice")

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/checkins", token, submitBody(5))
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/checkins", token, submitBody(9))
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		FirstOfDay bool                    `json:"first_of_day"`
		Streak     progression.StreakState `json:"streak"`
		Checkin    models.CheckIn          `json:"checkin"`
	}
	decodeData(t, resp, &data)
	require.False(t, data.FirstOfDay, "second submission of the day is an update")
	require.Equal(t, 1, data.Streak.Total, "counters must not move on resubmission")
	require.Equal(t, 1, data.Streak.Current)
	require.Equal(t, 9.0, data.Checkin.BodyScore, "ratings are overwritten")

	var count int64
	require.NoError(t, db.Model(&models.CheckIn{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, 1, reloaded.TotalCheckins)

	// Daily XP is credited once, not per submission.
	var entries int64
	require.NoError(t, db.Model(&models.XPTransaction{}).
		Where("user_id = ? AND action_type = ?", user.ID, models.XPActionQuestComplete).
		Count(&entries).Error)
	require.EqualValues(t, 1, entries)
}

func TestSubmitRejectsInvalidRatings(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, token := createUser(t, db, "invalid")

	for _, score := range []float64{-1, 10.5, 7.3} {
		w, resp := doRequest(t, r, http.MethodPost, "/api/v1/checkins", token, submitBody(score))
		require.Equal(t, http.StatusBadRequest, w.Code, "score %v must be rejected", score)
		require.Equal(t, 40061, resp.Code)
	}

	// Half steps are fine.
	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/checkins", token, submitBody(7.5))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitRejectsBadMood(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, token := createUser(t, db, "moody")

	body := submitBody(5)
	body["mood"] = 11
	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/checkins", token, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitRequiresAuth(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/checkins", "", submitBody(5))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTodayEndpoint(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, token := createUser(t, db, "today")

	w, resp := doRequest(t, r, http.MethodGet, "/api/v1/checkins/today", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var before struct {
		CheckedIn bool `json:"checked_in"`
	}
	decodeData(t, resp, &before)
	require.False(t, before.CheckedIn)

	doRequest(t, r, http.MethodPost, "/api/v1/checkins", token, submitBody(6))

	w, resp = doRequest(t, r, http.MethodGet, "/api/v1/checkins/today", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after struct {
		CheckedIn bool            `json:"checked_in"`
		Checkin   *models.CheckIn `json:"checkin"`
	}
	decodeData(t, resp, &after)
	require.True(t, after.CheckedIn)
	require.NotNil(t, after.Checkin)
	require.Equal(t, 6.0, after.Checkin.MindScore)
}

func TestStreakEndpointShowsBrokenStreak(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user, token := createUser(t, db, "broken")

	// Counters claim a 4-day streak but the last check-in is three days old.
	threeDaysAgo := dayOffset(-3)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"current_streak":  4,
		"longest_streak":  4,
		"total_checkins":  4,
		"last_checkin_at": threeDaysAgo,
	}).Error)

	w, resp := doRequest(t, r, http.MethodGet, "/api/v1/streak", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		CurrentStreak int `json:"current_streak"`
		LongestStreak int `json:"longest_streak"`
	}
	decodeData(t, resp, &data)
	require.Equal(t, 0, data.CurrentStreak, "a lapsed streak reads as zero")
	require.Equal(t, 4, data.LongestStreak)
}
