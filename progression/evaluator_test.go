package progression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akofa/fixit/models"
)

func achievementIDs(items []Achievement) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.ID)
	}
	return out
}

func TestEvaluateThresholdExactness(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "edge")
	ev := NewEvaluator(db)

	// One below the requirement grants nothing.
	unlocked, err := ev.Evaluate(user.ID, StatsSnapshot{LongestStreak: 2}, CategoryStreak)
	require.NoError(t, err)
	require.Empty(t, unlocked)

	// Exactly at the requirement grants.
	unlocked, err = ev.Evaluate(user.ID, StatsSnapshot{LongestStreak: 3}, CategoryStreak)
	require.NoError(t, err)
	require.Equal(t, []string{"streak_3"}, achievementIDs(unlocked))
}

func TestEvaluateIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "idem")
	ev := NewEvaluator(db)

	stats := StatsSnapshot{LongestStreak: 7, TotalCheckins: 7}
	unlocked, err := ev.Evaluate(user.ID, stats)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"streak_3", "streak_7", "checkins_1"},
		achievementIDs(unlocked))

	// Same stats again: nothing new, no duplicate badges, no duplicate XP.
	again, err := ev.Evaluate(user.ID, stats)
	require.NoError(t, err)
	require.Empty(t, again)

	var badges int64
	require.NoError(t, db.Model(&models.UserBadge{}).Where("user_id = ?", user.ID).Count(&badges).Error)
	require.EqualValues(t, 3, badges)

	var entries int64
	require.NoError(t, db.Model(&models.XPTransaction{}).Where("user_id = ?", user.ID).Count(&entries).Error)
	require.EqualValues(t, 3, entries)
}

func TestEvaluateGrantsXPReward(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "reward")
	ev := NewEvaluator(db)

	_, err := ev.Evaluate(user.ID, StatsSnapshot{TotalCheckins: 1}, CategoryCheckins)
	require.NoError(t, err)

	agg, err := NewLedger(db).Status(user.ID)
	require.NoError(t, err)
	entry, ok := ByID("checkins_1")
	require.True(t, ok)
	require.Equal(t, entry.XPReward, agg.TotalXP)

	var txn models.XPTransaction
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&txn).Error)
	require.Equal(t, models.XPActionAchievement, txn.ActionType)
}

func TestEvaluateCategoryFilter(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "filter")
	ev := NewEvaluator(db)

	// Stats qualify for both streak and checkins entries, but only the
	// streak category is swept.
	stats := StatsSnapshot{LongestStreak: 3, TotalCheckins: 10}
	unlocked, err := ev.Evaluate(user.ID, stats, CategoryStreak)
	require.NoError(t, err)
	require.Equal(t, []string{"streak_3"}, achievementIDs(unlocked))
}

func TestEvaluateSkipsUnwiredEntries(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "unwired")
	ev := NewEvaluator(db)

	// Layer and time-of-day entries have no stat selector; even absurd stats
	// never grant them.
	unlocked, err := ev.Evaluate(user.ID, StatsSnapshot{
		LongestStreak: 1000, TotalCheckins: 1000, Level: 100,
		ChallengesCompleted: 1000, StackScore: 850,
		GroupsJoined: 100, InsightsShared: 100,
		ReflectionsWritten: 100, MoodLogs: 100,
	})
	require.NoError(t, err)

	ids := achievementIDs(unlocked)
	require.NotContains(t, ids, "perfect_stack")
	require.NotContains(t, ids, "early_bird")
	require.NotContains(t, ids, "night_owl")
	require.NotContains(t, ids, "weekend_warrior")
}

func TestBadgeUniquePerCatalogID(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "unique")

	first := models.UserBadge{UserID: user.ID, BadgeType: CategoryStreak, BadgeID: "streak_3", BadgeName: "Fire Starter"}
	require.NoError(t, db.Create(&first).Error)

	// Same id again violates the (user, type, id) constraint even when the
	// display name differs.
	second := models.UserBadge{UserID: user.ID, BadgeType: CategoryStreak, BadgeID: "streak_3", BadgeName: "Renamed"}
	require.Error(t, db.Create(&second).Error)

	// A different id under the same display name is fine.
	third := models.UserBadge{UserID: user.ID, BadgeType: CategoryStreak, BadgeID: "streak_7", BadgeName: "Fire Starter"}
	require.NoError(t, db.Create(&third).Error)
}

func TestLoadStats(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "stats")

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"longest_streak": 5,
		"total_checkins": 12,
		"stack_score":    510,
	}).Error)
	require.NoError(t, db.Create(&models.UserXP{UserID: user.ID, TotalXP: 250, CurrentLevel: 3}).Error)

	mood := 7
	require.NoError(t, db.Create(&models.CheckIn{
		UserID: user.ID, CheckinDate: day(0),
		Reflection: "good day", Mood: &mood,
	}).Error)
	require.NoError(t, db.Create(&models.CheckIn{
		UserID: user.ID, CheckinDate: day(-1),
	}).Error)

	stats, err := LoadStats(db, user.ID)
	require.NoError(t, err)
	require.Equal(t, 5, stats.LongestStreak)
	require.Equal(t, 12, stats.TotalCheckins)
	require.Equal(t, 3, stats.Level)
	require.Equal(t, 510, stats.StackScore)
	require.Equal(t, 1, stats.ReflectionsWritten)
	require.Equal(t, 1, stats.MoodLogs)
}
