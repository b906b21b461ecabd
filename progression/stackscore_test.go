package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akofa/fixit/models"
)

func checkinOn(d time.Time, scores ...float64) models.CheckIn {
	c := models.CheckIn{CheckinDate: d}
	if len(scores) == 5 {
		c.BodyScore, c.MindScore, c.HeartScore, c.WorkScore, c.PurposeScore =
			scores[0], scores[1], scores[2], scores[3], scores[4]
	}
	return c
}

func TestComputeScoreNoHistory(t *testing.T) {
	now := day(0)
	res := ComputeScore(nil, 0, now)

	// consistency 0, progress 0.5 (empty windows), balance 0.5 (no check-in):
	// 0*0.3 + 0.5*0.4 + 0.5*0.3 = 0.35 -> round(192.5) + 300
	require.Equal(t, 493, res.Score)
	require.Equal(t, 0, res.Breakdown.Bonus)
	require.Equal(t, "Practitioner", res.Tier)
}

func TestComputeScoreBoundsAlwaysHold(t *testing.T) {
	now := day(0)
	// Full 30 days of perfect ratings and a large lifetime count.
	var history []models.CheckIn
	for i := 0; i < 30; i++ {
		history = append(history, checkinOn(now.AddDate(0, 0, -i), 10, 10, 10, 10, 10))
	}
	res := ComputeScore(history, 1000, now)
	require.LessOrEqual(t, res.Score, 850)
	require.GreaterOrEqual(t, res.Score, 300)
	require.Equal(t, 50, res.Breakdown.Bonus, "tenure bonus caps at 50")

	empty := ComputeScore(nil, 0, now)
	require.GreaterOrEqual(t, empty.Score, 300)
}

func TestBalanceScoreEvenVersusUneven(t *testing.T) {
	even := []models.CheckIn{checkinOn(day(0), 7, 7, 7, 7, 7)}
	require.InDelta(t, 1.0, balanceScore(even), 1e-9)

	// variance of [0,10,0,10,0] is 24 -> floored at 0
	uneven := []models.CheckIn{checkinOn(day(0), 0, 10, 0, 10, 0)}
	require.Equal(t, 0.0, balanceScore(uneven))

	require.Equal(t, 0.5, balanceScore(nil))
}

func TestBalanceScoreUsesLatestCheckin(t *testing.T) {
	history := []models.CheckIn{
		checkinOn(day(-3), 0, 10, 0, 10, 0),
		checkinOn(day(0), 6, 6, 6, 6, 6),
	}
	require.InDelta(t, 1.0, balanceScore(history), 1e-9)
}

func TestProgressScoreImprovement(t *testing.T) {
	now := day(0)
	history := []models.CheckIn{
		checkinOn(now.AddDate(0, 0, -10), 4, 4, 4, 4, 4), // older window, total 20
		checkinOn(now.AddDate(0, 0, -2), 6, 6, 6, 6, 6),  // recent window, total 30
	}
	// (30 - 20 + 10) / 20 = 1.0
	require.InDelta(t, 1.0, progressScore(history, now), 1e-9)
}

func TestProgressScoreNeutralWithOneWindow(t *testing.T) {
	now := day(0)
	onlyRecent := []models.CheckIn{checkinOn(now.AddDate(0, 0, -1), 5, 5, 5, 5, 5)}
	require.Equal(t, 0.5, progressScore(onlyRecent, now))

	onlyOlder := []models.CheckIn{checkinOn(now.AddDate(0, 0, -20), 5, 5, 5, 5, 5)}
	require.Equal(t, 0.5, progressScore(onlyOlder, now))
}

func TestTierBoundaries(t *testing.T) {
	require.Equal(t, "Novice", TierFor(300))
	require.Equal(t, "Novice", TierFor(449))
	require.Equal(t, "Practitioner", TierFor(450))
	require.Equal(t, "Adept", TierFor(550))
	require.Equal(t, "Master", TierFor(749))
	require.Equal(t, "Guru", TierFor(750))
	require.Equal(t, "Guru", TierFor(850))
}

func TestNextTierProgress(t *testing.T) {
	name, needed, ok := NextTier(350)
	require.True(t, ok)
	require.Equal(t, "Practitioner", name)
	require.Equal(t, 50, needed)

	name, needed, ok = NextTier(799)
	require.True(t, ok)
	require.Equal(t, "Legend", name)
	require.Equal(t, 1, needed)

	_, _, ok = NextTier(800)
	require.False(t, ok)
	_, _, ok = NextTier(850)
	require.False(t, ok)
}

func TestStackScorerComputePersists(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "scorer")
	scorer := NewStackScorer(db)

	res, err := scorer.Compute(user.ID)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Score, 300)
	require.LessOrEqual(t, res.Score, 850)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, res.Score, reloaded.StackScore)

	// Every Compute appends one snapshot.
	_, err = scorer.Compute(user.ID)
	require.NoError(t, err)
	history, err := scorer.History(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, res.Score, history[0].Score, "same inputs converge to the same score")
}
