package progression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akofa/fixit/models"
)

func TestGrantRejectsNonPositive(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "xp-bad")
	ledger := NewLedger(db)

	_, err := ledger.Grant(user.ID, 0, models.XPActionManual, "noop")
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ledger.Grant(user.ID, -5, models.XPActionManual, "noop")
	require.ErrorIs(t, err, ErrInvalidAmount)

	var count int64
	require.NoError(t, db.Model(&models.XPTransaction{}).Count(&count).Error)
	require.Zero(t, count, "rejected grants must leave no ledger rows")
}

func TestGrantAppendsAndAggregates(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "xp-ok")
	ledger := NewLedger(db)

	res, err := ledger.Grant(user.ID, 40, models.XPActionAchievement, "first badge")
	require.NoError(t, err)
	require.Equal(t, 40, res.NewTotalXP)
	require.Equal(t, 1, res.OldLevel)
	require.Equal(t, 1, res.NewLevel)
	require.False(t, res.LeveledUp)

	res, err = ledger.Grant(user.ID, 60, models.XPActionQuestComplete, "challenge")
	require.NoError(t, err)
	require.Equal(t, 100, res.NewTotalXP)
	require.Equal(t, 2, res.NewLevel)
	require.True(t, res.LeveledUp, "crossing 100 XP must level up")

	agg, err := ledger.Status(user.ID)
	require.NoError(t, err)
	require.Equal(t, 100, agg.TotalXP)
	require.Equal(t, 100, agg.LifetimeXP)
	require.Equal(t, 2, agg.CurrentLevel)
	require.NotNil(t, agg.LastXPEarnedAt)

	// The ledger sum always equals the aggregate.
	var sum int64
	require.NoError(t, db.Model(&models.XPTransaction{}).
		Where("user_id = ?", user.ID).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error)
	require.EqualValues(t, agg.TotalXP, sum)
}

func TestStatusWithoutAnyGrant(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "xp-fresh")
	ledger := NewLedger(db)

	agg, err := ledger.Status(user.ID)
	require.NoError(t, err)
	require.Zero(t, agg.TotalXP)
	require.Equal(t, 1, agg.CurrentLevel)

	// Status must not materialize a row.
	var count int64
	require.NoError(t, db.Model(&models.UserXP{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestHistoryNewestFirst(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "xp-history")
	ledger := NewLedger(db)

	for i, desc := range []string{"a", "b", "c"} {
		_, err := ledger.Grant(user.ID, 10+i, models.XPActionManual, desc)
		require.NoError(t, err)
	}

	items, total, err := ledger.History(user.ID, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, items, 3)
	require.Equal(t, "c", items[0].Description)
	require.Equal(t, "a", items[2].Description)

	page, total, err := ledger.History(user.ID, 1, 1)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	require.Equal(t, "b", page[0].Description)
}
