package progression

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/akofa/fixit/models"
)

// newTestDB opens a private in-memory database migrated with every model the
// progression engine touches. cache=shared keeps all pooled connections on
// the same store.
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

func newTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x", RegisterIP: "127.0.0.1"}
	require.NoError(t, db.Create(&user).Error)
	return user
}
