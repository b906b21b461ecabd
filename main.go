package main

import (
	"github.com/akofa/fixit/config"
	"github.com/akofa/fixit/models"
	"github.com/akofa/fixit/routes"
	"github.com/akofa/fixit/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
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
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
