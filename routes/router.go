package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/akofa/fixit/config"
	"github.com/akofa/fixit/controllers"
	"github.com/akofa/fixit/middleware"
	"github.com/akofa/fixit/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	checkinController := controllers.NewCheckinController(db)
	progressController := controllers.NewProgressController(db)
	scoreController := controllers.NewStackScoreController(db)
	communityController := controllers.NewCommunityController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/captcha", authController.Captcha)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public surfaces
	api.GET("/stats", statsController.Overview)
	api.GET("/leaderboard", statsController.Leaderboard)
	api.GET("/users/:id", authController.GetUserPublic)
	api.GET("/insights", communityController.InsightFeed)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

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

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
