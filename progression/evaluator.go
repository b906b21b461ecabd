package progression

import (
	"time"

	"gorm.io/gorm"

	"github.com/akofa/fixit/models"
	"github.com/akofa/fixit/utils"
)

// StatsSnapshot bundles every statistic the achievement catalog can select.
type StatsSnapshot struct {
	LongestStreak       int `json:"longest_streak"`
	TotalCheckins       int `json:"total_checkins"`
	Level               int `json:"level"`
	ChallengesCompleted int `json:"challenges_completed"`
	StackScore          int `json:"stack_score"`
	GroupsJoined        int `json:"groups_joined"`
	InsightsShared      int `json:"insights_shared"`
	ReflectionsWritten  int `json:"reflections_written"`
	MoodLogs            int `json:"mood_logs"`
}

// ValueFor resolves a selector against the snapshot. ok is false for
// StatNone entries, which no evaluation pathway can grant.
func (s StatsSnapshot) ValueFor(sel StatSelector) (int, bool) {
	switch sel {
	case StatLongestStreak:
		return s.LongestStreak, true
	case StatTotalCheckins:
		return s.TotalCheckins, true
	case StatLevel:
		return s.Level, true
	case StatChallengesCompleted:
		return s.ChallengesCompleted, true
	case StatStackScore:
		return s.StackScore, true
	case StatGroupsJoined:
		return s.GroupsJoined, true
	case StatInsightsShared:
		return s.InsightsShared, true
	case StatReflectionsWritten:
		return s.ReflectionsWritten, true
	case StatMoodLogs:
		return s.MoodLogs, true
	default:
		return 0, false
	}
}

// LoadStats assembles the current snapshot for a user from the store.
func LoadStats(db *gorm.DB, userID uint) (StatsSnapshot, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return StatsSnapshot{}, err
	}

	var agg models.UserXP
	level := 1
	if err := db.Where("user_id = ?", userID).First(&agg).Error; err == nil {
		level = agg.CurrentLevel
	}

	var challenges, groups, insights, reflections, moods int64
	db.Model(&models.ChallengeCompletion{}).Where("user_id = ?", userID).Count(&challenges)
	db.Model(&models.GroupMember{}).Where("user_id = ?", userID).Count(&groups)
	db.Model(&models.Insight{}).Where("user_id = ?", userID).Count(&insights)
	db.Model(&models.CheckIn{}).Where("user_id = ? AND reflection <> ''", userID).Count(&reflections)
	db.Model(&models.CheckIn{}).Where("user_id = ? AND mood IS NOT NULL", userID).Count(&moods)

	return StatsSnapshot{
		LongestStreak:       user.LongestStreak,
		TotalCheckins:       user.TotalCheckins,
		Level:               level,
		ChallengesCompleted: int(challenges),
		StackScore:          user.StackScore,
		GroupsJoined:        int(groups),
		InsightsShared:      int(insights),
		ReflectionsWritten:  int(reflections),
		MoodLogs:            int(moods),
	}, nil
}

// Evaluator checks the catalog against a stats snapshot and grants whatever
// newly qualifies: one badge per entry plus its XP reward through the ledger.
type Evaluator struct {
	db     *gorm.DB
	ledger *Ledger
}

// NewEvaluator creates an Evaluator bound to a database handle.
func NewEvaluator(db *gorm.DB) *Evaluator {
	return &Evaluator{db: db, ledger: NewLedger(db)}
}

// Evaluate grants every not-yet-earned achievement whose selected statistic
// meets its requirement. Passing categories restricts the sweep; none means
// the whole catalog. Each grant is an isolated idempotent operation: a
// failure is logged and skipped, never propagated to the siblings. Re-running
// with unchanged stats returns an empty list.
func (e *Evaluator) Evaluate(userID uint, stats StatsSnapshot, categories ...string) ([]Achievement, error) {
	earned, err := e.earnedIDs(userID)
	if err != nil {
		return nil, err
	}

	var wanted map[string]bool
	if len(categories) > 0 {
		wanted = make(map[string]bool, len(categories))
		for _, c := range categories {
			wanted[c] = true
		}
	}

	var unlocked []Achievement
	for _, a := range Catalog {
		if wanted != nil && !wanted[a.Category] {
			continue
		}
		if earned[a.ID] {
			continue
		}
		val, ok := stats.ValueFor(a.Stat)
		if !ok || val < a.Requirement {
			continue
		}
		if err := e.grant(userID, a); err != nil {
			if utils.Sugar != nil {
				utils.Sugar.Warnf("achievement grant failed user=%d id=%s err=%v", userID, a.ID, err)
			}
			continue
		}
		unlocked = append(unlocked, a)
	}
	return unlocked, nil
}

// grant records the badge and applies the XP reward. The badge insert is
// idempotent on (user, type, id); losing a race to a concurrent duplicate
// insert is treated as already granted.
func (e *Evaluator) grant(userID uint, a Achievement) error {
	badge := models.UserBadge{
		UserID:      userID,
		BadgeType:   a.Category,
		BadgeID:     a.ID,
		BadgeName:   a.Name,
		Description: a.Description,
		Rarity:      a.Rarity,
		EarnedAt:    time.Now(),
	}
	if err := e.db.Create(&badge).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}

	if a.XPReward > 0 {
		if _, err := e.ledger.Grant(userID, a.XPReward, models.XPActionAchievement, "Unlocked: "+a.Name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) earnedIDs(userID uint) (map[string]bool, error) {
	var ids []string
	if err := e.db.Model(&models.UserBadge{}).Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
