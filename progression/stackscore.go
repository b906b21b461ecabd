package progression

import (
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/akofa/fixit/models"
)

const (
	scoreFloor   = 300
	scoreCeiling = 850
)

// Breakdown holds the normalized sub-scores and the tenure bonus that went
// into a StackScore computation.
type Breakdown struct {
	Consistency float64 `json:"consistency"`
	Progress    float64 `json:"progress"`
	Balance     float64 `json:"balance"`
	Bonus       int     `json:"bonus"`
}

// ScoreResult is one computed StackScore.
type ScoreResult struct {
	Score     int       `json:"score"`
	Tier      string    `json:"tier"`
	Breakdown Breakdown `json:"breakdown"`
}

// TierFor classifies a score. These boundaries belong to the calculator; the
// progress-display ladder below uses a different set on purpose (pending
// product resolution, do not consolidate).
func TierFor(score int) string {
	switch {
	case score < 450:
		return "Novice"
	case score < 550:
		return "Practitioner"
	case score < 650:
		return "Adept"
	case score < 750:
		return "Master"
	default:
		return "Guru"
	}
}

type tierFloor struct {
	Name string
	Min  int
}

// progressTiers drives the "points to next tier" display only.
var progressTiers = []tierFloor{
	{"Novice", 300},
	{"Practitioner", 400},
	{"Adept", 500},
	{"Master", 600},
	{"Guru", 700},
	{"Legend", 800},
}

// NextTier returns the name of the next display tier above score and the
// points needed to reach it. ok is false at or beyond the top floor.
func NextTier(score int) (name string, pointsNeeded int, ok bool) {
	for _, t := range progressTiers {
		if score < t.Min {
			return t.Name, t.Min - score, true
		}
	}
	return "", 0, false
}

// ComputeScore derives a StackScore from the last 30 days of check-ins and
// the user's lifetime check-in count. history may be in any order.
func ComputeScore(history []models.CheckIn, totalCheckins int, now time.Time) ScoreResult {
	consistency := math.Min(1, float64(len(history))/30)
	progress := progressScore(history, now)
	balance := balanceScore(history)
	bonus := int(math.Round(math.Min(50, float64(totalCheckins)*0.5)))

	weighted := clamp(consistency*0.3+progress*0.4+balance*0.3, 0, 1)
	score := int(math.Round(weighted*550)) + scoreFloor + bonus
	if score < scoreFloor {
		score = scoreFloor
	}
	if score > scoreCeiling {
		score = scoreCeiling
	}

	return ScoreResult{
		Score: score,
		Tier:  TierFor(score),
		Breakdown: Breakdown{
			Consistency: consistency,
			Progress:    progress,
			Balance:     balance,
			Bonus:       bonus,
		},
	}
}

// progressScore compares the mean total rating of the last 7 days against the
// 23 days before that. Either window being empty yields the neutral 0.5.
func progressScore(history []models.CheckIn, now time.Time) float64 {
	weekAgo := now.AddDate(0, 0, -7)
	var recent, older []float64
	for _, c := range history {
		if c.CheckinDate.After(weekAgo) {
			recent = append(recent, c.TotalScore())
		} else {
			older = append(older, c.TotalScore())
		}
	}
	if len(recent) == 0 || len(older) == 0 {
		return 0.5
	}
	return clamp((mean(recent)-mean(older)+10)/20, 0, 1)
}

// balanceScore rewards even ratings across the five layers of the most recent
// check-in; variance of 20 or more zeroes it out. No check-in yields 0.5.
func balanceScore(history []models.CheckIn) float64 {
	var latest *models.CheckIn
	for i := range history {
		if latest == nil || history[i].CheckinDate.After(latest.CheckinDate) {
			latest = &history[i]
		}
	}
	if latest == nil {
		return 0.5
	}
	return math.Max(0, 1-variance(latest.LayerScores())/20)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vals))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StackScorer computes and persists StackScores.
type StackScorer struct {
	db *gorm.DB
}

// NewStackScorer creates a StackScorer bound to a database handle.
func NewStackScorer(db *gorm.DB) *StackScorer {
	return &StackScorer{db: db}
}

// Compute recalculates the user's StackScore from stored check-ins, caches it
// on the user row and appends a history snapshot. Every call appends a
// snapshot even with unchanged inputs; the score itself converges for the
// same underlying data.
func (s *StackScorer) Compute(userID uint) (*ScoreResult, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	since := Midnight(now).AddDate(0, 0, -30)
	var history []models.CheckIn
	if err := s.db.Where("user_id = ? AND checkin_date >= ?", userID, since).
		Order("checkin_date DESC").
		Find(&history).Error; err != nil {
		return nil, err
	}

	res := ComputeScore(history, user.TotalCheckins, now)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("stack_score", res.Score).Error; err != nil {
			return err
		}
		snap := models.StackScoreHistory{
			UserID:      userID,
			Score:       res.Score,
			Consistency: res.Breakdown.Consistency,
			Progress:    res.Breakdown.Progress,
			Balance:     res.Breakdown.Balance,
			Bonus:       res.Breakdown.Bonus,
		}
		return tx.Create(&snap).Error
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// History returns the stored score snapshots, newest first.
func (s *StackScorer) History(userID uint, limit int) ([]models.StackScoreHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var items []models.StackScoreHistory
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
