package progression

import "math"

const (
	baseThresholdXP = 100
	growthRate      = 1.15
	maxLevel        = 100
)

// levelThresholds[i] holds the cumulative XP needed to reach level i+2,
// floor(100 * 1.15^i). Built once at process start; read-only afterwards.
var levelThresholds = buildThresholds()

func buildThresholds() []int {
	t := make([]int, maxLevel)
	for i := range t {
		t[i] = int(math.Floor(baseThresholdXP * math.Pow(growthRate, float64(i))))
	}
	return t
}

// LevelStatus describes where a cumulative XP amount sits on the curve.
type LevelStatus struct {
	Level         int `json:"level"`
	NextThreshold int `json:"next_threshold"`
	XPToNext      int `json:"xp_to_next"`
}

// LevelFor maps cumulative XP to a level. Level 1 is the floor for anything
// below the first threshold; level 100 is a hard ceiling, XP past the last
// threshold yields no further progression.
func LevelFor(totalXP int) LevelStatus {
	level := 1
	for i, th := range levelThresholds {
		if totalXP < th {
			break
		}
		level = i + 2
	}
	if level > maxLevel {
		level = maxLevel
	}

	next := levelThresholds[len(levelThresholds)-1]
	if level-1 < len(levelThresholds) {
		next = levelThresholds[level-1]
	}
	xpToNext := next - totalXP
	if xpToNext < 0 {
		xpToNext = 0
	}
	return LevelStatus{Level: level, NextThreshold: next, XPToNext: xpToNext}
}

// FeatureUnlock lists the feature flags that open up at a given level.
type FeatureUnlock struct {
	Level    int      `json:"level"`
	Features []string `json:"features"`
}

// featureUnlocks is static configuration; thresholds must stay sorted ascending.
var featureUnlocks = []FeatureUnlock{
	{Level: 5, Features: []string{"mood_tracker", "custom_reminders"}},
	{Level: 10, Features: []string{"advanced_insights", "data_export"}},
	{Level: 15, Features: []string{"community_groups", "insight_sharing"}},
	{Level: 25, Features: []string{"challenge_creation", "priority_insights"}},
	{Level: 50, Features: []string{"mentor_mode"}},
	{Level: 75, Features: []string{"beta_features"}},
	{Level: 100, Features: []string{"founder_badge"}},
}

// UnlockedFeatures returns the union of all flag sets at thresholds <= level.
func UnlockedFeatures(level int) []string {
	var out []string
	for _, u := range featureUnlocks {
		if u.Level > level {
			break
		}
		out = append(out, u.Features...)
	}
	return out
}

// NextUnlock returns the smallest unlock threshold above level, or nil when
// everything is already unlocked.
func NextUnlock(level int) *FeatureUnlock {
	for i := range featureUnlocks {
		if featureUnlocks[i].Level > level {
			return &featureUnlocks[i]
		}
	}
	return nil
}
