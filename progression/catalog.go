package progression

// StatSelector identifies which statistic from a StatsSnapshot an achievement
// compares its requirement against. Entries with StatNone are catalog data
// only: nothing in the evaluation pathway can grant them yet.
type StatSelector int

const (
	StatNone StatSelector = iota
	StatLongestStreak
	StatTotalCheckins
	StatLevel
	StatChallengesCompleted
	StatStackScore
	StatGroupsJoined
	StatInsightsShared
	StatReflectionsWritten
	StatMoodLogs
)

// Achievement categories double as badge types on persisted badges.
const (
	CategoryStreak     = "streak"
	CategoryCheckins   = "checkins"
	CategoryLevels     = "levels"
	CategoryChallenges = "challenges"
	CategorySocial     = "social"
	CategoryLayers     = "layers"
	CategoryStackScore = "stackscore"
	CategorySpecial    = "special"
)

// Achievement is one entry of the static catalog. The catalog is immutable
// configuration built once at process start; IDs are stable and are the
// uniqueness key for earned badges.
type Achievement struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Stat        StatSelector `json:"-"`
	Requirement int          `json:"requirement"`
	XPReward    int          `json:"xp_reward"`
	Rarity      string       `json:"rarity"`
}

// Catalog is the full achievement table. Order within a category is by
// ascending requirement; no ordering guarantee applies to grants.
var Catalog = []Achievement{
	// Streaks read the longest streak so a badge survives a later reset.
	{ID: "streak_3", Name: "Fire Starter", Description: "Check in 3 days in a row", Category: CategoryStreak, Stat: StatLongestStreak, Requirement: 3, XPReward: 25, Rarity: "common"},
	{ID: "streak_7", Name: "Week Warrior", Description: "Check in 7 days in a row", Category: CategoryStreak, Stat: StatLongestStreak, Requirement: 7, XPReward: 75, Rarity: "common"},
	{ID: "streak_14", Name: "Fortnight Force", Description: "Check in 14 days in a row", Category: CategoryStreak, Stat: StatLongestStreak, Requirement: 14, XPReward: 150, Rarity: "uncommon"},
	{ID: "streak_30", Name: "Monthly Master", Description: "Check in 30 days in a row", Category: CategoryStreak, Stat: StatLongestStreak, Requirement: 30, XPReward: 300, Rarity: "rare"},
	{ID: "streak_60", Name: "Habit Architect", Description: "Check in 60 days in a row", Category: CategoryStreak, Stat: StatLongestStreak, Requirement: 60, XPReward: 600, Rarity: "rare"},
	{ID: "streak_100", Name: "Century Streak", Description: "Check in 100 days in a row", Category: CategoryStreak, Stat: StatLongestStreak, Requirement: 100, XPReward: 1000, Rarity: "epic"},
	{ID: "streak_365", Name: "Year of Fire", Description: "Check in 365 days in a row", Category: CategoryStreak, Stat: StatLongestStreak, Requirement: 365, XPReward: 5000, Rarity: "legendary"},

	{ID: "checkins_1", Name: "First Step", Description: "Complete your first check-in", Category: CategoryCheckins, Stat: StatTotalCheckins, Requirement: 1, XPReward: 10, Rarity: "common"},
	{ID: "checkins_10", Name: "Getting Going", Description: "Complete 10 check-ins", Category: CategoryCheckins, Stat: StatTotalCheckins, Requirement: 10, XPReward: 50, Rarity: "common"},
	{ID: "checkins_25", Name: "Quarter Century", Description: "Complete 25 check-ins", Category: CategoryCheckins, Stat: StatTotalCheckins, Requirement: 25, XPReward: 100, Rarity: "uncommon"},
	{ID: "checkins_50", Name: "Half Hundred", Description: "Complete 50 check-ins", Category: CategoryCheckins, Stat: StatTotalCheckins, Requirement: 50, XPReward: 200, Rarity: "uncommon"},
	{ID: "checkins_100", Name: "Centurion", Description: "Complete 100 check-ins", Category: CategoryCheckins, Stat: StatTotalCheckins, Requirement: 100, XPReward: 500, Rarity: "rare"},
	{ID: "checkins_250", Name: "Devoted", Description: "Complete 250 check-ins", Category: CategoryCheckins, Stat: StatTotalCheckins, Requirement: 250, XPReward: 1000, Rarity: "epic"},
	{ID: "checkins_500", Name: "Unstoppable", Description: "Complete 500 check-ins", Category: CategoryCheckins, Stat: StatTotalCheckins, Requirement: 500, XPReward: 2500, Rarity: "legendary"},

	{ID: "level_5", Name: "Apprentice", Description: "Reach level 5", Category: CategoryLevels, Stat: StatLevel, Requirement: 5, XPReward: 50, Rarity: "common"},
	{ID: "level_10", Name: "Journeyman", Description: "Reach level 10", Category: CategoryLevels, Stat: StatLevel, Requirement: 10, XPReward: 100, Rarity: "uncommon"},
	{ID: "level_25", Name: "Expert", Description: "Reach level 25", Category: CategoryLevels, Stat: StatLevel, Requirement: 25, XPReward: 250, Rarity: "rare"},
	{ID: "level_50", Name: "Veteran", Description: "Reach level 50", Category: CategoryLevels, Stat: StatLevel, Requirement: 50, XPReward: 500, Rarity: "epic"},
	{ID: "level_75", Name: "Sage", Description: "Reach level 75", Category: CategoryLevels, Stat: StatLevel, Requirement: 75, XPReward: 750, Rarity: "epic"},
	{ID: "level_100", Name: "Transcendent", Description: "Reach level 100", Category: CategoryLevels, Stat: StatLevel, Requirement: 100, XPReward: 1000, Rarity: "legendary"},

	{ID: "challenge_1", Name: "Challenger", Description: "Complete your first challenge", Category: CategoryChallenges, Stat: StatChallengesCompleted, Requirement: 1, XPReward: 25, Rarity: "common"},
	{ID: "challenge_5", Name: "Competitor", Description: "Complete 5 challenges", Category: CategoryChallenges, Stat: StatChallengesCompleted, Requirement: 5, XPReward: 100, Rarity: "uncommon"},
	{ID: "challenge_10", Name: "Contender", Description: "Complete 10 challenges", Category: CategoryChallenges, Stat: StatChallengesCompleted, Requirement: 10, XPReward: 200, Rarity: "rare"},
	{ID: "challenge_25", Name: "Champion", Description: "Complete 25 challenges", Category: CategoryChallenges, Stat: StatChallengesCompleted, Requirement: 25, XPReward: 500, Rarity: "epic"},

	{ID: "stackscore_500", Name: "Solid Foundation", Description: "Reach a StackScore of 500", Category: CategoryStackScore, Stat: StatStackScore, Requirement: 500, XPReward: 100, Rarity: "common"},
	{ID: "stackscore_650", Name: "Rising Stack", Description: "Reach a StackScore of 650", Category: CategoryStackScore, Stat: StatStackScore, Requirement: 650, XPReward: 250, Rarity: "uncommon"},
	{ID: "stackscore_750", Name: "High Performer", Description: "Reach a StackScore of 750", Category: CategoryStackScore, Stat: StatStackScore, Requirement: 750, XPReward: 500, Rarity: "rare"},
	{ID: "stackscore_800", Name: "Elite Stack", Description: "Reach a StackScore of 800", Category: CategoryStackScore, Stat: StatStackScore, Requirement: 800, XPReward: 750, Rarity: "epic"},

	{ID: "group_1", Name: "Joiner", Description: "Join your first group", Category: CategorySocial, Stat: StatGroupsJoined, Requirement: 1, XPReward: 25, Rarity: "common"},
	{ID: "group_3", Name: "Community Builder", Description: "Join 3 groups", Category: CategorySocial, Stat: StatGroupsJoined, Requirement: 3, XPReward: 75, Rarity: "uncommon"},
	{ID: "insight_1", Name: "Open Book", Description: "Share your first insight", Category: CategorySocial, Stat: StatInsightsShared, Requirement: 1, XPReward: 25, Rarity: "common"},
	{ID: "insight_10", Name: "Thought Leader", Description: "Share 10 insights", Category: CategorySocial, Stat: StatInsightsShared, Requirement: 10, XPReward: 150, Rarity: "uncommon"},
	{ID: "insight_25", Name: "Voice of the Stack", Description: "Share 25 insights", Category: CategorySocial, Stat: StatInsightsShared, Requirement: 25, XPReward: 300, Rarity: "rare"},

	{ID: "full_reflector", Name: "Full Reflector", Description: "Write 30 reflections", Category: CategorySpecial, Stat: StatReflectionsWritten, Requirement: 30, XPReward: 200, Rarity: "rare"},
	{ID: "mood_logger", Name: "Mood Logger", Description: "Log your mood 50 times", Category: CategorySpecial, Stat: StatMoodLogs, Requirement: 50, XPReward: 150, Rarity: "uncommon"},
	{ID: "early_bird", Name: "Early Bird", Description: "Check in before 7am", Category: CategorySpecial, Stat: StatNone, Requirement: 1, XPReward: 50, Rarity: "uncommon"},
	{ID: "night_owl", Name: "Night Owl", Description: "Check in after 11pm", Category: CategorySpecial, Stat: StatNone, Requirement: 1, XPReward: 50, Rarity: "uncommon"},
	{ID: "weekend_warrior", Name: "Weekend Warrior", Description: "Check in every weekend day for a month", Category: CategorySpecial, Stat: StatNone, Requirement: 8, XPReward: 100, Rarity: "rare"},

	{ID: "body_master", Name: "Body Master", Description: "Rate the Body layer 10 for a week", Category: CategoryLayers, Stat: StatNone, Requirement: 7, XPReward: 200, Rarity: "rare"},
	{ID: "mind_master", Name: "Mind Master", Description: "Rate the Mind layer 10 for a week", Category: CategoryLayers, Stat: StatNone, Requirement: 7, XPReward: 200, Rarity: "rare"},
	{ID: "heart_master", Name: "Heart Master", Description: "Rate the Heart layer 10 for a week", Category: CategoryLayers, Stat: StatNone, Requirement: 7, XPReward: 200, Rarity: "rare"},
	{ID: "work_master", Name: "Work Master", Description: "Rate the Work layer 10 for a week", Category: CategoryLayers, Stat: StatNone, Requirement: 7, XPReward: 200, Rarity: "rare"},
	{ID: "purpose_master", Name: "Purpose Master", Description: "Rate the Purpose layer 10 for a week", Category: CategoryLayers, Stat: StatNone, Requirement: 7, XPReward: 200, Rarity: "rare"},
	{ID: "balanced_stack", Name: "Balanced Stack", Description: "All five layers within 1 point of each other", Category: CategoryLayers, Stat: StatNone, Requirement: 1, XPReward: 150, Rarity: "rare"},
	{ID: "perfect_stack", Name: "Perfect Stack", Description: "All five layers rated 10 on one day", Category: CategoryLayers, Stat: StatNone, Requirement: 1, XPReward: 500, Rarity: "legendary"},
}

// ByID returns the catalog entry for a stable achievement id.
func ByID(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
