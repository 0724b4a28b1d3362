package reward

// BadgeDef defines a single badge.
type BadgeDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

const (
	BadgeFirstCorrect = "first_correct"
	BadgeStreak3      = "streak_3"
	BadgeStreak7      = "streak_7"
	BadgeStreak30     = "streak_30"
	BadgeDailyGoal    = "daily_goal"
)

// Badges maps badge ids to their definitions. Awarding is idempotent: a
// badge already on the student's record is never re-added.
var Badges = map[string]BadgeDef{
	BadgeFirstCorrect: {Name: "First Steps", Description: "Answer your first question correctly"},
	BadgeStreak3:      {Name: "Getting Started", Description: "3-day streak"},
	BadgeStreak7:      {Name: "Week Warrior", Description: "7-day streak"},
	BadgeStreak30:     {Name: "Monthly Master", Description: "30-day streak"},
	BadgeDailyGoal:    {Name: "Goal Getter", Description: "Reach your daily goal"},
}

// checkBadges returns badge ids the post-update state qualifies for. The
// caller filters out ones already earned.
func checkBadges(state *stateView) []string {
	var earned []string

	if state.totalCorrect >= 1 {
		earned = append(earned, BadgeFirstCorrect)
	}
	if state.currentStreak >= 3 {
		earned = append(earned, BadgeStreak3)
	}
	if state.currentStreak >= 7 {
		earned = append(earned, BadgeStreak7)
	}
	if state.currentStreak >= 30 {
		earned = append(earned, BadgeStreak30)
	}
	if state.goalReached {
		earned = append(earned, BadgeDailyGoal)
	}

	return earned
}

// stateView is the slice of post-update reward state badge checks look at.
type stateView struct {
	totalCorrect  int
	currentStreak int
	goalReached   bool
}
