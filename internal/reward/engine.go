package reward

import (
	"time"

	"learning-path-service/internal/models"
)

// LevelThresholds are the cumulative point totals for each level boundary.
// A student's level is the index of the first threshold strictly above their
// points; at or past the last threshold they are max level.
var LevelThresholds = []int{0, 100, 250, 500, 1000, 2000, 4000, 8000}

// MaxLevel is the level granted at or beyond the last threshold.
const MaxLevel = 8

const (
	// DefaultDailyTarget is how many correct answers complete the daily goal.
	DefaultDailyTarget = 3
	// DailyGoalBonus is the one-time bonus for the first goal hit of a day.
	DailyGoalBonus = 15
)

// DateLayout is the UTC calendar-day format used for streak arithmetic.
const DateLayout = "2006-01-02"

// Event is one correct scored submission. Incorrect submissions never reach
// the reward engine.
type Event struct {
	Points int
	Today  string // UTC calendar day, YYYY-MM-DD
}

// Outcome reports what changed in a single apply, for the submit response
// and notifications.
type Outcome struct {
	LevelUp       bool     `json:"level_up"`
	NewLevel      int      `json:"new_level"`
	NewBadges     []string `json:"new_badges"`
	GoalReached   bool     `json:"goal_reached"`
	GoalBonus     int      `json:"goal_bonus"`
	PointsApplied int      `json:"points_applied"`
}

// Today returns the current UTC calendar day string.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// LevelForPoints recomputes the level from the running total. It is total
// and monotonic; recomputing from the total instead of incrementing keeps
// the level consistent under retries.
func LevelForPoints(points int) int {
	for i, threshold := range LevelThresholds {
		if points < threshold {
			return i
		}
	}
	return MaxLevel
}

// NextStreak derives the new streak from the last activity day and today.
// Same day leaves the streak alone, exactly one day later extends it, and
// any gap (or no prior activity) resets it to 1.
func NextStreak(current int, lastActivityDate, today string) int {
	if lastActivityDate == today && current > 0 {
		return current
	}
	last, err := time.Parse(DateLayout, lastActivityDate)
	if err != nil {
		return 1
	}
	day, err := time.Parse(DateLayout, today)
	if err != nil {
		return 1
	}
	if day.Sub(last) == 24*time.Hour {
		return current + 1
	}
	return 1
}

// ApplyCorrectAnswer maps one correct submission onto a reward state
// snapshot and returns the updated state plus what changed. It is pure: the
// caller owns the transaction boundary and writes the result back with a
// compare-and-set.
func ApplyCorrectAnswer(state models.RewardState, event Event) (models.RewardState, Outcome) {
	outcome := Outcome{PointsApplied: event.Points}

	// Streak first, from the pre-update activity date.
	state.CurrentStreak = NextStreak(state.CurrentStreak, state.LastActivityDate, event.Today)
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
	state.LastActivityDate = event.Today

	// Daily goal: reset on date change, then count this answer.
	if state.DailyGoal.Date != event.Today {
		state.DailyGoal = models.DailyGoal{
			Date:   event.Today,
			Target: state.DailyGoal.Target,
		}
	}
	if state.DailyGoal.Target <= 0 {
		state.DailyGoal.Target = DefaultDailyTarget
	}
	state.DailyGoal.Completed++

	if state.DailyGoal.Reached() && !state.DailyGoal.BonusPaid {
		state.DailyGoal.BonusPaid = true
		outcome.GoalReached = true
		outcome.GoalBonus = DailyGoalBonus
	}

	// Points and level, recomputed from the total.
	prevLevel := LevelForPoints(state.TotalPoints)
	state.TotalPoints += event.Points + outcome.GoalBonus
	state.Level = LevelForPoints(state.TotalPoints)
	outcome.NewLevel = state.Level
	outcome.LevelUp = state.Level > prevLevel

	// Badges against the post-update state.
	view := &stateView{
		totalCorrect:  1,
		currentStreak: state.CurrentStreak,
		goalReached:   outcome.GoalReached,
	}
	for _, id := range checkBadges(view) {
		if state.HasBadge(id) {
			continue
		}
		state.Badges = append(state.Badges, id)
		outcome.NewBadges = append(outcome.NewBadges, id)
	}

	return state, outcome
}

// NewState returns an empty reward record for a student.
func NewState(studentID string) models.RewardState {
	return models.RewardState{
		StudentID: studentID,
		Level:     LevelForPoints(0),
		DailyGoal: models.DailyGoal{Target: DefaultDailyTarget},
		Badges:    []string{},
	}
}
