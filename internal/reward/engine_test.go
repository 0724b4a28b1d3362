package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-path-service/internal/models"
)

func TestLevelForPoints(t *testing.T) {
	cases := []struct {
		points int
		level  int
	}{
		{0, 1},
		{95, 1},
		{100, 2},
		{105, 2},
		{249, 2},
		{250, 3},
		{999, 4},
		{1000, 5},
		{4000, 7},
		{7999, 7},
		{8000, 8},
		{20000, 8},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForPoints(tc.points), "points=%d", tc.points)
	}
}

func TestLevelRecomputedAcrossThreshold(t *testing.T) {
	state := NewState("student-1")
	state.TotalPoints = 95
	state.Level = LevelForPoints(95)

	next, outcome := ApplyCorrectAnswer(state, Event{Points: 10, Today: "2024-01-01"})

	assert.Equal(t, 105, next.TotalPoints)
	assert.Equal(t, 2, next.Level)
	assert.True(t, outcome.LevelUp)
}

func TestStreakTransitions(t *testing.T) {
	cases := []struct {
		name     string
		current  int
		last     string
		today    string
		expected int
	}{
		{"never started", 0, "", "2024-01-05", 1},
		{"same day unchanged", 4, "2024-01-05", "2024-01-05", 4},
		{"next day increments", 4, "2024-01-05", "2024-01-06", 5},
		{"two day gap resets", 9, "2024-01-01", "2024-01-03", 1},
		{"month boundary", 2, "2024-01-31", "2024-02-01", 3},
		{"leap day", 2, "2024-02-28", "2024-02-29", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NextStreak(tc.current, tc.last, tc.today))
		})
	}
}

func TestLongestStreakTracksCurrent(t *testing.T) {
	state := NewState("student-1")
	state.CurrentStreak = 6
	state.LongestStreak = 6
	state.LastActivityDate = "2024-01-06"

	next, _ := ApplyCorrectAnswer(state, Event{Points: 10, Today: "2024-01-07"})
	assert.Equal(t, 7, next.CurrentStreak)
	assert.Equal(t, 7, next.LongestStreak)

	// A reset never shrinks the record.
	later, _ := ApplyCorrectAnswer(next, Event{Points: 10, Today: "2024-01-20"})
	assert.Equal(t, 1, later.CurrentStreak)
	assert.Equal(t, 7, later.LongestStreak)
}

func TestDailyGoalBonusOncePerDay(t *testing.T) {
	state := NewState("student-1")

	var outcome Outcome
	for i := 0; i < DefaultDailyTarget; i++ {
		state, outcome = ApplyCorrectAnswer(state, Event{Points: 10, Today: "2024-03-01"})
	}
	require.True(t, outcome.GoalReached, "third answer reaches the goal")
	assert.Equal(t, DailyGoalBonus, outcome.GoalBonus)
	assert.Equal(t, 3*10+DailyGoalBonus, state.TotalPoints)

	// Further answers that day never pay the bonus again.
	state, outcome = ApplyCorrectAnswer(state, Event{Points: 10, Today: "2024-03-01"})
	assert.False(t, outcome.GoalReached)
	assert.Zero(t, outcome.GoalBonus)
	assert.Equal(t, 4, state.DailyGoal.Completed)

	// A new day resets the goal and allows a new bonus.
	state, _ = ApplyCorrectAnswer(state, Event{Points: 10, Today: "2024-03-02"})
	assert.Equal(t, 1, state.DailyGoal.Completed)
	assert.False(t, state.DailyGoal.BonusPaid)
}

func TestBadgesAwardedOnceEver(t *testing.T) {
	state := NewState("student-1")

	state, outcome := ApplyCorrectAnswer(state, Event{Points: 10, Today: "2024-03-01"})
	assert.Contains(t, outcome.NewBadges, BadgeFirstCorrect)

	state, outcome = ApplyCorrectAnswer(state, Event{Points: 10, Today: "2024-03-01"})
	assert.NotContains(t, outcome.NewBadges, BadgeFirstCorrect)
	assert.Equal(t, 1, countBadge(state, BadgeFirstCorrect))
}

func TestStreakBadges(t *testing.T) {
	state := NewState("student-1")
	day := []string{"2024-03-01", "2024-03-02", "2024-03-03"}

	var outcome Outcome
	for _, d := range day {
		state, outcome = ApplyCorrectAnswer(state, Event{Points: 10, Today: d})
	}
	assert.Equal(t, 3, state.CurrentStreak)
	assert.Contains(t, outcome.NewBadges, BadgeStreak3)
	assert.NotContains(t, outcome.NewBadges, BadgeStreak7)
}

func TestDailyGoalBadge(t *testing.T) {
	state := NewState("student-1")

	var outcome Outcome
	for i := 0; i < DefaultDailyTarget; i++ {
		state, outcome = ApplyCorrectAnswer(state, Event{Points: 10, Today: "2024-03-01"})
	}
	assert.Contains(t, outcome.NewBadges, BadgeDailyGoal)

	// Reaching the goal again on another day does not re-award the badge.
	for i := 0; i < DefaultDailyTarget; i++ {
		state, outcome = ApplyCorrectAnswer(state, Event{Points: 10, Today: "2024-03-02"})
	}
	assert.NotContains(t, outcome.NewBadges, BadgeDailyGoal)
	assert.Equal(t, 1, countBadge(state, BadgeDailyGoal))
}

func TestApplyIsPureOverSnapshot(t *testing.T) {
	state := NewState("student-1")
	state.TotalPoints = 50

	a, _ := ApplyCorrectAnswer(state, Event{Points: 10, Today: "2024-03-01"})
	b, _ := ApplyCorrectAnswer(state, Event{Points: 10, Today: "2024-03-01"})

	assert.Equal(t, a.TotalPoints, b.TotalPoints)
	assert.Equal(t, a.CurrentStreak, b.CurrentStreak)
	assert.Equal(t, a.DailyGoal, b.DailyGoal)
	assert.Equal(t, 50, state.TotalPoints, "input snapshot is never mutated")
}

func countBadge(state models.RewardState, id string) int {
	n := 0
	for _, b := range state.Badges {
		if b == id {
			n++
		}
	}
	return n
}
