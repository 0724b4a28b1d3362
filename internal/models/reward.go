package models

import "time"

// DailyGoal tracks correct answers toward a per-day target. Date is a UTC
// calendar day string (YYYY-MM-DD); a date change resets the count.
type DailyGoal struct {
	Date      string `bson:"date" json:"date"`
	Target    int    `bson:"target" json:"target"`
	Completed int    `bson:"completed" json:"completed"`
	BonusPaid bool   `bson:"bonus_paid" json:"bonus_paid"`
}

// Reached reports whether the target has been hit for the stored date.
func (g DailyGoal) Reached() bool {
	return g.Target > 0 && g.Completed >= g.Target
}

// RewardState is the per-student points/level/streak/badge record. It is
// independent of any subject path and is only ever written through a
// versioned compare-and-set, so two concurrent submissions cannot both apply
// against the same snapshot.
type RewardState struct {
	StudentID        string    `bson:"_id" json:"student_id"`
	TotalPoints      int       `bson:"total_points" json:"total_points"`
	Level            int       `bson:"level" json:"level"`
	CurrentStreak    int       `bson:"current_streak" json:"current_streak"`
	LongestStreak    int       `bson:"longest_streak" json:"longest_streak"`
	LastActivityDate string    `bson:"last_activity_date" json:"last_activity_date"`
	DailyGoal        DailyGoal `bson:"daily_goal" json:"daily_goal"`
	Badges           []string  `bson:"badges" json:"badges"`
	Version          int64     `bson:"version" json:"-"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

// HasBadge reports whether the badge was already awarded.
func (r *RewardState) HasBadge(id string) bool {
	for _, b := range r.Badges {
		if b == id {
			return true
		}
	}
	return false
}
