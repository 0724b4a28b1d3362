package models

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyPoints defines the base points awarded for a correct answer
// at each difficulty level.
var DifficultyPoints = map[Difficulty]int{
	DifficultyEasy:   10,
	DifficultyMedium: 15,
	DifficultyHard:   20,
}

// BasePoints is the award for questions issued without a difficulty tag
// (legacy ad-hoc batches).
const BasePoints = 10

// Question is a single practice question. Once issued to a student it is
// never mutated; a regenerated question after a wrong answer is a new
// Question value with a new ID.
type Question struct {
	ID            string     `bson:"id" json:"id"`
	Text          string     `bson:"text" json:"text"`
	Topic         string     `bson:"topic" json:"topic"`
	Difficulty    Difficulty `bson:"difficulty" json:"difficulty"`
	CorrectAnswer string     `bson:"correct_answer" json:"-"`
	PointsValue   int        `bson:"points_value" json:"points_value"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
}

// EnsurePointsValue fills in PointsValue from the difficulty table when a
// generated question arrives without one.
func (q *Question) EnsurePointsValue() {
	if q.PointsValue > 0 {
		return
	}
	if pts, ok := DifficultyPoints[q.Difficulty]; ok {
		q.PointsValue = pts
	} else {
		q.PointsValue = BasePoints
	}
}

func (d Difficulty) Valid() bool {
	_, ok := DifficultyPoints[d]
	return ok
}
