package models

import "time"

// Attempt is an analytics-only record of an incorrect submission. Attempts
// never contribute to mastery counts or reward state; the scored ledger for
// a question only ever holds its correct response.
type Attempt struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	StudentID     string    `bson:"student_id" json:"student_id"`
	BatchID       string    `bson:"batch_id" json:"batch_id"`
	QuestionID    string    `bson:"question_id" json:"question_id"`
	StudentAnswer string    `bson:"student_answer" json:"student_answer"`
	Feedback      string    `bson:"feedback" json:"feedback"`
	SubmittedAt   time.Time `bson:"submitted_at" json:"submitted_at"`
}
