package models

import "time"

// StudySession is an analyzed study session pushed in by the transcript
// analysis collaborator. Sessions with no topics have not been analyzed yet
// and are ignored by the path builder.
type StudySession struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	StudentID  string    `bson:"student_id" json:"student_id"`
	Subject    string    `bson:"subject" json:"subject"`
	Topics     []string  `bson:"topics" json:"topics"`
	AnalyzedAt time.Time `bson:"analyzed_at" json:"analyzed_at"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Analyzed reports whether topic analysis has produced anything usable.
func (s *StudySession) Analyzed() bool {
	return len(s.Topics) > 0
}
