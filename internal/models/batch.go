package models

import "time"

type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchCompleted BatchStatus = "completed"
	BatchSkipped   BatchStatus = "skipped"
)

// Terminal reports whether a batch status can no longer change.
func (s BatchStatus) Terminal() bool {
	return s == BatchCompleted || s == BatchSkipped
}

type ScopeKind string

const (
	ScopeCheckpoint ScopeKind = "checkpoint"
	ScopeAdhoc      ScopeKind = "adhoc"
)

// BatchScope says which checkpoint a batch belongs to, if any. It is a
// tagged variant so the legacy attribution rule (ad-hoc batches count toward
// the first checkpoint only) is an explicit case rather than a nil check.
type BatchScope struct {
	Kind         ScopeKind `bson:"kind" json:"kind"`
	CheckpointID string    `bson:"checkpoint_id,omitempty" json:"checkpoint_id,omitempty"`
}

func CheckpointScope(checkpointID string) BatchScope {
	return BatchScope{Kind: ScopeCheckpoint, CheckpointID: checkpointID}
}

func AdhocScope() BatchScope {
	return BatchScope{Kind: ScopeAdhoc}
}

// AttributedTo reports whether the scope counts toward the checkpoint with
// the given id. firstCheckpointID is where unscoped legacy batches land.
func (s BatchScope) AttributedTo(checkpointID, firstCheckpointID string) bool {
	switch s.Kind {
	case ScopeCheckpoint:
		return s.CheckpointID == checkpointID
	case ScopeAdhoc:
		return checkpointID == firstCheckpointID
	}
	return false
}

// Response is one ledger entry for a correctly scored submission. Entries
// are appended to the batch document and never edited or removed.
type Response struct {
	QuestionID    string    `bson:"question_id" json:"question_id"`
	StudentAnswer string    `bson:"student_answer" json:"student_answer"`
	IsCorrect     bool      `bson:"is_correct" json:"is_correct"`
	Feedback      string    `bson:"feedback" json:"feedback"`
	PointsAwarded int       `bson:"points_awarded" json:"points_awarded"`
	SubmittedAt   time.Time `bson:"submitted_at" json:"submitted_at"`
	// RewardApplied flips to true once the reward for this entry has
	// committed. An entry without it is a submission left to resume.
	RewardApplied bool `bson:"reward_applied" json:"-"`
}

// QuestionBatch is an issued set of practice questions. Questions holds the
// active list; when a question is replaced after a wrong answer its id moves
// to RetiredQuestionIDs and stays excluded from mastery counting and
// re-issuance forever.
type QuestionBatch struct {
	ID                 string      `bson:"_id,omitempty" json:"id"`
	StudentID          string      `bson:"student_id" json:"student_id"`
	Subject            string      `bson:"subject" json:"subject"`
	Scope              BatchScope  `bson:"scope" json:"scope"`
	SourceSessionID    string      `bson:"source_session_id,omitempty" json:"source_session_id,omitempty"`
	Status             BatchStatus `bson:"status" json:"status"`
	Questions          []Question  `bson:"questions" json:"questions"`
	Responses          []Response  `bson:"responses" json:"responses"`
	RetiredQuestionIDs []string    `bson:"retired_question_ids" json:"retired_question_ids"`
	CreatedAt          time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time   `bson:"updated_at" json:"updated_at"`
}

// ActiveQuestion returns the question with the given id if it is in the
// active list.
func (b *QuestionBatch) ActiveQuestion(questionID string) (Question, bool) {
	for _, q := range b.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return Question{}, false
}

// CorrectResponse returns the ledger entry for a correctly answered
// question.
func (b *QuestionBatch) CorrectResponse(questionID string) (Response, bool) {
	for _, r := range b.Responses {
		if r.QuestionID == questionID && r.IsCorrect {
			return r, true
		}
	}
	return Response{}, false
}

// AnsweredCorrectly reports whether the ledger holds a correct response for
// the question.
func (b *QuestionBatch) AnsweredCorrectly(questionID string) bool {
	_, ok := b.CorrectResponse(questionID)
	return ok
}

// NextPendingQuestion returns the first active question without a correct
// ledger response.
func (b *QuestionBatch) NextPendingQuestion() (Question, bool) {
	for _, q := range b.Questions {
		if !b.AnsweredCorrectly(q.ID) {
			return q, true
		}
	}
	return Question{}, false
}

// AllAnswered reports whether every active question has a correct response.
func (b *QuestionBatch) AllAnswered() bool {
	_, pending := b.NextPendingQuestion()
	return !pending
}

// IssuedQuestionIDs returns every question id the batch has ever issued,
// active or retired.
func (b *QuestionBatch) IssuedQuestionIDs() []string {
	ids := make([]string, 0, len(b.Questions)+len(b.RetiredQuestionIDs))
	for _, q := range b.Questions {
		ids = append(ids, q.ID)
	}
	ids = append(ids, b.RetiredQuestionIDs...)
	return ids
}
