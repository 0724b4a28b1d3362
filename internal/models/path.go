package models

import "time"

// DefaultRequiredCorrect is how many distinct questions must be answered
// correctly before a checkpoint is complete.
const DefaultRequiredCorrect = 3

// Checkpoint is one mastery gate in a subject path. CorrectCount, Completed
// and Unlocked are derived from the response ledger on every recompute and
// stored only as a read cache.
type Checkpoint struct {
	ID               string     `bson:"id" json:"id"`
	Order            int        `bson:"order" json:"order"`
	Unlocked         bool       `bson:"unlocked" json:"unlocked"`
	Completed        bool       `bson:"completed" json:"completed"`
	CorrectCount     int        `bson:"correct_count" json:"correct_count"`
	RequiredCorrect  int        `bson:"required_correct" json:"required_correct"`
	Terminal         bool       `bson:"terminal" json:"terminal"`
	Difficulty       Difficulty `bson:"difficulty" json:"difficulty"`
	SourceSessionIDs []string   `bson:"source_session_ids" json:"source_session_ids"`
	Topics           []string   `bson:"topics" json:"topics"`
}

// LearningPath is the ordered checkpoint list for one (student, subject)
// pair. Rebuilds replace the whole list; progress survives because mastery
// counts are re-derived from batches, never stored as running counters.
type LearningPath struct {
	ID          string       `bson:"_id,omitempty" json:"id"`
	StudentID   string       `bson:"student_id" json:"student_id"`
	Subject     string       `bson:"subject" json:"subject"`
	Checkpoints []Checkpoint `bson:"checkpoints" json:"checkpoints"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}

// Empty reports whether the path has no checkpoints yet (no analyzed
// sessions to build from).
func (p *LearningPath) Empty() bool {
	return len(p.Checkpoints) == 0
}

// CheckpointByID finds a checkpoint in the path.
func (p *LearningPath) CheckpointByID(id string) (Checkpoint, bool) {
	for _, cp := range p.Checkpoints {
		if cp.ID == id {
			return cp, true
		}
	}
	return Checkpoint{}, false
}

// FirstCheckpointID returns the id of the order-0 checkpoint, where legacy
// unscoped batches are attributed.
func (p *LearningPath) FirstCheckpointID() string {
	for _, cp := range p.Checkpoints {
		if cp.Order == 0 {
			return cp.ID
		}
	}
	return ""
}
