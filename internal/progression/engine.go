package progression

import (
	"fmt"

	"learning-path-service/internal/models"
)

// Engine recomputes checkpoint mastery from the response ledger. Every
// method is a pure function of its inputs: there are no stored counters, so
// recomputing twice from the same batches always yields the same state.
type Engine struct {
	config *Config
}

// NewEngine creates an engine. A nil config uses the defaults.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{config: config}
}

// MasteryCount folds over all batches attributed to the checkpoint and
// counts distinct question ids with at least one correct ledger response.
// Skipped batches and retired question ids are excluded, and a question
// answered correctly in two different batches counts once.
func (e *Engine) MasteryCount(checkpointID, firstCheckpointID string, batches []models.QuestionBatch) (int, error) {
	counted := make(map[string]bool)

	for i := range batches {
		b := &batches[i]
		if !b.Scope.AttributedTo(checkpointID, firstCheckpointID) {
			continue
		}
		if err := e.checkBatch(b); err != nil {
			return 0, err
		}
		if b.Status == models.BatchSkipped {
			continue
		}

		retired := make(map[string]bool, len(b.RetiredQuestionIDs))
		for _, id := range b.RetiredQuestionIDs {
			retired[id] = true
		}
		for _, q := range b.Questions {
			if retired[q.ID] || counted[q.ID] {
				continue
			}
			if b.AnsweredCorrectly(q.ID) {
				counted[q.ID] = true
			}
		}
	}

	return len(counted), nil
}

// Recompute returns the checkpoint with CorrectCount and Completed
// re-derived from the ledger. It never touches any checkpoint other than the
// one it is given; unlock state of successors is the caller's job via
// DeriveUnlocks.
func (e *Engine) Recompute(cp models.Checkpoint, firstCheckpointID string, batches []models.QuestionBatch) (models.Checkpoint, error) {
	required := cp.RequiredCorrect
	if required <= 0 {
		required = e.config.RequiredCorrect
	}

	count, err := e.MasteryCount(cp.ID, firstCheckpointID, batches)
	if err != nil {
		return cp, err
	}

	cp.RequiredCorrect = required
	cp.CorrectCount = count
	cp.Completed = count >= required
	return cp, nil
}

// RecomputePath recomputes every checkpoint in order and then re-derives the
// unlock chain top-down. The terminal success gate completes only when every
// non-terminal gate has.
func (e *Engine) RecomputePath(path models.LearningPath, batches []models.QuestionBatch) (models.LearningPath, error) {
	firstID := path.FirstCheckpointID()

	out := make([]models.Checkpoint, len(path.Checkpoints))
	for i, cp := range path.Checkpoints {
		if cp.Terminal {
			out[i] = cp
			continue
		}
		recomputed, err := e.Recompute(cp, firstID, batches)
		if err != nil {
			return path, err
		}
		out[i] = recomputed
	}

	path.Checkpoints = DeriveUnlocks(out)
	return path, nil
}

// DeriveUnlocks walks the ordered checkpoint list and sets the unlock chain:
// order 0 is always unlocked, order i unlocks when i-1 is completed. The
// terminal gate is completed iff all non-terminal gates are, and unlocks
// with the last of them.
func DeriveUnlocks(checkpoints []models.Checkpoint) []models.Checkpoint {
	out := make([]models.Checkpoint, len(checkpoints))
	copy(out, checkpoints)

	allDone := true
	prevCompleted := true
	for i := range out {
		cp := &out[i]
		if cp.Terminal {
			cp.Completed = allDone
			cp.Unlocked = prevCompleted
			cp.CorrectCount = 0
			continue
		}
		cp.Unlocked = cp.Order == 0 || prevCompleted
		if !cp.Completed {
			allDone = false
		}
		prevCompleted = cp.Completed
	}
	return out
}

// checkBatch validates the structural invariants of one batch: no duplicate
// active question ids, and no ledger response to a question the batch never
// issued.
func (e *Engine) checkBatch(b *models.QuestionBatch) error {
	seen := make(map[string]bool, len(b.Questions))
	for _, q := range b.Questions {
		if seen[q.ID] {
			return fmt.Errorf("%w: question %s appears twice in batch %s", ErrInvariant, q.ID, b.ID)
		}
		seen[q.ID] = true
	}
	for _, id := range b.RetiredQuestionIDs {
		seen[id] = true
	}
	for _, r := range b.Responses {
		if !seen[r.QuestionID] {
			return fmt.Errorf("%w: response to unknown question %s in batch %s", ErrInvariant, r.QuestionID, b.ID)
		}
	}
	return nil
}
