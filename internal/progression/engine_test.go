package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-path-service/internal/models"
)

func makeCheckpoint(id string, order int) models.Checkpoint {
	return models.Checkpoint{
		ID:              id,
		Order:           order,
		RequiredCorrect: 3,
	}
}

func checkpointBatch(checkpointID string, questionIDs []string, correctIDs []string) models.QuestionBatch {
	b := models.QuestionBatch{
		ID:     "batch-" + checkpointID,
		Scope:  models.CheckpointScope(checkpointID),
		Status: models.BatchPending,
	}
	for _, id := range questionIDs {
		b.Questions = append(b.Questions, models.Question{ID: id})
	}
	for _, id := range correctIDs {
		b.Responses = append(b.Responses, models.Response{QuestionID: id, IsCorrect: true})
	}
	return b
}

func TestMasteryCountDeduplicatesAcrossBatches(t *testing.T) {
	engine := NewEngine(nil)

	// The same question answered correctly in two batches counts once.
	b1 := checkpointBatch("cp-0", []string{"q1", "q2"}, []string{"q1"})
	b1.ID = "b1"
	b2 := checkpointBatch("cp-0", []string{"q1", "q3"}, []string{"q1", "q3"})
	b2.ID = "b2"

	count, err := engine.MasteryCount("cp-0", "cp-0", []models.QuestionBatch{b1, b2})
	require.NoError(t, err)
	assert.Equal(t, 2, count, "q1 must count once across batches")
}

func TestRecomputeIsIdempotent(t *testing.T) {
	engine := NewEngine(nil)
	cp := makeCheckpoint("cp-0", 0)
	batches := []models.QuestionBatch{
		checkpointBatch("cp-0", []string{"q1", "q2", "q3"}, []string{"q1", "q2"}),
	}

	first, err := engine.Recompute(cp, "cp-0", batches)
	require.NoError(t, err)
	second, err := engine.Recompute(first, "cp-0", batches)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, second.CorrectCount)
	assert.False(t, second.Completed)
}

func TestSkippedBatchesAreExcluded(t *testing.T) {
	engine := NewEngine(nil)

	skipped := checkpointBatch("cp-0", []string{"q1", "q2", "q3"}, []string{"q1", "q2", "q3"})
	skipped.Status = models.BatchSkipped

	count, err := engine.MasteryCount("cp-0", "cp-0", []models.QuestionBatch{skipped})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRetiredQuestionsNeverCount(t *testing.T) {
	engine := NewEngine(nil)

	// q1 was answered wrong, replaced by q4, and somehow still has a stale
	// correct response recorded under its id. It must not count.
	b := checkpointBatch("cp-0", []string{"q2", "q3", "q4"}, []string{"q2"})
	b.RetiredQuestionIDs = []string{"q1"}
	b.Responses = append(b.Responses, models.Response{QuestionID: "q1", IsCorrect: true})

	count, err := engine.MasteryCount("cp-0", "cp-0", []models.QuestionBatch{b})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAdhocBatchesCountTowardFirstCheckpointOnly(t *testing.T) {
	engine := NewEngine(nil)

	adhoc := models.QuestionBatch{
		ID:     "legacy",
		Scope:  models.AdhocScope(),
		Status: models.BatchCompleted,
		Questions: []models.Question{
			{ID: "q1"}, {ID: "q2"},
		},
		Responses: []models.Response{
			{QuestionID: "q1", IsCorrect: true},
			{QuestionID: "q2", IsCorrect: true},
		},
	}

	count, err := engine.MasteryCount("cp-0", "cp-0", []models.QuestionBatch{adhoc})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = engine.MasteryCount("cp-1", "cp-0", []models.QuestionBatch{adhoc})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestInvariantViolations(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("duplicate question id in batch", func(t *testing.T) {
		b := checkpointBatch("cp-0", []string{"q1", "q1"}, nil)
		_, err := engine.MasteryCount("cp-0", "cp-0", []models.QuestionBatch{b})
		assert.ErrorIs(t, err, ErrInvariant)
	})

	t.Run("response to question never issued", func(t *testing.T) {
		b := checkpointBatch("cp-0", []string{"q1"}, nil)
		b.Responses = []models.Response{{QuestionID: "ghost", IsCorrect: true}}
		_, err := engine.MasteryCount("cp-0", "cp-0", []models.QuestionBatch{b})
		assert.ErrorIs(t, err, ErrInvariant)
	})
}

func TestDeriveUnlocks(t *testing.T) {
	checkpoints := []models.Checkpoint{
		{ID: "cp-0", Order: 0, Completed: true},
		{ID: "cp-1", Order: 1, Completed: true},
		{ID: "cp-2", Order: 2, Completed: false},
		{ID: "cp-3", Order: 3, Completed: false},
		{ID: "cp-4", Order: 4, Terminal: true},
	}

	out := DeriveUnlocks(checkpoints)

	assert.True(t, out[0].Unlocked)
	assert.True(t, out[1].Unlocked)
	assert.True(t, out[2].Unlocked, "cp-2 unlocks because cp-1 completed")
	assert.False(t, out[3].Unlocked, "cp-3 stays locked behind incomplete cp-2")
	assert.False(t, out[4].Unlocked)
	assert.False(t, out[4].Completed, "terminal gate needs every gate completed")

	// Never unlocked without the predecessor completed.
	for i := 1; i < len(out); i++ {
		if out[i].Unlocked {
			assert.True(t, out[i-1].Completed, "checkpoint %d unlocked without predecessor completed", i)
		}
	}
}

func TestTerminalGateCompletesWhenAllGatesDo(t *testing.T) {
	checkpoints := []models.Checkpoint{
		{ID: "cp-0", Order: 0, Completed: true},
		{ID: "cp-1", Order: 1, Completed: true},
		{ID: "cp-2", Order: 2, Terminal: true},
	}

	out := DeriveUnlocks(checkpoints)
	assert.True(t, out[2].Unlocked)
	assert.True(t, out[2].Completed)
}

func TestProgressionScenario(t *testing.T) {
	engine := NewEngine(nil)

	path := models.LearningPath{
		Checkpoints: []models.Checkpoint{
			makeCheckpoint("cp-0", 0),
			makeCheckpoint("cp-1", 1),
			{ID: "cp-2", Order: 2, Terminal: true},
		},
	}

	// Two correct answers plus one wrong (q3 replaced by q4, no response).
	batch := checkpointBatch("cp-0", []string{"q1", "q2", "q4"}, []string{"q1", "q2"})
	batch.RetiredQuestionIDs = []string{"q3"}

	path, err := engine.RecomputePath(path, []models.QuestionBatch{batch})
	require.NoError(t, err)

	assert.Equal(t, 2, path.Checkpoints[0].CorrectCount)
	assert.False(t, path.Checkpoints[0].Completed)
	assert.False(t, path.Checkpoints[1].Unlocked, "checkpoint 1 stays locked at 2/3")

	// The replacement is answered correctly.
	batch.Responses = append(batch.Responses, models.Response{QuestionID: "q4", IsCorrect: true})

	path, err = engine.RecomputePath(path, []models.QuestionBatch{batch})
	require.NoError(t, err)

	assert.Equal(t, 3, path.Checkpoints[0].CorrectCount)
	assert.True(t, path.Checkpoints[0].Completed)
	assert.True(t, path.Checkpoints[1].Unlocked)
	assert.False(t, path.Checkpoints[2].Completed)
}

func TestReviewAfterCompletionNeverReducesCount(t *testing.T) {
	engine := NewEngine(nil)
	cp := makeCheckpoint("cp-0", 0)

	mastered := checkpointBatch("cp-0", []string{"q1", "q2", "q3"}, []string{"q1", "q2", "q3"})
	mastered.ID = "b1"
	mastered.Status = models.BatchCompleted

	// A review batch where a new question was failed and replaced, with
	// nothing answered yet.
	review := checkpointBatch("cp-0", []string{"q5"}, nil)
	review.ID = "b2"
	review.RetiredQuestionIDs = []string{"q4"}

	out, err := engine.Recompute(cp, "cp-0", []models.QuestionBatch{mastered, review})
	require.NoError(t, err)
	assert.Equal(t, 3, out.CorrectCount)
	assert.True(t, out.Completed)
}
