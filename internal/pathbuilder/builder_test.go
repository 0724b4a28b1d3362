package pathbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-path-service/internal/models"
)

func analyzedSession(id string, topics ...string) models.StudySession {
	return models.StudySession{ID: id, Topics: topics}
}

func TestBuildProducesFixedLengthPathPlusSuccessGate(t *testing.T) {
	b := NewBuilder(nil)

	path := b.Build("student-1", "biology", []models.StudySession{
		analyzedSession("s1", "cells", "osmosis"),
		analyzedSession("s2", "photosynthesis"),
	})

	require.Len(t, path.Checkpoints, 11)
	for i, cp := range path.Checkpoints[:10] {
		assert.Equal(t, i, cp.Order)
		assert.False(t, cp.Terminal)
		assert.Equal(t, 3, cp.RequiredCorrect)
		assert.ElementsMatch(t, []string{"s1", "s2"}, cp.SourceSessionIDs, "every gate draws from the full session pool")
		assert.ElementsMatch(t, []string{"cells", "osmosis", "photosynthesis"}, cp.Topics)
	}
	terminal := path.Checkpoints[10]
	assert.True(t, terminal.Terminal)
	assert.Equal(t, 10, terminal.Order)
	assert.False(t, terminal.Completed)
}

func TestBuildUnlocksOnlyFirstCheckpoint(t *testing.T) {
	b := NewBuilder(nil)
	path := b.Build("student-1", "biology", []models.StudySession{analyzedSession("s1", "cells")})

	assert.True(t, path.Checkpoints[0].Unlocked)
	for _, cp := range path.Checkpoints[1:] {
		assert.False(t, cp.Unlocked)
	}
}

func TestBuildIgnoresUnanalyzedSessions(t *testing.T) {
	b := NewBuilder(nil)

	path := b.Build("student-1", "biology", []models.StudySession{
		{ID: "raw-1"}, // no topics yet
		analyzedSession("s1", "cells"),
	})

	require.False(t, path.Empty())
	assert.ElementsMatch(t, []string{"s1"}, path.Checkpoints[0].SourceSessionIDs)
}

func TestBuildEmptyPathWithoutAnalyzedSessions(t *testing.T) {
	b := NewBuilder(nil)

	path := b.Build("student-1", "biology", []models.StudySession{{ID: "raw-1"}})
	assert.True(t, path.Empty())

	path = b.Build("student-1", "biology", nil)
	assert.True(t, path.Empty())
}

func TestBuildIsIdempotent(t *testing.T) {
	b := NewBuilder(nil)
	sessions := []models.StudySession{
		analyzedSession("s2", "osmosis"),
		analyzedSession("s1", "cells"),
	}

	first := b.Build("student-1", "biology", sessions)
	second := b.Build("student-1", "biology", sessions)

	require.Len(t, second.Checkpoints, len(first.Checkpoints))
	for i := range first.Checkpoints {
		assert.Equal(t, first.Checkpoints[i].ID, second.Checkpoints[i].ID,
			"checkpoint identity must survive rebuilds so batches stay attributed")
		assert.Equal(t, first.Checkpoints[i].Topics, second.Checkpoints[i].Topics)
	}
}

func TestDifficultyRampsAcrossPath(t *testing.T) {
	b := NewBuilder(nil)
	path := b.Build("student-1", "biology", []models.StudySession{analyzedSession("s1", "cells")})

	assert.Equal(t, models.DifficultyEasy, path.Checkpoints[0].Difficulty)
	assert.Equal(t, models.DifficultyMedium, path.Checkpoints[4].Difficulty)
	assert.Equal(t, models.DifficultyHard, path.Checkpoints[9].Difficulty)
}
