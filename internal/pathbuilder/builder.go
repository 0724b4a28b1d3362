package pathbuilder

import (
	"fmt"
	"sort"
	"time"

	"learning-path-service/internal/models"
	"learning-path-service/internal/progression"
)

// Builder assembles the ordered checkpoint list for a subject from the
// student's accumulated analyzed sessions. Rebuilds are idempotent: the
// same sessions always produce the same checkpoints, and progress survives
// because checkpoint identity is the order index and mastery counts are
// re-derived from batches afterwards.
type Builder struct {
	config *progression.Config
}

func NewBuilder(config *progression.Config) *Builder {
	if config == nil {
		config = progression.DefaultConfig()
	}
	return &Builder{config: config}
}

// Build produces the fixed-length path plus the terminal success gate.
// Sessions without analyzed topics are ignored; with no analyzed sessions at
// all the path is empty, which the caller renders as a locked/empty state
// rather than an error.
func (b *Builder) Build(studentID, subject string, sessions []models.StudySession) models.LearningPath {
	path := models.LearningPath{
		StudentID: studentID,
		Subject:   subject,
		UpdatedAt: time.Now().UTC(),
	}

	sessionIDs, topics := collectPool(sessions)
	if len(sessionIDs) == 0 {
		return path
	}

	checkpoints := make([]models.Checkpoint, 0, b.config.PathLength+1)
	for i := 0; i < b.config.PathLength; i++ {
		checkpoints = append(checkpoints, models.Checkpoint{
			ID:               checkpointID(studentID, subject, i),
			Order:            i,
			RequiredCorrect:  b.config.RequiredCorrect,
			Difficulty:       difficultyForOrder(i, b.config.PathLength),
			SourceSessionIDs: sessionIDs,
			Topics:           topics,
		})
	}
	checkpoints = append(checkpoints, models.Checkpoint{
		ID:               checkpointID(studentID, subject, b.config.PathLength),
		Order:            b.config.PathLength,
		Terminal:         true,
		Difficulty:       models.DifficultyHard,
		SourceSessionIDs: sessionIDs,
		Topics:           topics,
	})

	path.Checkpoints = progression.DeriveUnlocks(checkpoints)
	return path
}

// collectPool accumulates the full session-id and topic pool. Every
// checkpoint draws from the same pool; the difficulty ramp provides pacing,
// not content partitioning.
func collectPool(sessions []models.StudySession) ([]string, []string) {
	var ids []string
	topicSet := make(map[string]bool)
	for i := range sessions {
		s := &sessions[i]
		if !s.Analyzed() {
			continue
		}
		ids = append(ids, s.ID)
		for _, t := range s.Topics {
			topicSet[t] = true
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	topics := make([]string, 0, len(topicSet))
	for t := range topicSet {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return ids, topics
}

// difficultyForOrder ramps easy -> medium -> hard in thirds across the path.
func difficultyForOrder(order, pathLength int) models.Difficulty {
	third := pathLength / 3
	if third == 0 {
		third = 1
	}
	switch {
	case order < third:
		return models.DifficultyEasy
	case order < 2*third:
		return models.DifficultyMedium
	default:
		return models.DifficultyHard
	}
}

// checkpointID derives a stable id from the checkpoint's identity, so a
// rebuild keeps batches attributed to the same gate.
func checkpointID(studentID, subject string, order int) string {
	return fmt.Sprintf("%s:%s:cp-%d", studentID, subject, order)
}
