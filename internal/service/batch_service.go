package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"learning-path-service/internal/genai"
	"learning-path-service/internal/models"
	"learning-path-service/internal/repository"
)

// DefaultBatchSize is how many questions a new batch is issued with.
const DefaultBatchSize = 3

// BatchService issues question batches and drives their pending -> terminal
// lifecycle.
type BatchService struct {
	BatchRepo *repository.BatchRepository
	Paths     *PathService
	Questions *genai.Service
}

func NewBatchService(batchRepo *repository.BatchRepository, paths *PathService, questions *genai.Service) *BatchService {
	return &BatchService{
		BatchRepo: batchRepo,
		Paths:     paths,
		Questions: questions,
	}
}

// StartBatch issues a new pending batch for a checkpoint or for ad-hoc
// practice. A locked checkpoint is rejected with ErrCheckpointLocked; a
// completed one may be re-entered for review. Question ids ever issued in
// the checkpoint's scope, including retired and skipped ones, are excluded
// from re-issuance.
func (s *BatchService) StartBatch(ctx context.Context, studentID, subject string, checkpointID string, difficulty models.Difficulty) (*models.QuestionBatch, error) {
	path, err := s.Paths.GetOrBuildPath(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}

	scope := models.AdhocScope()
	var pool []string
	if checkpointID != "" {
		cp, ok := path.CheckpointByID(checkpointID)
		if !ok {
			return nil, fmt.Errorf("checkpoint %s: %w", checkpointID, ErrNotFound)
		}
		if cp.Terminal {
			return nil, fmt.Errorf("checkpoint %s is the success gate: %w", checkpointID, ErrNotFound)
		}
		if !cp.Unlocked {
			return nil, ErrCheckpointLocked
		}
		scope = models.CheckpointScope(cp.ID)
		pool = cp.Topics
		if difficulty == "" {
			difficulty = cp.Difficulty
		}
	} else {
		pool = collectTopics(path)
	}
	if difficulty == "" {
		difficulty = models.DifficultyEasy
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no analyzed topics to practice: %w", ErrNotFound)
	}

	questions, err := s.Questions.GenerateQuestions(ctx, pool, difficulty, DefaultBatchSize)
	if err != nil {
		return nil, err
	}
	questions = s.dropAlreadyIssued(ctx, studentID, subject, path, scope, questions)
	if len(questions) == 0 {
		return nil, fmt.Errorf("no fresh questions available: %w", genai.ErrUnavailable)
	}

	now := time.Now().UTC()
	batch := &models.QuestionBatch{
		StudentID:          studentID,
		Subject:            subject,
		Scope:              scope,
		Status:             models.BatchPending,
		Questions:          questions,
		Responses:          []models.Response{},
		RetiredQuestionIDs: []string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.BatchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Skip abandons a pending batch. Its questions stop counting toward mastery
// but stay excluded from re-issuance, so abandoning is never a cheap retry.
func (s *BatchService) Skip(ctx context.Context, studentID, batchID string) (*models.QuestionBatch, error) {
	batch, err := s.BatchRepo.FindByID(ctx, batchID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("batch %s: %w", batchID, ErrNotFound)
		}
		return nil, err
	}
	if batch.StudentID != studentID {
		return nil, fmt.Errorf("batch %s: %w", batchID, ErrNotFound)
	}
	if batch.Status.Terminal() {
		return nil, ErrBatchClosed
	}

	if err := s.BatchRepo.UpdateStatus(ctx, batchID, models.BatchSkipped); err != nil {
		if err == repository.ErrConflict {
			return nil, ErrBatchClosed
		}
		return nil, err
	}
	batch.Status = models.BatchSkipped

	s.Paths.InvalidateCache(ctx, studentID, batch.Subject)
	return batch, nil
}

// GetBatch returns a student's batch for review surfaces.
func (s *BatchService) GetBatch(ctx context.Context, studentID, batchID string) (*models.QuestionBatch, error) {
	batch, err := s.BatchRepo.FindByID(ctx, batchID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("batch %s: %w", batchID, ErrNotFound)
		}
		return nil, err
	}
	if batch.StudentID != studentID {
		return nil, fmt.Errorf("batch %s: %w", batchID, ErrNotFound)
	}
	return batch, nil
}

// dropAlreadyIssued filters freshly generated questions whose ids collide
// with anything ever issued in the same scope.
func (s *BatchService) dropAlreadyIssued(ctx context.Context, studentID, subject string, path *models.LearningPath, scope models.BatchScope, questions []models.Question) []models.Question {
	batches, err := s.BatchRepo.FindByStudentSubject(ctx, studentID, subject)
	if err != nil {
		// Exclusion is a re-issuance guard, not a correctness gate; issue
		// the generated set rather than failing the start.
		return questions
	}

	issued := make(map[string]bool)
	firstID := path.FirstCheckpointID()
	for i := range batches {
		b := &batches[i]
		sameScope := b.Scope == scope
		if scope.Kind == models.ScopeCheckpoint {
			sameScope = b.Scope.AttributedTo(scope.CheckpointID, firstID)
		}
		if !sameScope {
			continue
		}
		for _, id := range b.IssuedQuestionIDs() {
			issued[id] = true
		}
	}

	out := questions[:0]
	for _, q := range questions {
		if !issued[q.ID] {
			out = append(out, q)
		}
	}
	return out
}

func collectTopics(path *models.LearningPath) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, cp := range path.Checkpoints {
		for _, t := range cp.Topics {
			if !seen[t] {
				seen[t] = true
				topics = append(topics, t)
			}
		}
	}
	return topics
}
