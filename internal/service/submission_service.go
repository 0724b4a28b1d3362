package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"learning-path-service/internal/event"
	"learning-path-service/internal/genai"
	"learning-path-service/internal/models"
	"learning-path-service/internal/repository"
	"learning-path-service/internal/reward"
)

// rewardRetries bounds the compare-and-set loop on the reward record. The
// generation call is the only operation retried beyond this.
const rewardRetries = 5

// SubmitResult is the full outcome of one answer submission.
type SubmitResult struct {
	IsCorrect                bool             `json:"is_correct"`
	Feedback                 string           `json:"feedback"`
	PointsAwarded            int              `json:"points_awarded"`
	LevelUp                  bool             `json:"level_up"`
	NewLevel                 int              `json:"new_level,omitempty"`
	NewBadges                []string         `json:"new_badges,omitempty"`
	GoalBonus                int              `json:"goal_bonus,omitempty"`
	BatchCompleted           bool             `json:"batch_completed"`
	CheckpointCompleted      bool             `json:"checkpoint_completed"`
	NextUnlockedCheckpointID string           `json:"next_unlocked_checkpoint_id,omitempty"`
	ReplacementQuestion      *models.Question `json:"replacement_question,omitempty"`
	NextQuestion             *models.Question `json:"next_question,omitempty"`
}

// SubmissionService scores answers and fans the result out to the two
// derived views: checkpoint progression and reward state. A reward failure
// after the ledger append surfaces as a submission error; the ledger entry
// stays marked reward-pending, and retrying the submission resumes the
// reward instead of being rejected as a replay.
type SubmissionService struct {
	BatchRepo   *repository.BatchRepository
	AttemptRepo *repository.AttemptRepository
	RewardRepo  *repository.RewardRepository
	Paths       *PathService
	Questions   *genai.Service
	Publisher   *event.EventPublisher

	now func() time.Time
}

func NewSubmissionService(
	batchRepo *repository.BatchRepository,
	attemptRepo *repository.AttemptRepository,
	rewardRepo *repository.RewardRepository,
	paths *PathService,
	questions *genai.Service,
	publisher *event.EventPublisher,
) *SubmissionService {
	return &SubmissionService{
		BatchRepo:   batchRepo,
		AttemptRepo: attemptRepo,
		RewardRepo:  rewardRepo,
		Paths:       paths,
		Questions:   questions,
		Publisher:   publisher,
		now:         time.Now,
	}
}

// SubmitAnswer grades one answer against its batch. A wrong answer is
// logged for analytics, replaced with a fresh question at the same topic and
// difficulty, and touches neither mastery counts nor reward state. A right
// answer is appended to the ledger, advances the batch, recomputes the
// checkpoint immediately and applies the reward engine under a bounded
// compare-and-set.
func (s *SubmissionService) SubmitAnswer(ctx context.Context, studentID, batchID, questionID, answer string) (*SubmitResult, error) {
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

	// A correct answer whose reward write failed leaves a ledger entry
	// without its reward marker. The retried submission lands here, before
	// the terminal and replay checks, and finishes what the first attempt
	// started.
	if resp, ok := pendingReward(batch, questionID); ok {
		return s.resumeCorrect(ctx, batch, resp)
	}

	if batch.Status.Terminal() {
		return nil, ErrBatchClosed
	}

	question, ok := batch.ActiveQuestion(questionID)
	if !ok {
		return nil, fmt.Errorf("question %s: %w", questionID, ErrNotFound)
	}
	if batch.AnsweredCorrectly(questionID) {
		// The ledger is answer-once; a second submission for an already
		// mastered question is a replay, not new evidence.
		return nil, fmt.Errorf("question %s already answered: %w", questionID, ErrBatchClosed)
	}

	grade, err := s.Questions.GradeAnswer(ctx, question, answer)
	if err != nil {
		return nil, err
	}

	if !grade.IsCorrect {
		return s.handleIncorrect(ctx, batch, question, answer, grade)
	}
	return s.handleCorrect(ctx, batch, question, answer, grade)
}

// handleIncorrect logs the attempt and swaps in a replacement question from
// the same topic pool at the same difficulty. No points, no ledger entry, no
// reward mutation.
func (s *SubmissionService) handleIncorrect(ctx context.Context, batch *models.QuestionBatch, question models.Question, answer string, grade genai.Grade) (*SubmitResult, error) {
	attempt := &models.Attempt{
		StudentID:     batch.StudentID,
		BatchID:       batch.ID,
		QuestionID:    question.ID,
		StudentAnswer: answer,
		Feedback:      grade.Feedback,
		SubmittedAt:   s.now().UTC(),
	}
	if err := s.AttemptRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}

	replacements, err := s.Questions.GenerateQuestions(ctx, replacementTopics(question, batch), question.Difficulty, 1)
	if err != nil {
		return nil, err
	}
	replacement := replacements[0]

	if err := s.BatchRepo.ReplaceQuestion(ctx, batch.ID, question.ID, replacement); err != nil {
		if err == repository.ErrConflict {
			return nil, ErrConflict
		}
		return nil, err
	}

	public := replacement
	public.CorrectAnswer = ""
	return &SubmitResult{
		IsCorrect:           false,
		Feedback:            grade.Feedback,
		ReplacementQuestion: &public,
	}, nil
}

func (s *SubmissionService) handleCorrect(ctx context.Context, batch *models.QuestionBatch, question models.Question, answer string, grade genai.Grade) (*SubmitResult, error) {
	points := question.PointsValue
	if points <= 0 {
		points = models.BasePoints
	}
	submittedAt := s.now().UTC()

	response := models.Response{
		QuestionID:    question.ID,
		StudentAnswer: answer,
		IsCorrect:     true,
		Feedback:      grade.Feedback,
		PointsAwarded: points,
		SubmittedAt:   submittedAt,
	}

	complete, err := s.BatchRepo.AppendResponse(ctx, batch.ID, response)
	if err != nil {
		if err == repository.ErrConflict {
			return nil, ErrConflict
		}
		return nil, err
	}
	batch.Responses = append(batch.Responses, response)
	if complete {
		batch.Status = models.BatchCompleted
	}

	result := &SubmitResult{
		IsCorrect:      true,
		Feedback:       grade.Feedback,
		PointsAwarded:  points,
		BatchCompleted: complete,
	}
	if next, pending := batch.NextPendingQuestion(); pending {
		public := next
		public.CorrectAnswer = ""
		result.NextQuestion = &public
	}

	// Progression view: snapshot the stored path before recomputing so the
	// completion notification fires only on the transition, then rebuild
	// immediately so the very next read sees the unlock.
	s.Paths.InvalidateCache(ctx, batch.StudentID, batch.Subject)
	before, err := s.Paths.StoredPath(ctx, batch.StudentID, batch.Subject)
	if err != nil {
		return nil, err
	}
	path, err := s.Paths.RebuildPath(ctx, batch.StudentID, batch.Subject)
	if err != nil {
		return nil, err
	}
	checkpointID := s.fillProgression(result, batch, path)
	justCompleted := result.CheckpointCompleted && !completedBefore(before, checkpointID)

	// Reward view: same correctness signal, independent state.
	outcome, err := s.applyReward(ctx, batch.StudentID, points, submittedAt)
	if err != nil {
		return nil, err
	}
	s.markRewardApplied(ctx, batch.ID, response.QuestionID)
	result.LevelUp = outcome.LevelUp
	result.NewLevel = outcome.NewLevel
	result.NewBadges = outcome.NewBadges
	result.GoalBonus = outcome.GoalBonus

	s.publishNotifications(batch.StudentID, result, justCompleted)
	return result, nil
}

// resumeCorrect finishes a submission whose ledger entry committed but
// whose reward write did not. The answer is not re-graded and not
// re-appended; only the reward fold runs again, from the stored response.
func (s *SubmissionService) resumeCorrect(ctx context.Context, batch *models.QuestionBatch, resp models.Response) (*SubmitResult, error) {
	result := &SubmitResult{
		IsCorrect:      true,
		Feedback:       resp.Feedback,
		PointsAwarded:  resp.PointsAwarded,
		BatchCompleted: batch.Status == models.BatchCompleted,
	}
	if next, pending := batch.NextPendingQuestion(); pending {
		public := next
		public.CorrectAnswer = ""
		result.NextQuestion = &public
	}

	path, err := s.Paths.RebuildPath(ctx, batch.StudentID, batch.Subject)
	if err != nil {
		return nil, err
	}
	s.fillProgression(result, batch, path)

	outcome, err := s.applyReward(ctx, batch.StudentID, resp.PointsAwarded, resp.SubmittedAt)
	if err != nil {
		return nil, err
	}
	s.markRewardApplied(ctx, batch.ID, resp.QuestionID)
	result.LevelUp = outcome.LevelUp
	result.NewLevel = outcome.NewLevel
	result.NewBadges = outcome.NewBadges
	result.GoalBonus = outcome.GoalBonus

	// The checkpoint recompute already ran on the first attempt, so no
	// completion transition can happen here.
	s.publishNotifications(batch.StudentID, result, false)
	return result, nil
}

// applyReward runs the pure reward fold under a versioned compare-and-set.
// A conflict means another submission committed first; re-read and re-apply
// against the fresh snapshot.
func (s *SubmissionService) applyReward(ctx context.Context, studentID string, points int, submittedAt time.Time) (reward.Outcome, error) {
	ev := reward.Event{Points: points, Today: reward.Today(submittedAt)}

	for attempt := 0; attempt < rewardRetries; attempt++ {
		snapshot, err := s.RewardRepo.GetOrCreate(ctx, studentID, reward.NewState(studentID))
		if err != nil {
			return reward.Outcome{}, err
		}

		next, outcome := reward.ApplyCorrectAnswer(*snapshot, ev)
		err = s.RewardRepo.CompareAndSet(ctx, snapshot.Version, next)
		if err == nil {
			return outcome, nil
		}
		if err != repository.ErrConflict {
			return reward.Outcome{}, err
		}
	}
	return reward.Outcome{}, ErrConflict
}

// markRewardApplied sets the reward marker on the ledger entry. Failure is
// logged, not returned: the submission already succeeded, and an unset
// marker only re-runs the idempotence check on a later retry.
func (s *SubmissionService) markRewardApplied(ctx context.Context, batchID, questionID string) {
	if err := s.BatchRepo.MarkRewardApplied(ctx, batchID, questionID); err != nil {
		log.Printf("reward marker write failed for batch %s question %s: %v", batchID, questionID, err)
	}
}

// pendingReward returns the stored correct response for the question when
// its reward has not been committed yet.
func pendingReward(batch *models.QuestionBatch, questionID string) (models.Response, bool) {
	resp, ok := batch.CorrectResponse(questionID)
	if !ok || resp.RewardApplied {
		return models.Response{}, false
	}
	return resp, true
}

// completedBefore reports whether the checkpoint was already completed in
// the previously stored path snapshot.
func completedBefore(path *models.LearningPath, checkpointID string) bool {
	if path == nil || checkpointID == "" {
		return false
	}
	cp, ok := path.CheckpointByID(checkpointID)
	return ok && cp.Completed
}

// fillProgression derives the checkpoint-facing fields of the result from
// the freshly recomputed path and returns the attributed checkpoint's id.
func (s *SubmissionService) fillProgression(result *SubmitResult, batch *models.QuestionBatch, path *models.LearningPath) string {
	firstID := path.FirstCheckpointID()
	for i, cp := range path.Checkpoints {
		if cp.Terminal || !batch.Scope.AttributedTo(cp.ID, firstID) {
			continue
		}
		result.CheckpointCompleted = cp.Completed
		if cp.Completed && i+1 < len(path.Checkpoints) && path.Checkpoints[i+1].Unlocked {
			result.NextUnlockedCheckpointID = path.Checkpoints[i+1].ID
		}
		return cp.ID
	}
	return ""
}

// publishNotifications fans out fire-and-forget notifications for the
// milestones this submission crossed. checkpointCompleted is the
// transition, not the state: a review answer against an already completed
// checkpoint does not announce it again.
func (s *SubmissionService) publishNotifications(studentID string, result *SubmitResult, checkpointCompleted bool) {
	if s.Publisher == nil {
		return
	}
	if result.LevelUp {
		s.Publisher.Notify(studentID, "level_up", map[string]interface{}{"level": result.NewLevel})
	}
	for _, badge := range result.NewBadges {
		s.Publisher.Notify(studentID, "badge_awarded", map[string]interface{}{"badge": badge})
	}
	if result.GoalBonus > 0 {
		s.Publisher.Notify(studentID, "daily_goal_reached", map[string]interface{}{"bonus": result.GoalBonus})
	}
	if checkpointCompleted {
		s.Publisher.Notify(studentID, "checkpoint_completed", map[string]interface{}{
			"next_unlocked_checkpoint_id": result.NextUnlockedCheckpointID,
		})
	}
}

// replacementTopics prefers the failed question's own topic so the
// replacement stays on subject, widening to the batch's pool when empty.
func replacementTopics(question models.Question, batch *models.QuestionBatch) []string {
	if question.Topic != "" {
		return []string{question.Topic}
	}
	seen := make(map[string]bool)
	var topics []string
	for _, q := range batch.Questions {
		if q.Topic != "" && !seen[q.Topic] {
			seen[q.Topic] = true
			topics = append(topics, q.Topic)
		}
	}
	if len(topics) == 0 {
		topics = []string{batch.Subject}
	}
	return topics
}
