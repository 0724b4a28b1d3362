package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"learning-path-service/internal/models"
)

// Fallback is the local deterministic stand-in for the remote service.
// Grading is a trimmed, case-folded string comparison against the stored
// answer; generation templates recall questions from the topic pool.
type Fallback struct{}

func NewFallback() *Fallback {
	return &Fallback{}
}

func (f *Fallback) GradeAnswer(_ context.Context, question models.Question, studentAnswer string) (Grade, error) {
	if normalizeAnswer(studentAnswer) == normalizeAnswer(question.CorrectAnswer) {
		return Grade{IsCorrect: true, Feedback: "Correct!"}, nil
	}
	return Grade{IsCorrect: false, Feedback: "Not quite. Review this topic and try the next question."}, nil
}

func (f *Fallback) GenerateQuestions(_ context.Context, topics []string, difficulty models.Difficulty, count int) ([]models.Question, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: no topics to generate from", ErrUnavailable)
	}
	questions := make([]models.Question, 0, count)
	for i := 0; i < count; i++ {
		topic := topics[i%len(topics)]
		q := models.Question{
			ID:            uuid.NewString(),
			Text:          fmt.Sprintf("In your own words, explain the key idea of %q.", topic),
			Topic:         topic,
			Difficulty:    difficulty,
			CorrectAnswer: topic,
			CreatedAt:     time.Now().UTC(),
		}
		q.EnsurePointsValue()
		questions = append(questions, q)
	}
	return questions, nil
}

func normalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
