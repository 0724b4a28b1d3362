// Package genai wraps the external question-generation and answer-grading
// capability. The remote service is assumed to fail or time out; every call
// site goes through Grade/Generate on the Service wrapper, which applies the
// deterministic local fallback so a submission is never left unresolved.
package genai

import (
	"context"
	"errors"
	"log"
	"time"

	"learning-path-service/internal/models"
)

// ErrUnavailable is returned when the remote service cannot produce a
// usable result. It is recovered locally and logged, never escalated.
var ErrUnavailable = errors.New("generation service unavailable")

// Grade is the judgment for one submitted answer.
type Grade struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
}

// Generator is the collaborator boundary: produce questions for a topic
// pool, and judge a free-text answer.
type Generator interface {
	GenerateQuestions(ctx context.Context, topics []string, difficulty models.Difficulty, count int) ([]models.Question, error)
	GradeAnswer(ctx context.Context, question models.Question, studentAnswer string) (Grade, error)
}

// Service wraps a Generator with a per-call timeout, a single retry, and
// the deterministic fallback. No other operation in the system retries.
type Service struct {
	remote   Generator
	fallback *Fallback
	timeout  time.Duration
}

func NewService(remote Generator, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Service{
		remote:   remote,
		fallback: NewFallback(),
		timeout:  timeout,
	}
}

// GenerateQuestions asks the remote service for questions, retrying once,
// and falls back to locally templated questions when it stays unavailable.
func (s *Service) GenerateQuestions(ctx context.Context, topics []string, difficulty models.Difficulty, count int) ([]models.Question, error) {
	if s.remote != nil {
		for attempt := 0; attempt < 2; attempt++ {
			callCtx, cancel := context.WithTimeout(ctx, s.timeout)
			questions, err := s.remote.GenerateQuestions(callCtx, topics, difficulty, count)
			cancel()
			if err == nil && len(questions) > 0 {
				return questions, nil
			}
			if err == nil {
				err = ErrUnavailable
			}
			log.Printf("question generation attempt %d failed: %v", attempt+1, err)
		}
	}
	return s.fallback.GenerateQuestions(ctx, topics, difficulty, count)
}

// GradeAnswer asks the remote service to judge an answer and falls back to
// the local string-equality check when it fails.
func (s *Service) GradeAnswer(ctx context.Context, question models.Question, studentAnswer string) (Grade, error) {
	if s.remote != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		grade, err := s.remote.GradeAnswer(callCtx, question, studentAnswer)
		cancel()
		if err == nil {
			return grade, nil
		}
		log.Printf("remote grading failed, using local fallback: %v", err)
	}
	return s.fallback.GradeAnswer(ctx, question, studentAnswer)
}
