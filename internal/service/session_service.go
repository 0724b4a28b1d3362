package service

import (
	"context"
	"fmt"
	"time"

	"learning-path-service/internal/models"
	"learning-path-service/internal/repository"
)

// SessionService ingests analyzed study sessions from the transcript
// analysis collaborator and triggers the path rebuild they imply.
type SessionService struct {
	SessionRepo *repository.SessionRepository
	Paths       *PathService
}

func NewSessionService(sessionRepo *repository.SessionRepository, paths *PathService) *SessionService {
	return &SessionService{SessionRepo: sessionRepo, Paths: paths}
}

// RecordSession stores one analyzed session and rebuilds the subject path.
// Sessions must arrive with non-empty topics; unanalyzed transcripts stay
// with the analysis collaborator.
func (s *SessionService) RecordSession(ctx context.Context, session *models.StudySession) (*models.LearningPath, error) {
	if !session.Analyzed() {
		return nil, fmt.Errorf("session has no analyzed topics: %w", ErrNotFound)
	}
	now := time.Now().UTC()
	if session.AnalyzedAt.IsZero() {
		session.AnalyzedAt = now
	}
	session.CreatedAt = now

	if err := s.SessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.Paths.InvalidateCache(ctx, session.StudentID, session.Subject)
	return s.Paths.RebuildPath(ctx, session.StudentID, session.Subject)
}
