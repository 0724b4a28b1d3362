package service

import (
	"context"

	"learning-path-service/internal/models"
	"learning-path-service/internal/repository"
	"learning-path-service/internal/reward"
)

type RewardService struct {
	Repo *repository.RewardRepository
}

func NewRewardService(repo *repository.RewardRepository) *RewardService {
	return &RewardService{Repo: repo}
}

// GetState returns the student's reward record, creating the empty one on
// first read so new students see zeros instead of a 404.
func (s *RewardService) GetState(ctx context.Context, studentID string) (*models.RewardState, error) {
	return s.Repo.GetOrCreate(ctx, studentID, reward.NewState(studentID))
}
