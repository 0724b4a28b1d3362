package service

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/mongo"

	"learning-path-service/internal/cache"
	"learning-path-service/internal/models"
	"learning-path-service/internal/pathbuilder"
	"learning-path-service/internal/progression"
	"learning-path-service/internal/repository"
)

// PathService builds and serves learning paths. Checkpoint state is always
// re-derived from the batch ledger before a path leaves this service, so a
// stored path is only a cache of the fold, never the source of truth.
type PathService struct {
	PathRepo    *repository.PathRepository
	SessionRepo *repository.SessionRepository
	BatchRepo   *repository.BatchRepository
	builder     *pathbuilder.Builder
	engine      *progression.Engine
	pathCache   *cache.PathCache
}

func NewPathService(
	pathRepo *repository.PathRepository,
	sessionRepo *repository.SessionRepository,
	batchRepo *repository.BatchRepository,
	pathCache *cache.PathCache,
) *PathService {
	cfg := progression.DefaultConfig()
	return &PathService{
		PathRepo:    pathRepo,
		SessionRepo: sessionRepo,
		BatchRepo:   batchRepo,
		builder:     pathbuilder.NewBuilder(cfg),
		engine:      progression.NewEngine(cfg),
		pathCache:   pathCache,
	}
}

// GetOrBuildPath returns the current path for the student and subject,
// rebuilding it from accumulated sessions and recomputing every checkpoint
// from the response ledger. A student with no analyzed sessions gets an
// empty path, not an error.
func (s *PathService) GetOrBuildPath(ctx context.Context, studentID, subject string) (*models.LearningPath, error) {
	if s.pathCache != nil {
		if cached, ok, err := s.pathCache.GetPath(ctx, studentID, subject); err != nil {
			log.Printf("path cache read failed: %v", err)
		} else if ok {
			return &cached, nil
		}
	}

	path, err := s.RebuildPath(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}

	if s.pathCache != nil && !path.Empty() {
		if err := s.pathCache.SetPath(ctx, *path); err != nil {
			log.Printf("path cache write failed: %v", err)
		}
	}
	return path, nil
}

// StoredPath returns the last persisted path without recomputing it, or
// nil when none has been saved yet.
func (s *PathService) StoredPath(ctx context.Context, studentID, subject string) (*models.LearningPath, error) {
	path, err := s.PathRepo.FindByStudentSubject(ctx, studentID, subject)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return path, nil
}

// RebuildPath reconstructs the checkpoint list from sessions, folds the
// batch ledger through the progression engine, derives the unlock chain and
// persists the result. It is additive and idempotent: rebuilding never
// destroys progress recorded in the ledger.
func (s *PathService) RebuildPath(ctx context.Context, studentID, subject string) (*models.LearningPath, error) {
	sessions, err := s.SessionRepo.FindByStudentSubject(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}

	path := s.builder.Build(studentID, subject, sessions)
	if path.Empty() {
		return &path, nil
	}

	// Keep the stored document id when one exists so the upsert stays on
	// the same document.
	if existing, err := s.PathRepo.FindByStudentSubject(ctx, studentID, subject); err == nil {
		path.ID = existing.ID
	} else if err != mongo.ErrNoDocuments {
		return nil, err
	}

	batches, err := s.BatchRepo.FindByStudentSubject(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}
	path, err = s.engine.RecomputePath(path, batches)
	if err != nil {
		return nil, err
	}

	if err := s.PathRepo.Upsert(ctx, &path); err != nil {
		return nil, err
	}
	return &path, nil
}

// InvalidateCache drops the cached path after any write that can move
// checkpoint state. Best-effort only.
func (s *PathService) InvalidateCache(ctx context.Context, studentID, subject string) {
	if s.pathCache == nil {
		return
	}
	if err := s.pathCache.InvalidatePath(ctx, studentID, subject); err != nil {
		log.Printf("path cache invalidation failed: %v", err)
	}
}
