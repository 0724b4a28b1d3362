package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"learning-path-service/internal/models"
)

// RewardRepository guards the one mutable record in the system with a
// versioned compare-and-set: two near-simultaneous submissions cannot both
// commit against the same snapshot, so point totals never lose updates.
type RewardRepository struct {
	Col *mongo.Collection
}

func NewRewardRepository(db *mongo.Database) *RewardRepository {
	return &RewardRepository{Col: db.Collection("rewards")}
}

// GetOrCreate returns the student's reward record, inserting an empty one
// on first touch.
func (r *RewardRepository) GetOrCreate(ctx context.Context, studentID string, fresh models.RewardState) (*models.RewardState, error) {
	var state models.RewardState
	err := r.Col.FindOne(ctx, bson.M{"_id": studentID}).Decode(&state)
	if err == nil {
		return &state, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	fresh.StudentID = studentID
	fresh.UpdatedAt = time.Now().UTC()
	if _, err := r.Col.InsertOne(ctx, fresh); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost the insert race; read the winner.
			if err := r.Col.FindOne(ctx, bson.M{"_id": studentID}).Decode(&state); err != nil {
				return nil, err
			}
			return &state, nil
		}
		return nil, err
	}
	return &fresh, nil
}

// CompareAndSet writes the updated state only if the stored version still
// matches the snapshot the update was computed from. Returns ErrConflict
// when someone else committed first; the caller re-reads and re-applies.
func (r *RewardRepository) CompareAndSet(ctx context.Context, snapshotVersion int64, state models.RewardState) error {
	state.Version = snapshotVersion + 1
	state.UpdatedAt = time.Now().UTC()

	res, err := r.Col.ReplaceOne(ctx,
		bson.M{"_id": state.StudentID, "version": snapshotVersion},
		state,
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}
