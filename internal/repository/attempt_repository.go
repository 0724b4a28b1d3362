package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"learning-path-service/internal/models"
)

// AttemptRepository stores the analytics-only log of incorrect submissions.
// Rows are appended and never updated; nothing here feeds mastery counts.
type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("attempts")}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	_, err := r.Col.InsertOne(ctx, attempt)
	return err
}

// FindByBatch returns a batch's incorrect attempts, newest first, for review
// surfaces.
func (r *AttemptRepository) FindByBatch(ctx context.Context, batchID string) ([]models.Attempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{"batch_id": batchID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var attempts []models.Attempt
	for cur.Next(ctx) {
		var a models.Attempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, cur.Err()
}
