package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"learning-path-service/internal/models"
)

// ErrConflict is returned when a guarded update matched no document, e.g.
// appending to a batch that is no longer pending.
var ErrConflict = fmt.Errorf("document state changed underneath the update")

type BatchRepository struct {
	Col *mongo.Collection
}

func NewBatchRepository(db *mongo.Database) *BatchRepository {
	return &BatchRepository{Col: db.Collection("batches")}
}

func (r *BatchRepository) Create(ctx context.Context, batch *models.QuestionBatch) error {
	res, err := r.Col.InsertOne(ctx, batch)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		batch.ID = oid.Hex()
	}
	return nil
}

func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.QuestionBatch, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var batch models.QuestionBatch
	if err := r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindByStudentSubject returns every batch for one (student, subject) pair.
// The progression engine folds over the full set, so no status filter here.
func (r *BatchRepository) FindByStudentSubject(ctx context.Context, studentID, subject string) ([]models.QuestionBatch, error) {
	cur, err := r.Col.Find(ctx, bson.M{"student_id": studentID, "subject": subject})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var batches []models.QuestionBatch
	for cur.Next(ctx) {
		var b models.QuestionBatch
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, cur.Err()
}

// AppendResponse pushes one ledger entry into the batch document and
// reports whether the batch is now fully answered. Completion is decided on
// the post-append stored document, not the caller's copy, so two concurrent
// appends cannot leave a fully answered batch stuck pending. The pending
// guard makes the append fail with ErrConflict instead of writing into a
// terminal batch.
func (r *BatchRepository) AppendResponse(ctx context.Context, id string, response models.Response) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, mongo.ErrNoDocuments
	}

	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": models.BatchPending},
		bson.M{
			"$push": bson.M{"responses": response},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrConflict
	}

	var stored models.QuestionBatch
	if err := r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&stored); err != nil {
		return false, err
	}
	if !stored.AllAnswered() {
		return false, nil
	}

	// A racing append may have flipped the status already, so no
	// matched-count check on the flip.
	_, err = r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": models.BatchPending},
		bson.M{"$set": bson.M{"status": models.BatchCompleted, "updated_at": time.Now().UTC()}},
	)
	return true, err
}

// MarkRewardApplied records that the reward for one ledger entry has
// committed, so a retried submission does not award it twice. No pending
// guard: the marker must land on completed batches too.
func (r *BatchRepository) MarkRewardApplied(ctx context.Context, id, questionID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	_, err = r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "responses.question_id": questionID},
		bson.M{"$set": bson.M{"responses.$.reward_applied": true}},
	)
	return err
}

// ReplaceQuestion swaps the failed question for its replacement in place
// and retires the old id, in one atomic update on the batch document.
func (r *BatchRepository) ReplaceQuestion(ctx context.Context, id, retiredQuestionID string, replacement models.Question) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": models.BatchPending, "questions.id": retiredQuestionID},
		bson.M{
			"$set": bson.M{
				"questions.$": replacement,
				"updated_at":  time.Now().UTC(),
			},
			"$push": bson.M{"retired_question_ids": retiredQuestionID},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

// UpdateStatus moves a pending batch into a terminal state. Terminal states
// are never re-entered.
func (r *BatchRepository) UpdateStatus(ctx context.Context, id string, status models.BatchStatus) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": models.BatchPending},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}
