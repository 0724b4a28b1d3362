package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"learning-path-service/internal/models"
)

type PathRepository struct {
	Col *mongo.Collection
}

func NewPathRepository(db *mongo.Database) *PathRepository {
	return &PathRepository{Col: db.Collection("paths")}
}

// FindByStudentSubject returns the stored path, or mongo.ErrNoDocuments.
func (r *PathRepository) FindByStudentSubject(ctx context.Context, studentID, subject string) (*models.LearningPath, error) {
	var path models.LearningPath
	err := r.Col.FindOne(ctx, bson.M{"student_id": studentID, "subject": subject}).Decode(&path)
	if err != nil {
		return nil, err
	}
	return &path, nil
}

// Upsert replaces the whole checkpoint list for the (student, subject) pair.
// Replacing wholesale is safe because checkpoint state is re-derived from
// the response ledger before every save.
func (r *PathRepository) Upsert(ctx context.Context, path *models.LearningPath) error {
	path.UpdatedAt = time.Now().UTC()
	filter := bson.M{"student_id": path.StudentID, "subject": path.Subject}
	update := bson.M{"$set": bson.M{
		"student_id":  path.StudentID,
		"subject":     path.Subject,
		"checkpoints": path.Checkpoints,
		"updated_at":  path.UpdatedAt,
	}}
	_, err := r.Col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
