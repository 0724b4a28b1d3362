package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"learning-path-service/internal/models"
)

type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("study_sessions")}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	res, err := r.Col.InsertOne(ctx, session)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

// FindByStudentSubject returns all sessions for one (student, subject) pair,
// oldest first.
func (r *SessionRepository) FindByStudentSubject(ctx context.Context, studentID, subject string) ([]models.StudySession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.Col.Find(ctx, bson.M{"student_id": studentID, "subject": subject}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sessions []models.StudySession
	for cur.Next(ctx) {
		var s models.StudySession
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, cur.Err()
}
