package repository

import (
	"context"
	"fmt"
	"time"

	"codecamp/internal/common"
	"codecamp/internal/domain/model"
	"codecamp/internal/platform/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository interface {
	// Create returns a wrapped common.ErrConflict when the id already exists.
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

// FailureLog records notification tasks that could not be enqueued or delivered.
type FailureLog interface {
	Record(ctx context.Context, f *model.TaskFailure) error
	Recent(ctx context.Context, limit int) ([]model.TaskFailure, error)
}

type mongoNotificationRepository struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{coll: db.Collection(database.NotificationsCollection)}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, n)
	return mapMongoError("mongoNotificationRepository.Create", err)
}

func (r *mongoNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoNotificationRepository.ListByUser: %w", err)
	}
	defer cur.Close(ctx)

	out := []model.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongoNotificationRepository.ListByUser decode: %w", err)
	}
	return out, nil
}

func (r *mongoNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("mongoNotificationRepository.MarkRead: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

type mongoFailureLog struct {
	coll *mongo.Collection
}

func NewMongoFailureLog(db *mongo.Database) FailureLog {
	return &mongoFailureLog{coll: db.Collection(database.NotificationFailuresCollection)}
}

func (r *mongoFailureLog) Record(ctx context.Context, f *model.TaskFailure) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, f)
	return mapMongoError("mongoFailureLog.Record", err)
}

func (r *mongoFailureLog) Recent(ctx context.Context, limit int) ([]model.TaskFailure, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "failedAt", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("mongoFailureLog.Recent: %w", err)
	}
	defer cur.Close(ctx)

	out := []model.TaskFailure{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongoFailureLog.Recent decode: %w", err)
	}
	return out, nil
}
