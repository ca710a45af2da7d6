package repository

import (
	"context"

	"case_coordination_service/internal/coordination/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository definition notification store access
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	// MarkRead flip read for a notification owned by userID; returns false when
	// nothing matched (already read, not owned, or unknown id)
	MarkRead(ctx context.Context, userID, notificationID string) (bool, error)
	FindUnread(ctx context.Context, recipientID string) ([]domain.Notification, error)
}

type notificationRepository struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepository create a NotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepository{
		coll: db.Collection("notifications"),
	}
}

func (r *notificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	_, err := r.coll.InsertOne(ctx, n)
	return err
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	filter := bson.M{"_id": notificationID, "recipient_id": userID, "read": false}
	update := bson.M{"$set": bson.M{"read": true}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *notificationRepository) FindUnread(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	filter := bson.M{"recipient_id": recipientID, "read": false}
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var notifications []domain.Notification
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}
