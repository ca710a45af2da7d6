package repository

import (
	"context"

	"case_coordination_service/internal/coordination/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition message store access
type MessageRepository interface {
	// Insert persist a new message, assigning nothing; id and timestamps come from the caller
	Insert(ctx context.Context, msg *domain.ChatMessage) error
	// FindByID fetch one message
	FindByID(ctx context.Context, messageID string) (*domain.ChatMessage, error)
	// Update overwrite a message document, keeping its id and position
	Update(ctx context.Context, msg *domain.ChatMessage) error
	// FindByConversation fetch conversation history in insertion order, tombstones included
	FindByConversation(ctx context.Context, conversationID string, before int64, limit int64) ([]domain.ChatMessage, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("messages"),
	}
}

func (r *messageRepository) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *messageRepository) FindByID(ctx context.Context, messageID string) (*domain.ChatMessage, error) {
	filter := bson.M{"_id": messageID}
	var msg domain.ChatMessage
	err := r.coll.FindOne(ctx, filter).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Update(ctx context.Context, msg *domain.ChatMessage) error {
	filter := bson.M{"_id": msg.ID}
	update := bson.M{"$set": msg}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *messageRepository) FindByConversation(ctx context.Context, conversationID string, before int64, limit int64) ([]domain.ChatMessage, error) {
	filter := bson.M{"conversation_id": conversationID}
	if before > 0 {
		filter["created_at"] = bson.M{"$lt": before}
	}

	opts := options.Find().SetSort(bson.M{"created_at": 1})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var messages []domain.ChatMessage
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
