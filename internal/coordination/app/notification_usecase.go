package app

import (
	"context"
	"time"

	"case_coordination_service/internal/coordination/domain"
	"case_coordination_service/internal/coordination/repository"
	"case_coordination_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationUseCase persist-then-push notifications. Durability comes from
// the store; delivery to live devices is best-effort.
type NotificationUseCase struct {
	repo  repository.NotificationRepository
	hub   *ConnectionHub
	queue repository.NotificationQueue
}

// NewNotificationUseCase create NotificationUseCase; queue may be nil
func NewNotificationUseCase(repo repository.NotificationRepository, hub *ConnectionHub, queue repository.NotificationQueue) *NotificationUseCase {
	return &NotificationUseCase{
		repo:  repo,
		hub:   hub,
		queue: queue,
	}
}

// Create persist the notification, push it to the recipient's personal room
// and hand it to the external delivery worker
func (uc *NotificationUseCase) Create(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	n.ID = uuid.New().String()
	n.Read = false
	n.CreatedAt = time.Now().Unix()
	if n.Priority == "" {
		n.Priority = domain.PriorityNormal
	}

	if err := uc.repo.Insert(ctx, &n); err != nil {
		return nil, &domain.PersistenceFailure{Op: "notification insert", Err: err}
	}

	uc.Push(n)

	if uc.queue != nil {
		if err := uc.queue.Enqueue(n); err != nil {
			logger.Log.Error("notification enqueue failed",
				zap.String("notificationID", n.ID),
				zap.Error(err),
			)
		}
	}

	return &n, nil
}

// Push deliver an already-persisted notification to the recipient's live
// devices; callable by collaborators outside the socket path
func (uc *NotificationUseCase) Push(n domain.Notification) {
	uc.hub.BroadcastToUser(n.RecipientID, domain.WSResponse{
		Action:  string(domain.NotificationNew),
		Success: true,
		Payload: map[string]interface{}{
			"id":           n.ID,
			"recipient_id": n.RecipientID,
			"type":         n.Type,
			"title":        n.Title,
			"message":      n.Message,
			"sender_id":    n.SenderID,
			"related_id":   n.RelatedID,
			"priority":     string(n.Priority),
			"created_at":   n.CreatedAt,
		},
	})
}

// MarkAsRead idempotent: a repeat, an unknown id or someone else's
// notification all no-op
func (uc *NotificationUseCase) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	_, err := uc.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return &domain.PersistenceFailure{Op: "notification mark read", Err: err}
	}
	return nil
}

// Unread the caller's unread notifications, newest first
func (uc *NotificationUseCase) Unread(ctx context.Context, userID string) ([]domain.Notification, error) {
	notifications, err := uc.repo.FindUnread(ctx, userID)
	if err != nil {
		return nil, &domain.PersistenceFailure{Op: "notification find unread", Err: err}
	}
	return notifications, nil
}
