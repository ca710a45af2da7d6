package app

import (
	"context"
	"time"

	"case_coordination_service/internal/coordination/domain"
	"case_coordination_service/internal/coordination/repository"
	"case_coordination_service/pkg"
	"case_coordination_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// notificationPreviewLimit runes of message content carried into the notification body
const notificationPreviewLimit = 80

// history page bounds; an absent limit gets the default, a large one is capped
const (
	historyDefaultLimit int64 = 50
	historyMaxLimit     int64 = 200
)

// MessageUseCase persist and fan out conversation messages
type MessageUseCase struct {
	msgRepo        repository.MessageRepository
	hub            *ConnectionHub
	notificationUC *NotificationUseCase
}

// NewMessageUseCase create MessageUseCase
func NewMessageUseCase(msgRepo repository.MessageRepository, hub *ConnectionHub, notificationUC *NotificationUseCase) *MessageUseCase {
	return &MessageUseCase{
		msgRepo:        msgRepo,
		hub:            hub,
		notificationUC: notificationUC,
	}
}

// SendMessage persist the message, fan it out to every participant's personal
// room (the sender's other devices included, so offline devices catch up on
// reconnect), then create one notification per other participant. Notification
// failures are logged and never roll back the message.
func (uc *MessageUseCase) SendMessage(
	ctx context.Context,
	sender domain.Identity,
	conversationID string,
	content string,
	msgType domain.MessageType,
	replyTo string,
	participants []string,
) (*domain.ChatMessage, error) {

	if !pkg.Contains(participants, sender.UserID) {
		return nil, domain.ErrAccessDenied
	}
	participants = dedupe(participants)

	if msgType == "" {
		msgType = domain.MessageTypeText
	}

	msg := &domain.ChatMessage{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       sender.UserID,
		SenderName:     sender.Name,
		Content:        content,
		Type:           msgType,
		ReplyTo:        replyTo,
		Participants:   participants,
		CreatedAt:      time.Now().Unix(),
	}

	if err := uc.msgRepo.Insert(ctx, msg); err != nil {
		return nil, &domain.PersistenceFailure{Op: "message insert", Err: err}
	}

	resp := messageResponse(domain.MessageNew, msg)
	for _, participantID := range participants {
		uc.hub.BroadcastToUser(participantID, resp)
	}

	for _, participantID := range participants {
		if participantID == sender.UserID {
			continue
		}
		_, err := uc.notificationUC.Create(ctx, domain.Notification{
			RecipientID: participantID,
			Type:        "message",
			Title:       sender.Name,
			Message:     preview(content),
			SenderID:    sender.UserID,
			RelatedID:   conversationID,
		})
		if err != nil {
			logger.Log.Error("message notification failed",
				zap.String("messageID", msg.ID),
				zap.String("recipientID", participantID),
				zap.Error(err),
			)
		}
	}

	return msg, nil
}

// EditMessage sender-only; last write wins, no conflict detection. The edit is
// broadcast to the conversation room only, not to personal rooms.
func (uc *MessageUseCase) EditMessage(ctx context.Context, editor domain.Identity, messageID, content string) (*domain.ChatMessage, error) {
	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, &domain.PersistenceFailure{Op: "message find", Err: err}
	}
	if msg == nil || msg.Deleted {
		return nil, domain.ErrNotFound
	}
	if msg.SenderID != editor.UserID {
		return nil, domain.ErrAccessDenied
	}

	msg.Content = content
	msg.Edited = true
	msg.EditedAt = time.Now().Unix()

	if err := uc.msgRepo.Update(ctx, msg); err != nil {
		return nil, &domain.PersistenceFailure{Op: "message update", Err: err}
	}

	uc.hub.BroadcastToRoom(domain.ConversationRoom(msg.ConversationID), domain.WSResponse{
		Action:  string(domain.MessageEdited),
		Success: true,
		Payload: map[string]interface{}{
			"message_id":      msg.ID,
			"conversation_id": msg.ConversationID,
			"content":         msg.Content,
			"edited_at":       msg.EditedAt,
		},
	})

	return msg, nil
}

// DeleteMessage sender-only soft delete: the row keeps its id and position,
// the content becomes a tombstone and the type is forced to system
func (uc *MessageUseCase) DeleteMessage(ctx context.Context, requester domain.Identity, messageID string) error {
	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return &domain.PersistenceFailure{Op: "message find", Err: err}
	}
	if msg == nil {
		return domain.ErrNotFound
	}
	if msg.SenderID != requester.UserID {
		return domain.ErrAccessDenied
	}
	if msg.Deleted {
		// repeat delete no-ops, nothing changed to rebroadcast
		return nil
	}

	msg.Content = domain.TombstoneContent
	msg.Type = domain.MessageTypeSystem
	msg.Deleted = true
	msg.DeletedAt = time.Now().Unix()

	if err := uc.msgRepo.Update(ctx, msg); err != nil {
		return &domain.PersistenceFailure{Op: "message update", Err: err}
	}

	uc.hub.BroadcastToRoom(domain.ConversationRoom(msg.ConversationID), domain.WSResponse{
		Action:  string(domain.MessageDeleted),
		Success: true,
		Payload: map[string]interface{}{
			"message_id":      msg.ID,
			"conversation_id": msg.ConversationID,
			"deleted_at":      msg.DeletedAt,
		},
	})

	return nil
}

// History conversation messages in insertion order, tombstones kept in place
func (uc *MessageUseCase) History(ctx context.Context, conversationID string, before, limit int64) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = historyDefaultLimit
	}
	if limit > historyMaxLimit {
		limit = historyMaxLimit
	}
	messages, err := uc.msgRepo.FindByConversation(ctx, conversationID, before, limit)
	if err != nil {
		return nil, &domain.PersistenceFailure{Op: "message history", Err: err}
	}
	return messages, nil
}

func messageResponse(action domain.Action, msg *domain.ChatMessage) domain.WSResponse {
	return domain.WSResponse{
		Action:  string(action),
		Success: true,
		Payload: map[string]interface{}{
			"id":              msg.ID,
			"conversation_id": msg.ConversationID,
			"sender_id":       msg.SenderID,
			"sender_name":     msg.SenderName,
			"content":         msg.Content,
			"type":            string(msg.Type),
			"reply_to":        msg.ReplyTo,
			"created_at":      msg.CreatedAt,
		},
	}
}

// dedupe drop repeated participant ids, keeping first-seen order
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= notificationPreviewLimit {
		return content
	}
	return string(runes[:notificationPreviewLimit]) + "…"
}
