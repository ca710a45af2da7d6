package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"case_coordination_service/internal/coordination/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type messageFixture struct {
	hub      *ConnectionHub
	msgRepo  *MockMessageRepository
	notaRepo *MockNotificationRepository
	uc       *MessageUseCase

	senderW    *recordingWriter
	recipientW *recordingWriter
}

func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	hub := NewConnectionHub()

	sender, senderW := newTestConn("sender-1", "Ann", domain.RoleParent, "tenant-1")
	recipient, recipientW := newTestConn("recipient-1", "Bob", domain.RoleLAStaff, "tenant-1")
	hub.Register(sender)
	hub.Register(recipient)
	hub.JoinRoom(sender, domain.UserRoom("sender-1"))
	hub.JoinRoom(recipient, domain.UserRoom("recipient-1"))

	msgRepo := new(MockMessageRepository)
	notaRepo := new(MockNotificationRepository)
	notificationUC := NewNotificationUseCase(notaRepo, hub, nil)

	return &messageFixture{
		hub:        hub,
		msgRepo:    msgRepo,
		notaRepo:   notaRepo,
		uc:         NewMessageUseCase(msgRepo, hub, notificationUC),
		senderW:    senderW,
		recipientW: recipientW,
	}
}

func TestMessageUseCase_SendMessage(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)
	sender := domain.Identity{UserID: "sender-1", Name: "Ann", TenantID: "tenant-1"}

	f.msgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	f.notaRepo.On("Insert", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.RecipientID == "recipient-1" && n.Type == "message" && n.Title == "Ann"
	})).Return(nil)

	msg, err := f.uc.SendMessage(ctx, sender, "conv-1", "hello", "", "", []string{"sender-1", "recipient-1"})
	assert.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, domain.MessageTypeText, msg.Type)

	// sender's own devices get the message back, keeping them in sync
	senderResponses := f.senderW.responses(t)
	assert.Len(t, senderResponses, 1)
	assert.Equal(t, string(domain.MessageNew), senderResponses[0].Action)

	// the recipient gets the message plus a notification
	recipientResponses := f.recipientW.responses(t)
	assert.Len(t, recipientResponses, 2)
	assert.Equal(t, string(domain.MessageNew), recipientResponses[0].Action)
	assert.Equal(t, string(domain.NotificationNew), recipientResponses[1].Action)
	assert.Equal(t, "hello", recipientResponses[1].Payload["message"])

	f.msgRepo.AssertExpectations(t)
	f.notaRepo.AssertExpectations(t)
}

func TestMessageUseCase_SendMessage_DuplicateParticipants(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)
	sender := domain.Identity{UserID: "sender-1", Name: "Ann", TenantID: "tenant-1"}

	f.msgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	f.notaRepo.On("Insert", ctx, mock.Anything).Return(nil)

	// a sloppy caller repeating ids must not double-deliver
	msg, err := f.uc.SendMessage(ctx, sender, "conv-1", "hello", "", "",
		[]string{"sender-1", "recipient-1", "recipient-1", "sender-1"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"sender-1", "recipient-1"}, msg.Participants)

	assert.Len(t, f.senderW.responses(t), 1)

	// one message frame plus one notification, not two of each
	recipientResponses := f.recipientW.responses(t)
	assert.Len(t, recipientResponses, 2)
	assert.Equal(t, string(domain.MessageNew), recipientResponses[0].Action)
	assert.Equal(t, string(domain.NotificationNew), recipientResponses[1].Action)
	f.notaRepo.AssertNumberOfCalls(t, "Insert", 1)
}

func TestMessageUseCase_SendMessage_SenderNotParticipant(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)
	sender := domain.Identity{UserID: "sender-1", Name: "Ann", TenantID: "tenant-1"}

	msg, err := f.uc.SendMessage(ctx, sender, "conv-1", "hello", "", "", []string{"recipient-1"})
	assert.Nil(t, msg)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	f.msgRepo.AssertNotCalled(t, "Insert")
	assert.Empty(t, f.recipientW.responses(t))
}

func TestMessageUseCase_SendMessage_InsertFailure(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)
	sender := domain.Identity{UserID: "sender-1", Name: "Ann", TenantID: "tenant-1"}

	f.msgRepo.On("Insert", ctx, mock.Anything).Return(errors.New("mongo down"))

	msg, err := f.uc.SendMessage(ctx, sender, "conv-1", "hello", "", "", []string{"sender-1", "recipient-1"})
	assert.Nil(t, msg)

	var pf *domain.PersistenceFailure
	assert.ErrorAs(t, err, &pf)

	// nothing is fanned out for a message that was never persisted
	assert.Empty(t, f.senderW.responses(t))
	assert.Empty(t, f.recipientW.responses(t))
}

func TestMessageUseCase_SendMessage_NotificationFailureTolerated(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)
	sender := domain.Identity{UserID: "sender-1", Name: "Ann", TenantID: "tenant-1"}

	f.msgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	f.notaRepo.On("Insert", ctx, mock.Anything).Return(errors.New("mongo down"))

	msg, err := f.uc.SendMessage(ctx, sender, "conv-1", "hello", "", "", []string{"sender-1", "recipient-1"})
	assert.NoError(t, err)
	assert.NotNil(t, msg)

	// the message still reached everyone, only the notification is missing
	recipientResponses := f.recipientW.responses(t)
	assert.Len(t, recipientResponses, 1)
	assert.Equal(t, string(domain.MessageNew), recipientResponses[0].Action)
}

func TestMessageUseCase_EditMessage(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)
	editor := domain.Identity{UserID: "sender-1", Name: "Ann", TenantID: "tenant-1"}

	viewer, viewerW := newTestConn("recipient-1", "Bob", domain.RoleLAStaff, "tenant-1")
	f.hub.Register(viewer)
	f.hub.JoinRoom(viewer, domain.ConversationRoom("conv-1"))

	stored := &domain.ChatMessage{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "sender-1",
		Content:        "helo",
		Type:           domain.MessageTypeText,
		CreatedAt:      time.Now().Unix(),
	}
	f.msgRepo.On("FindByID", ctx, "msg-1").Return(stored, nil)
	f.msgRepo.On("Update", ctx, mock.Anything).Return(nil)

	msg, err := f.uc.EditMessage(ctx, editor, "msg-1", "hello")
	assert.NoError(t, err)
	assert.True(t, msg.Edited)
	assert.Equal(t, "hello", msg.Content)

	// the edit reaches open conversation views, not personal rooms
	viewerResponses := viewerW.responses(t)
	assert.Len(t, viewerResponses, 1)
	assert.Equal(t, string(domain.MessageEdited), viewerResponses[0].Action)
	assert.Equal(t, "hello", viewerResponses[0].Payload["content"])
	assert.Empty(t, f.recipientW.responses(t))
}

func TestMessageUseCase_EditMessage_NotSender(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)
	editor := domain.Identity{UserID: "someone-else", TenantID: "tenant-1"}

	stored := &domain.ChatMessage{ID: "msg-1", ConversationID: "conv-1", SenderID: "sender-1"}
	f.msgRepo.On("FindByID", ctx, "msg-1").Return(stored, nil)

	msg, err := f.uc.EditMessage(ctx, editor, "msg-1", "hijacked")
	assert.Nil(t, msg)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	f.msgRepo.AssertNotCalled(t, "Update")
}

func TestMessageUseCase_EditMessage_DeletedOrMissing(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)
	editor := domain.Identity{UserID: "sender-1", TenantID: "tenant-1"}

	f.msgRepo.On("FindByID", ctx, "gone").Return(nil, nil)
	_, err := f.uc.EditMessage(ctx, editor, "gone", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// a tombstone cannot be edited back to life
	deleted := &domain.ChatMessage{ID: "msg-1", SenderID: "sender-1", Deleted: true}
	f.msgRepo.On("FindByID", ctx, "msg-1").Return(deleted, nil)
	_, err = f.uc.EditMessage(ctx, editor, "msg-1", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMessageUseCase_DeleteMessage(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)
	requester := domain.Identity{UserID: "sender-1", TenantID: "tenant-1"}

	viewer, viewerW := newTestConn("recipient-1", "Bob", domain.RoleLAStaff, "tenant-1")
	f.hub.Register(viewer)
	f.hub.JoinRoom(viewer, domain.ConversationRoom("conv-1"))

	stored := &domain.ChatMessage{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "sender-1",
		Content:        "secret",
		Type:           domain.MessageTypeText,
	}
	f.msgRepo.On("FindByID", ctx, "msg-1").Return(stored, nil)
	f.msgRepo.On("Update", ctx, mock.MatchedBy(func(m *domain.ChatMessage) bool {
		return m.Deleted && m.Content == domain.TombstoneContent && m.Type == domain.MessageTypeSystem
	})).Return(nil)

	assert.NoError(t, f.uc.DeleteMessage(ctx, requester, "msg-1"))

	viewerResponses := viewerW.responses(t)
	assert.Len(t, viewerResponses, 1)
	assert.Equal(t, string(domain.MessageDeleted), viewerResponses[0].Action)

	// a repeat delete changes nothing and rebroadcasts nothing
	assert.NoError(t, f.uc.DeleteMessage(ctx, requester, "msg-1"))
	assert.Len(t, viewerW.responses(t), 1)
	f.msgRepo.AssertNumberOfCalls(t, "Update", 1)
}

func TestMessageUseCase_DeleteMessage_NotSender(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	stored := &domain.ChatMessage{ID: "msg-1", ConversationID: "conv-1", SenderID: "sender-1"}
	f.msgRepo.On("FindByID", ctx, "msg-1").Return(stored, nil)

	err := f.uc.DeleteMessage(ctx, domain.Identity{UserID: "recipient-1"}, "msg-1")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	f.msgRepo.AssertNotCalled(t, "Update")
}

func TestMessageUseCase_History(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	stored := []domain.ChatMessage{
		{ID: "msg-1", Content: "first"},
		{ID: "msg-2", Content: domain.TombstoneContent, Deleted: true},
		{ID: "msg-3", Content: "third"},
	}
	f.msgRepo.On("FindByConversation", ctx, "conv-1", int64(0), int64(50)).Return(stored, nil)

	messages, err := f.uc.History(ctx, "conv-1", 0, 50)
	assert.NoError(t, err)
	assert.Equal(t, stored, messages)
}

func TestMessageUseCase_History_LimitClamped(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	// zero limit never turns into an unbounded fetch
	f.msgRepo.On("FindByConversation", ctx, "conv-1", int64(0), historyDefaultLimit).Return([]domain.ChatMessage{}, nil).Once()
	_, err := f.uc.History(ctx, "conv-1", 0, 0)
	assert.NoError(t, err)

	// oversized requests are capped
	f.msgRepo.On("FindByConversation", ctx, "conv-1", int64(0), historyMaxLimit).Return([]domain.ChatMessage{}, nil).Once()
	_, err = f.uc.History(ctx, "conv-1", 0, 100000)
	assert.NoError(t, err)

	f.msgRepo.AssertExpectations(t)
}
