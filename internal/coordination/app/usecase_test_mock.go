package app

import (
	"context"

	"case_coordination_service/internal/coordination/domain"

	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert moke insert msg
func (m *MockMessageRepository) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByID moke find msg by id
func (m *MockMessageRepository) FindByID(ctx context.Context, messageID string) (*domain.ChatMessage, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// Update moke update msg
func (m *MockMessageRepository) Update(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByConversation moke find conversation history
func (m *MockMessageRepository) FindByConversation(ctx context.Context, conversationID string, before int64, limit int64) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, conversationID, before, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotificationRepository Mock NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

// Insert moke insert notification
func (m *MockNotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MarkRead moke mark read
func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	args := m.Called(ctx, userID, notificationID)
	return args.Bool(0), args.Error(1)
}

// FindUnread moke find unread by recipient
func (m *MockNotificationRepository) FindUnread(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPresenceRepository Mock PresenceRepository
type MockPresenceRepository struct {
	mock.Mock
}

// Upsert moke upsert presence record
func (m *MockPresenceRepository) Upsert(ctx context.Context, record domain.PresenceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// Get moke get presence record
func (m *MockPresenceRepository) Get(ctx context.Context, userID string) (domain.PresenceRecord, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.PresenceRecord), args.Error(1)
}

// MockCaseAccessResolver Mock CaseAccessResolver
type MockCaseAccessResolver struct {
	mock.Mock
}

// ListCaseIDsForParent moke case ids of a parent
func (m *MockCaseAccessResolver) ListCaseIDsForParent(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListClientIDsForProfessional moke client ids of a professional
func (m *MockCaseAccessResolver) ListClientIDsForProfessional(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListCaseIDsForTenant moke case ids of a tenant
func (m *MockCaseAccessResolver) ListCaseIDsForTenant(ctx context.Context, tenantID string) ([]string, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserDirectory Mock UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

// GetByID moke resolve identity
func (m *MockUserDirectory) GetByID(ctx context.Context, userID string) (*domain.Identity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockActivityPublisher Mock ActivityPublisher
type MockActivityPublisher struct {
	mock.Mock
}

// Publish moke activity egress
func (m *MockActivityPublisher) Publish(ctx context.Context, event domain.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockNotificationQueue Mock NotificationQueue
type MockNotificationQueue struct {
	mock.Mock
}

// Enqueue moke hand off to the delivery worker
func (m *MockNotificationQueue) Enqueue(n domain.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}
