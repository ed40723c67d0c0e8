package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/waxhands/workshop-backend/internal/core/domain"
	"github.com/waxhands/workshop-backend/internal/core/ports"
)

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
// that also records every event for order-sensitive assertions.
type MockEventBroadcaster struct {
	mock.Mock

	Events []domain.Event
}

var _ ports.EventBroadcaster = (*MockEventBroadcaster)(nil)

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) error {
	m.Events = append(m.Events, event)
	args := m.Called(event)
	return args.Error(0)
}

// LastEvent returns the most recently broadcast event.
func (m *MockEventBroadcaster) LastEvent() domain.Event {
	if len(m.Events) == 0 {
		return domain.Event{}
	}
	return m.Events[len(m.Events)-1]
}

// MockStatsProvider is a mock implementation of ports.StatsProvider
type MockStatsProvider struct {
	mock.Mock
}

var _ ports.StatsProvider = (*MockStatsProvider)(nil)

func NewMockStatsProvider() *MockStatsProvider {
	return &MockStatsProvider{}
}

func (m *MockStatsProvider) Stats() domain.BroadcastStats {
	args := m.Called()
	return args.Get(0).(domain.BroadcastStats)
}

// MockNotificationService is a mock implementation of ports.NotificationService
type MockNotificationService struct {
	mock.Mock
}

var _ ports.NotificationService = (*MockNotificationService)(nil)

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) NotifyChatMessage(chatID, userID, senderID, text string) error {
	return m.Called(chatID, userID, senderID, text).Error(0)
}

func (m *MockNotificationService) NotifyNewChat(chatID, userID string) error {
	return m.Called(chatID, userID).Error(0)
}

func (m *MockNotificationService) NotifyUnreadCountUpdate(chatID, userID string, count int) error {
	return m.Called(chatID, userID, count).Error(0)
}

func (m *MockNotificationService) NotifyChatStatusChange(chatID, status string) error {
	return m.Called(chatID, status).Error(0)
}

func (m *MockNotificationService) NotifyChatListUpdate(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockNotificationService) NotifyInvoiceUpdate(invoiceID, userID, status string) error {
	return m.Called(invoiceID, userID, status).Error(0)
}

func (m *MockNotificationService) NotifyMasterClassUpdate(masterClassID, action string) error {
	return m.Called(masterClassID, action).Error(0)
}

func (m *MockNotificationService) NotifyWorkshopRequestCreated(requestID, userID, schoolID string) error {
	return m.Called(requestID, userID, schoolID).Error(0)
}

func (m *MockNotificationService) NotifyWorkshopRequestUpdate(requestID, userID string) error {
	return m.Called(requestID, userID).Error(0)
}

func (m *MockNotificationService) NotifyWorkshopRequestStatusChange(requestID, userID, status string) error {
	return m.Called(requestID, userID, status).Error(0)
}

func (m *MockNotificationService) NotifyAboutContentUpdate(section string) error {
	return m.Called(section).Error(0)
}

func (m *MockNotificationService) NotifyAboutMediaUpdate(mediaID string) error {
	return m.Called(mediaID).Error(0)
}

func (m *MockNotificationService) NotifyAboutMediaAdded(mediaID, url string) error {
	return m.Called(mediaID, url).Error(0)
}

func (m *MockNotificationService) NotifyAboutMediaDeleted(mediaID string) error {
	return m.Called(mediaID).Error(0)
}

func (m *MockNotificationService) NotifyUserRegistration(userID, fullName string) error {
	return m.Called(userID, fullName).Error(0)
}

func (m *MockNotificationService) NotifySystemNotification(level domain.NotificationLevel, message string) error {
	return m.Called(level, message).Error(0)
}

// MockConnectionAuditRecorder is a mock implementation of ports.ConnectionAuditRecorder
type MockConnectionAuditRecorder struct {
	mock.Mock
}

var _ ports.ConnectionAuditRecorder = (*MockConnectionAuditRecorder)(nil)

func NewMockConnectionAuditRecorder() *MockConnectionAuditRecorder {
	return &MockConnectionAuditRecorder{}
}

func (m *MockConnectionAuditRecorder) RecordConnect(ctx context.Context, audit *domain.ConnectionAudit) error {
	return m.Called(ctx, audit).Error(0)
}

func (m *MockConnectionAuditRecorder) RecordDisconnect(ctx context.Context, connectionID uuid.UUID, reason domain.DisconnectReason, at time.Time) error {
	return m.Called(ctx, connectionID, reason, at).Error(0)
}
