package services

import (
	"log/slog"

	"github.com/waxhands/workshop-backend/internal/core/domain"
	apperrors "github.com/waxhands/workshop-backend/internal/core/errors"
	"github.com/waxhands/workshop-backend/internal/core/ports"
)

// NotificationService translates domain facts into routed events. It is the
// only component allowed to construct events; routing hints are policy fixed
// here, per fact, so call sites cannot get them wrong.
type NotificationService struct {
	broadcaster ports.EventBroadcaster
	logger      *slog.Logger
}

var _ ports.NotificationService = (*NotificationService)(nil)

// NewNotificationService creates the notification façade.
func NewNotificationService(broadcaster ports.EventBroadcaster, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		broadcaster: broadcaster,
		logger:      logger.With("component", "notification_service"),
	}
}

// publish enqueues the event and logs a failed enqueue. Delivery itself is
// asynchronous; an error here only ever means the queue rejected the event.
func (s *NotificationService) publish(event domain.Event) error {
	if err := s.broadcaster.Broadcast(event); err != nil {
		s.logger.Error("failed to enqueue event", "event_type", event.Type, "error", err)
		return err
	}
	return nil
}

// NotifyChatMessage announces a new chat message. Fan-out follows the
// support-queue rule: every admin sees it, the chat owner sees it via the
// chat or their user channel.
func (s *NotificationService) NotifyChatMessage(chatID, userID, senderID, text string) error {
	return s.publish(domain.NewEvent(domain.ChatMessagePayload{
		ChatID:   chatID,
		UserID:   userID,
		SenderID: senderID,
		Text:     text,
	}))
}

// NotifyNewChat announces a freshly created chat to the owner and the admin
// new-chats channel.
func (s *NotificationService) NotifyNewChat(chatID, userID string) error {
	return s.publish(domain.NewEvent(domain.NewChatPayload{ChatID: chatID, UserID: userID}))
}

// NotifyUnreadCountUpdate pushes the new unread counter for a chat.
func (s *NotificationService) NotifyUnreadCountUpdate(chatID, userID string, count int) error {
	return s.publish(domain.NewEvent(domain.UnreadCountPayload{ChatID: chatID, UserID: userID, Count: count}))
}

// NotifyChatStatusChange announces a chat status transition to chat
// subscribers and the admin side.
func (s *NotificationService) NotifyChatStatusChange(chatID, status string) error {
	return s.publish(domain.NewEvent(domain.ChatStatusPayload{ChatID: chatID, Status: status}))
}

// NotifyChatListUpdate tells a user's clients to refresh their chat list.
func (s *NotificationService) NotifyChatListUpdate(userID string) error {
	return s.publish(domain.NewEvent(domain.ChatListPayload{UserID: userID}))
}

// NotifyInvoiceUpdate targets the invoice's user directly so stale
// subscription state can never suppress a payment notification, and lands on
// admin:all through the channel table.
func (s *NotificationService) NotifyInvoiceUpdate(invoiceID, userID, status string) error {
	return s.publish(domain.NewEvent(domain.InvoiceUpdatePayload{
		InvoiceID: invoiceID,
		UserID:    userID,
		Status:    status,
	}))
}

// NotifyMasterClassUpdate is broadcast system-wide: both roles are targeted
// explicitly so delivery does not depend on any subscription state.
func (s *NotificationService) NotifyMasterClassUpdate(masterClassID, action string) error {
	event := domain.NewEvent(domain.MasterClassPayload{MasterClassID: masterClassID, Action: action})
	event.TargetRoles = []domain.Role{domain.RoleAdmin, domain.RoleUser}
	return s.publish(event)
}

// NotifyWorkshopRequestCreated announces a new workshop request to the admin
// workshop-requests channel.
func (s *NotificationService) NotifyWorkshopRequestCreated(requestID, userID, schoolID string) error {
	return s.publish(domain.NewEvent(domain.WorkshopRequestCreatedPayload{
		RequestID: requestID,
		UserID:    userID,
		SchoolID:  schoolID,
	}))
}

// NotifyWorkshopRequestUpdate announces edits to a request.
func (s *NotificationService) NotifyWorkshopRequestUpdate(requestID, userID string) error {
	return s.publish(domain.NewEvent(domain.WorkshopRequestUpdatePayload{
		RequestID: requestID,
		UserID:    userID,
	}))
}

// NotifyWorkshopRequestStatusChange announces a request status transition.
func (s *NotificationService) NotifyWorkshopRequestStatusChange(requestID, userID, status string) error {
	return s.publish(domain.NewEvent(domain.WorkshopRequestStatusPayload{
		RequestID: requestID,
		UserID:    userID,
		Status:    status,
	}))
}

// About-page changes are parent-facing content: they always target the user
// role so admin dashboards are not interrupted by CMS edits.

func (s *NotificationService) NotifyAboutContentUpdate(section string) error {
	event := domain.NewEvent(domain.AboutContentPayload{Section: section})
	event.TargetRoles = []domain.Role{domain.RoleUser}
	return s.publish(event)
}

func (s *NotificationService) NotifyAboutMediaUpdate(mediaID string) error {
	event := domain.NewEvent(domain.AboutMediaUpdatedPayload{MediaID: mediaID})
	event.TargetRoles = []domain.Role{domain.RoleUser}
	return s.publish(event)
}

func (s *NotificationService) NotifyAboutMediaAdded(mediaID, url string) error {
	event := domain.NewEvent(domain.AboutMediaAddedPayload{MediaID: mediaID, URL: url})
	event.TargetRoles = []domain.Role{domain.RoleUser}
	return s.publish(event)
}

func (s *NotificationService) NotifyAboutMediaDeleted(mediaID string) error {
	event := domain.NewEvent(domain.AboutMediaDeletedPayload{MediaID: mediaID})
	event.TargetRoles = []domain.Role{domain.RoleUser}
	return s.publish(event)
}

// NotifyUserRegistration announces a new account to the admin side.
func (s *NotificationService) NotifyUserRegistration(userID, fullName string) error {
	return s.publish(domain.NewEvent(domain.UserRegistrationPayload{UserID: userID, FullName: fullName}))
}

// NotifySystemNotification publishes a generic operational notice on the
// system-wide channel.
func (s *NotificationService) NotifySystemNotification(level domain.NotificationLevel, message string) error {
	switch level {
	case domain.LevelInfo, domain.LevelWarning, domain.LevelError:
	default:
		return apperrors.ErrInvalidLevel
	}
	return s.publish(domain.NewEvent(domain.SystemNotificationPayload{Level: level, Message: message}))
}
