package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/waxhands/workshop-backend/internal/core/domain"
)

// EventBroadcaster is the publish side of the realtime hub. Broadcast
// enqueues the event for FIFO delivery and returns without waiting for
// fan-out.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}

// StatsProvider exposes a point-in-time snapshot of the hub for diagnostics.
type StatsProvider interface {
	Stats() domain.BroadcastStats
}

// NotificationService is the only entry point business logic may use to
// publish realtime events. Each method fixes the routing policy for its
// domain fact; call sites never construct raw events.
type NotificationService interface {
	NotifyChatMessage(chatID, userID, senderID, text string) error
	NotifyNewChat(chatID, userID string) error
	NotifyUnreadCountUpdate(chatID, userID string, count int) error
	NotifyChatStatusChange(chatID, status string) error
	NotifyChatListUpdate(userID string) error
	NotifyInvoiceUpdate(invoiceID, userID, status string) error
	NotifyMasterClassUpdate(masterClassID, action string) error
	NotifyWorkshopRequestCreated(requestID, userID, schoolID string) error
	NotifyWorkshopRequestUpdate(requestID, userID string) error
	NotifyWorkshopRequestStatusChange(requestID, userID, status string) error
	NotifyAboutContentUpdate(section string) error
	NotifyAboutMediaUpdate(mediaID string) error
	NotifyAboutMediaAdded(mediaID, url string) error
	NotifyAboutMediaDeleted(mediaID string) error
	NotifyUserRegistration(userID, fullName string) error
	NotifySystemNotification(level domain.NotificationLevel, message string) error
}

// ConnectionAuditRecorder persists the connection audit trail. Implementations
// must tolerate being called concurrently; callers treat failures as
// non-fatal.
type ConnectionAuditRecorder interface {
	RecordConnect(ctx context.Context, audit *domain.ConnectionAudit) error
	RecordDisconnect(ctx context.Context, connectionID uuid.UUID, reason domain.DisconnectReason, at time.Time) error
}
