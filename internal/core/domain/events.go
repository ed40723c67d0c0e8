package domain

import "time"

// EventType identifies the kind of real-time event.
type EventType string

const (
	EventChatMessage                 EventType = "chat_message"
	EventChatStatusChange            EventType = "chat_status_change"
	EventChatListUpdate              EventType = "chat_list_update"
	EventNewChat                     EventType = "new_chat"
	EventUnreadCountUpdate           EventType = "unread_count_update"
	EventInvoiceUpdate               EventType = "invoice_update"
	EventMasterClassUpdate           EventType = "master_class_update"
	EventUserRegistration            EventType = "user_registration"
	EventSystemNotification          EventType = "system_notification"
	EventWorkshopRequestCreated      EventType = "workshop_request_created"
	EventWorkshopRequestUpdate       EventType = "workshop_request_update"
	EventWorkshopRequestStatusChange EventType = "workshop_request_status_change"
	EventAboutContentUpdate          EventType = "about_content_update"
	EventAboutMediaUpdate            EventType = "about_media_update"
	EventAboutMediaAdded             EventType = "about_media_added"
	EventAboutMediaDeleted           EventType = "about_media_deleted"

	// Protocol-level types, never published through the façade.
	EventConnectionEstablished EventType = "connection_established"
	EventPong                  EventType = "pong"
)

// Role is the coarse privilege class used for routing. Authorization is
// handled by the auth collaborator before a client is allowed to connect.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// NotificationLevel grades system notifications.
type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// EventPayload is the closed set of per-kind payloads. Each variant carries
// only the fields relevant to its kind.
type EventPayload interface {
	EventType() EventType
}

// Event is one domain occurrence to broadcast. TargetUsers and TargetRoles,
// when set, take priority over channel-based routing.
type Event struct {
	Type        EventType
	Payload     EventPayload
	Timestamp   time.Time
	TargetUsers []string
	TargetRoles []Role
}

// NewEvent builds an Event from a payload, stamping the type and creation time.
func NewEvent(payload EventPayload) Event {
	return Event{
		Type:      payload.EventType(),
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// ChatMessagePayload announces a new message in a chat. UserID is the chat
// owner (the parent side of the conversation), used for routing when the
// owner has not yet subscribed to a just-created chat.
type ChatMessagePayload struct {
	ChatID   string `json:"chatId"`
	UserID   string `json:"userId"`
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
}

func (ChatMessagePayload) EventType() EventType { return EventChatMessage }

// ChatStatusPayload announces a chat status transition (open, resolved, ...).
type ChatStatusPayload struct {
	ChatID string `json:"chatId"`
	Status string `json:"status"`
}

func (ChatStatusPayload) EventType() EventType { return EventChatStatusChange }

// ChatListPayload tells a user's clients to refresh their chat list.
type ChatListPayload struct {
	UserID string `json:"userId"`
}

func (ChatListPayload) EventType() EventType { return EventChatListUpdate }

// NewChatPayload announces a freshly created chat.
type NewChatPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

func (NewChatPayload) EventType() EventType { return EventNewChat }

// UnreadCountPayload carries the new unread counter for a chat.
type UnreadCountPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
	Count  int    `json:"count"`
}

func (UnreadCountPayload) EventType() EventType { return EventUnreadCountUpdate }

// InvoiceUpdatePayload announces an invoice status change for a user.
type InvoiceUpdatePayload struct {
	InvoiceID string `json:"invoiceId"`
	UserID    string `json:"userId"`
	Status    string `json:"status"`
}

func (InvoiceUpdatePayload) EventType() EventType { return EventInvoiceUpdate }

// MasterClassPayload announces a master-class change (created, updated,
// cancelled). Broadcast system-wide.
type MasterClassPayload struct {
	MasterClassID string `json:"masterClassId"`
	Action        string `json:"action"`
}

func (MasterClassPayload) EventType() EventType { return EventMasterClassUpdate }

// UserRegistrationPayload announces a new account to the admin side.
type UserRegistrationPayload struct {
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
}

func (UserRegistrationPayload) EventType() EventType { return EventUserRegistration }

// SystemNotificationPayload is a generic operational notice.
type SystemNotificationPayload struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

func (SystemNotificationPayload) EventType() EventType { return EventSystemNotification }

// WorkshopRequestCreatedPayload announces a new workshop request from a school.
type WorkshopRequestCreatedPayload struct {
	RequestID string `json:"requestId"`
	UserID    string `json:"userId"`
	SchoolID  string `json:"schoolId"`
}

func (WorkshopRequestCreatedPayload) EventType() EventType { return EventWorkshopRequestCreated }

// WorkshopRequestUpdatePayload announces edits to an existing request.
type WorkshopRequestUpdatePayload struct {
	RequestID string `json:"requestId"`
	UserID    string `json:"userId"`
}

func (WorkshopRequestUpdatePayload) EventType() EventType { return EventWorkshopRequestUpdate }

// WorkshopRequestStatusPayload announces a request status transition.
type WorkshopRequestStatusPayload struct {
	RequestID string `json:"requestId"`
	UserID    string `json:"userId"`
	Status    string `json:"status"`
}

func (WorkshopRequestStatusPayload) EventType() EventType {
	return EventWorkshopRequestStatusChange
}

// AboutContentPayload announces an edit to a section of the about page.
type AboutContentPayload struct {
	Section string `json:"section"`
}

func (AboutContentPayload) EventType() EventType { return EventAboutContentUpdate }

// AboutMediaUpdatedPayload announces a replaced about-page media item.
type AboutMediaUpdatedPayload struct {
	MediaID string `json:"mediaId"`
}

func (AboutMediaUpdatedPayload) EventType() EventType { return EventAboutMediaUpdate }

// AboutMediaAddedPayload announces a new about-page media item.
type AboutMediaAddedPayload struct {
	MediaID string `json:"mediaId"`
	URL     string `json:"url"`
}

func (AboutMediaAddedPayload) EventType() EventType { return EventAboutMediaAdded }

// AboutMediaDeletedPayload announces a removed about-page media item.
type AboutMediaDeletedPayload struct {
	MediaID string `json:"mediaId"`
}

func (AboutMediaDeletedPayload) EventType() EventType { return EventAboutMediaDeleted }
