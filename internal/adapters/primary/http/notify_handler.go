package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/waxhands/workshop-backend/internal/core/domain"
	apperrors "github.com/waxhands/workshop-backend/internal/core/errors"
	"github.com/waxhands/workshop-backend/internal/core/ports"
)

// NotifyHandler is the inbound surface the CRUD service calls to publish
// realtime events. It is a thin JSON shim over the notification façade; the
// façade stays the only place events are constructed.
type NotifyHandler struct {
	notifications ports.NotificationService
	logger        *slog.Logger
}

// NewNotifyHandler creates a new notify handler.
func NewNotifyHandler(notifications ports.NotificationService, logger *slog.Logger) *NotifyHandler {
	return &NotifyHandler{notifications: notifications, logger: logger}
}

// NotifyRequest is the envelope of a publish call. Kind selects the domain
// fact; only the fields that fact needs are read.
type NotifyRequest struct {
	Kind domain.EventType `json:"kind"`

	ChatID        string `json:"chatId,omitempty"`
	UserID        string `json:"userId,omitempty"`
	SenderID      string `json:"senderId,omitempty"`
	Text          string `json:"text,omitempty"`
	Count         int    `json:"count,omitempty"`
	Status        string `json:"status,omitempty"`
	InvoiceID     string `json:"invoiceId,omitempty"`
	MasterClassID string `json:"masterClassId,omitempty"`
	Action        string `json:"action,omitempty"`
	RequestID     string `json:"requestId,omitempty"`
	SchoolID      string `json:"schoolId,omitempty"`
	Section       string `json:"section,omitempty"`
	MediaID       string `json:"mediaId,omitempty"`
	URL           string `json:"url,omitempty"`
	FullName      string `json:"fullName,omitempty"`

	Level   domain.NotificationLevel `json:"level,omitempty"`
	Message string                   `json:"message,omitempty"`
}

// HandlePublish decodes one publish call and dispatches it to the façade.
func (h *NotifyHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.dispatch(req); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnknownEventKind):
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("unknown event kind %q", req.Kind))
		case errors.Is(err, apperrors.ErrMissingField), errors.Is(err, apperrors.ErrInvalidLevel):
			WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, apperrors.ErrQueueFull):
			// The event is lost; the caller may retry once the hub drains.
			WriteError(w, http.StatusServiceUnavailable, "event queue is full")
		default:
			h.logger.Error("failed to publish event",
				"request_id", GetRequestID(r.Context()),
				"kind", req.Kind,
				"error", err,
			)
			WriteError(w, http.StatusInternalServerError, "failed to publish event")
		}
		return
	}

	WriteJSON(w, http.StatusAccepted, SuccessResponse{Message: "event accepted"})
}

func (h *NotifyHandler) dispatch(req NotifyRequest) error {
	switch req.Kind {
	case domain.EventChatMessage:
		if err := require(req.ChatID, "chatId"); err != nil {
			return err
		}
		return h.notifications.NotifyChatMessage(req.ChatID, req.UserID, req.SenderID, req.Text)

	case domain.EventNewChat:
		if err := require(req.ChatID, "chatId"); err != nil {
			return err
		}
		return h.notifications.NotifyNewChat(req.ChatID, req.UserID)

	case domain.EventUnreadCountUpdate:
		if err := require(req.ChatID, "chatId"); err != nil {
			return err
		}
		return h.notifications.NotifyUnreadCountUpdate(req.ChatID, req.UserID, req.Count)

	case domain.EventChatStatusChange:
		if err := require(req.ChatID, "chatId"); err != nil {
			return err
		}
		return h.notifications.NotifyChatStatusChange(req.ChatID, req.Status)

	case domain.EventChatListUpdate:
		if err := require(req.UserID, "userId"); err != nil {
			return err
		}
		return h.notifications.NotifyChatListUpdate(req.UserID)

	case domain.EventInvoiceUpdate:
		if err := require(req.InvoiceID, "invoiceId"); err != nil {
			return err
		}
		if err := require(req.UserID, "userId"); err != nil {
			return err
		}
		return h.notifications.NotifyInvoiceUpdate(req.InvoiceID, req.UserID, req.Status)

	case domain.EventMasterClassUpdate:
		if err := require(req.MasterClassID, "masterClassId"); err != nil {
			return err
		}
		return h.notifications.NotifyMasterClassUpdate(req.MasterClassID, req.Action)

	case domain.EventWorkshopRequestCreated:
		if err := require(req.RequestID, "requestId"); err != nil {
			return err
		}
		return h.notifications.NotifyWorkshopRequestCreated(req.RequestID, req.UserID, req.SchoolID)

	case domain.EventWorkshopRequestUpdate:
		if err := require(req.RequestID, "requestId"); err != nil {
			return err
		}
		return h.notifications.NotifyWorkshopRequestUpdate(req.RequestID, req.UserID)

	case domain.EventWorkshopRequestStatusChange:
		if err := require(req.RequestID, "requestId"); err != nil {
			return err
		}
		return h.notifications.NotifyWorkshopRequestStatusChange(req.RequestID, req.UserID, req.Status)

	case domain.EventAboutContentUpdate:
		return h.notifications.NotifyAboutContentUpdate(req.Section)

	case domain.EventAboutMediaUpdate:
		if err := require(req.MediaID, "mediaId"); err != nil {
			return err
		}
		return h.notifications.NotifyAboutMediaUpdate(req.MediaID)

	case domain.EventAboutMediaAdded:
		if err := require(req.MediaID, "mediaId"); err != nil {
			return err
		}
		return h.notifications.NotifyAboutMediaAdded(req.MediaID, req.URL)

	case domain.EventAboutMediaDeleted:
		if err := require(req.MediaID, "mediaId"); err != nil {
			return err
		}
		return h.notifications.NotifyAboutMediaDeleted(req.MediaID)

	case domain.EventUserRegistration:
		if err := require(req.UserID, "userId"); err != nil {
			return err
		}
		return h.notifications.NotifyUserRegistration(req.UserID, req.FullName)

	case domain.EventSystemNotification:
		if err := require(req.Message, "message"); err != nil {
			return err
		}
		return h.notifications.NotifySystemNotification(req.Level, req.Message)

	default:
		return apperrors.ErrUnknownEventKind
	}
}

func require(value, field string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", apperrors.ErrMissingField, field)
	}
	return nil
}
