package http

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	trequire "github.com/stretchr/testify/require"

	"github.com/waxhands/workshop-backend/internal/core/domain"
	apperrors "github.com/waxhands/workshop-backend/internal/core/errors"
	"github.com/waxhands/workshop-backend/internal/core/mocks"
)

func newNotifyHandler() (*NotifyHandler, *mocks.MockNotificationService) {
	svc := mocks.NewMockNotificationService()
	return NewNotifyHandler(svc, slog.New(slog.DiscardHandler)), svc
}

func postEvent(handler *NotifyHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandlePublish(rec, req)
	return rec
}

func TestHandlePublish_ChatMessage(t *testing.T) {
	handler, svc := newNotifyHandler()
	svc.On("NotifyChatMessage", "c1", "parent-1", "staff-1", "hello").Return(nil)

	rec := postEvent(handler, `{"kind":"chat_message","chatId":"c1","userId":"parent-1","senderId":"staff-1","text":"hello"}`)

	assert.Equal(t, 202, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandlePublish_AllKindsDispatch(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		method string
		args   []any
	}{
		{"new chat", `{"kind":"new_chat","chatId":"c1","userId":"parent-1"}`, "NotifyNewChat", []any{"c1", "parent-1"}},
		{"unread count", `{"kind":"unread_count_update","chatId":"c1","userId":"parent-1","count":2}`, "NotifyUnreadCountUpdate", []any{"c1", "parent-1", 2}},
		{"chat status", `{"kind":"chat_status_change","chatId":"c1","status":"resolved"}`, "NotifyChatStatusChange", []any{"c1", "resolved"}},
		{"chat list", `{"kind":"chat_list_update","userId":"parent-1"}`, "NotifyChatListUpdate", []any{"parent-1"}},
		{"invoice", `{"kind":"invoice_update","invoiceId":"inv-1","userId":"parent-1","status":"paid"}`, "NotifyInvoiceUpdate", []any{"inv-1", "parent-1", "paid"}},
		{"master class", `{"kind":"master_class_update","masterClassId":"mc-1","action":"updated"}`, "NotifyMasterClassUpdate", []any{"mc-1", "updated"}},
		{"workshop created", `{"kind":"workshop_request_created","requestId":"r1","userId":"parent-1","schoolId":"school-1"}`, "NotifyWorkshopRequestCreated", []any{"r1", "parent-1", "school-1"}},
		{"workshop update", `{"kind":"workshop_request_update","requestId":"r1","userId":"parent-1"}`, "NotifyWorkshopRequestUpdate", []any{"r1", "parent-1"}},
		{"workshop status", `{"kind":"workshop_request_status_change","requestId":"r1","userId":"parent-1","status":"approved"}`, "NotifyWorkshopRequestStatusChange", []any{"r1", "parent-1", "approved"}},
		{"about content", `{"kind":"about_content_update","section":"pricing"}`, "NotifyAboutContentUpdate", []any{"pricing"}},
		{"about media update", `{"kind":"about_media_update","mediaId":"m1"}`, "NotifyAboutMediaUpdate", []any{"m1"}},
		{"about media added", `{"kind":"about_media_added","mediaId":"m1","url":"https://cdn/m1.jpg"}`, "NotifyAboutMediaAdded", []any{"m1", "https://cdn/m1.jpg"}},
		{"about media deleted", `{"kind":"about_media_deleted","mediaId":"m1"}`, "NotifyAboutMediaDeleted", []any{"m1"}},
		{"user registration", `{"kind":"user_registration","userId":"parent-1","fullName":"Jamie Doe"}`, "NotifyUserRegistration", []any{"parent-1", "Jamie Doe"}},
		{"system notification", `{"kind":"system_notification","level":"info","message":"maintenance"}`, "NotifySystemNotification", []any{domain.LevelInfo, "maintenance"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, svc := newNotifyHandler()
			svc.On(tt.method, tt.args...).Return(nil)

			rec := postEvent(handler, tt.body)

			assert.Equal(t, 202, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandlePublish_UnknownKind(t *testing.T) {
	handler, svc := newNotifyHandler()

	rec := postEvent(handler, `{"kind":"meteor_strike"}`)

	assert.Equal(t, 400, rec.Code)
	var resp ErrorResponse
	trequire.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "meteor_strike")
	svc.AssertNotCalled(t, "NotifySystemNotification")
}

func TestHandlePublish_MalformedBody(t *testing.T) {
	handler, _ := newNotifyHandler()

	rec := postEvent(handler, `{not json`)

	assert.Equal(t, 400, rec.Code)
}

func TestHandlePublish_MissingRequiredField(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"chat message without chatId", `{"kind":"chat_message","text":"hi"}`},
		{"invoice without invoiceId", `{"kind":"invoice_update","userId":"parent-1"}`},
		{"invoice without userId", `{"kind":"invoice_update","invoiceId":"inv-1"}`},
		{"media update without mediaId", `{"kind":"about_media_update"}`},
		{"registration without userId", `{"kind":"user_registration","fullName":"Jamie Doe"}`},
		{"system notification without message", `{"kind":"system_notification","level":"info"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newNotifyHandler()
			rec := postEvent(handler, tt.body)
			assert.Equal(t, 400, rec.Code)
		})
	}
}

func TestHandlePublish_InvalidLevel(t *testing.T) {
	handler, svc := newNotifyHandler()
	svc.On("NotifySystemNotification", domain.NotificationLevel("critical"), "boom").
		Return(apperrors.ErrInvalidLevel)

	rec := postEvent(handler, `{"kind":"system_notification","level":"critical","message":"boom"}`)

	assert.Equal(t, 400, rec.Code)
}

func TestHandlePublish_FullQueueIsUnavailable(t *testing.T) {
	handler, svc := newNotifyHandler()
	svc.On("NotifyChatListUpdate", "parent-1").Return(apperrors.ErrQueueFull)

	rec := postEvent(handler, `{"kind":"chat_list_update","userId":"parent-1"}`)

	assert.Equal(t, 503, rec.Code)
	var resp ErrorResponse
	trequire.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "queue is full")
}

func TestHandlePublish_UnexpectedErrorIsInternal(t *testing.T) {
	handler, svc := newNotifyHandler()
	svc.On("NotifyChatListUpdate", "parent-1").Return(assert.AnError)

	rec := postEvent(handler, `{"kind":"chat_list_update","userId":"parent-1"}`)

	assert.Equal(t, 500, rec.Code)
}
