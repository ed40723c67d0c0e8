package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waxhands/workshop-backend/internal/core/domain"
)

func TestNewEvent_StampsTypeAndTime(t *testing.T) {
	before := time.Now()
	event := domain.NewEvent(domain.InvoiceUpdatePayload{InvoiceID: "inv-1", UserID: "parent-1", Status: "paid"})
	after := time.Now()

	assert.Equal(t, domain.EventInvoiceUpdate, event.Type)
	assert.False(t, event.Timestamp.Before(before))
	assert.False(t, event.Timestamp.After(after))
	assert.Empty(t, event.TargetUsers)
	assert.Empty(t, event.TargetRoles)
}

func TestEnvelope_WireShape(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
	event := domain.Event{
		Type:      domain.EventChatMessage,
		Payload:   domain.ChatMessagePayload{ChatID: "c1", UserID: "parent-1", SenderID: "staff-1", Text: "hello"},
		Timestamp: stamp,
	}

	raw, err := json.Marshal(event.Envelope())
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))

	assert.Equal(t, "chat_message", frame["type"])
	assert.EqualValues(t, stamp.UnixMilli(), frame["timestamp"])

	data, ok := frame["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "c1", data["chatId"])
	assert.Equal(t, "parent-1", data["userId"])
	assert.Equal(t, "staff-1", data["senderId"])
	assert.Equal(t, "hello", data["text"])
}

func TestNewConnectionEstablished(t *testing.T) {
	envelope := domain.NewConnectionEstablished("conn-1", "parent-1", domain.RoleUser)

	raw, err := json.Marshal(envelope)
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))

	assert.Equal(t, "connection_established", frame["type"])
	data := frame["data"].(map[string]any)
	assert.Equal(t, "conn-1", data["clientId"])
	assert.Equal(t, "parent-1", data["userId"])
	assert.Equal(t, "user", data["userRole"])
}

func TestNewConnectionEstablished_AnonymousOmitsUserID(t *testing.T) {
	raw, err := json.Marshal(domain.NewConnectionEstablished("conn-1", "", domain.RoleUser))
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))

	data := frame["data"].(map[string]any)
	_, present := data["userId"]
	assert.False(t, present)
}

func TestNewPong(t *testing.T) {
	envelope := domain.NewPong()

	assert.Equal(t, domain.EventPong, envelope.Type)
	assert.Nil(t, envelope.Data)
	assert.InDelta(t, time.Now().UnixMilli(), envelope.Timestamp, 1000)
}

func TestChannelBuilders(t *testing.T) {
	assert.Equal(t, "user:parent-1", domain.UserChannel("parent-1"))
	assert.Equal(t, "chat:c1", domain.ChatChannel("c1"))
	assert.Equal(t, "notifications:parent-1", domain.NotificationsChannel("parent-1"))
}
