package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waxhands/workshop-backend/internal/core/domain"
)

func recipientIDs(clients []*Client) map[string]bool {
	ids := make(map[string]bool, len(clients))
	for _, c := range clients {
		ids[c.ID.String()] = true
	}
	return ids
}

func TestRoute_TargetUsersOverrideSubscriptions(t *testing.T) {
	hub := newTestHub()

	target := newTestClient(hub, "parent-1", domain.RoleUser)
	other := newTestClient(hub, "parent-2", domain.RoleUser)
	hub.registerClient(target)
	hub.registerClient(other)

	// parent-1 is subscribed to a chat but to no invoice channel; explicit
	// targeting must reach them anyway.
	hub.Subscribe(target, []string{"chat:c1"})

	event := domain.NewEvent(domain.InvoiceUpdatePayload{InvoiceID: "inv-1", UserID: "parent-1", Status: "paid"})
	event.TargetUsers = []string{"parent-1"}

	recipients := hub.route(event)
	ids := recipientIDs(recipients)

	assert.Len(t, recipients, 1)
	assert.True(t, ids[target.ID.String()])
	assert.False(t, ids[other.ID.String()])
}

func TestRoute_TargetUsersReachAllConnectionsOfUser(t *testing.T) {
	hub := newTestHub()

	tab1 := newTestClient(hub, "parent-1", domain.RoleUser)
	tab2 := newTestClient(hub, "parent-1", domain.RoleUser)
	hub.registerClient(tab1)
	hub.registerClient(tab2)

	event := domain.NewEvent(domain.ChatListPayload{UserID: "parent-1"})
	event.TargetUsers = []string{"parent-1"}

	assert.Len(t, hub.route(event), 2)
}

func TestRoute_TargetRoles(t *testing.T) {
	hub := newTestHub()

	admin := newTestClient(hub, "staff-1", domain.RoleAdmin)
	user := newTestClient(hub, "parent-1", domain.RoleUser)
	anon := newTestClient(hub, "", domain.RoleUser)
	hub.registerClient(admin)
	hub.registerClient(user)
	hub.registerClient(anon)

	// About-page updates target the user role; admin connections must not
	// receive them regardless of channel subscriptions.
	event := domain.NewEvent(domain.AboutContentPayload{Section: "pricing"})
	event.TargetRoles = []domain.Role{domain.RoleUser}

	recipients := hub.route(event)
	ids := recipientIDs(recipients)

	assert.Len(t, recipients, 2)
	assert.False(t, ids[admin.ID.String()])
	assert.True(t, ids[user.ID.String()])
	assert.True(t, ids[anon.ID.String()])
}

func TestRoute_TargetUsersWinOverTargetRoles(t *testing.T) {
	hub := newTestHub()

	admin := newTestClient(hub, "staff-1", domain.RoleAdmin)
	user := newTestClient(hub, "parent-1", domain.RoleUser)
	hub.registerClient(admin)
	hub.registerClient(user)

	event := domain.NewEvent(domain.ChatListPayload{UserID: "parent-1"})
	event.TargetUsers = []string{"parent-1"}
	event.TargetRoles = []domain.Role{domain.RoleAdmin}

	recipients := hub.route(event)
	require.Len(t, recipients, 1)
	assert.Equal(t, user.ID, recipients[0].ID)
}

func TestRoute_ChatMessageAdminOverride(t *testing.T) {
	hub := newTestHub()

	// The admin never subscribed to chat:c1 but receives the message anyway:
	// any admin may pick up any conversation.
	admin := newTestClient(hub, "staff-1", domain.RoleAdmin)
	stranger := newTestClient(hub, "parent-2", domain.RoleUser)
	hub.registerClient(admin)
	hub.registerClient(stranger)

	event := domain.NewEvent(domain.ChatMessagePayload{ChatID: "c1", UserID: "parent-1", SenderID: "parent-1", Text: "hi"})

	recipients := hub.route(event)
	ids := recipientIDs(recipients)

	assert.True(t, ids[admin.ID.String()])
	assert.False(t, ids[stranger.ID.String()])
}

func TestRoute_ChatMessageOwnerViaUserChannel(t *testing.T) {
	hub := newTestHub()

	// The owner has not subscribed to the just-created chat yet; the user
	// channel covers the gap.
	owner := newTestClient(hub, "parent-1", domain.RoleUser)
	hub.registerClient(owner)

	event := domain.NewEvent(domain.ChatMessagePayload{ChatID: "c-new", UserID: "parent-1", SenderID: "staff-1", Text: "hello"})

	recipients := hub.route(event)
	require.Len(t, recipients, 1)
	assert.Equal(t, owner.ID, recipients[0].ID)
}

func TestRoute_ChatMessageSubscriberViaChatChannel(t *testing.T) {
	hub := newTestHub()

	subscriber := newTestClient(hub, "parent-2", domain.RoleUser)
	hub.registerClient(subscriber)
	hub.Subscribe(subscriber, []string{"chat:c1"})

	event := domain.NewEvent(domain.ChatMessagePayload{ChatID: "c1", UserID: "parent-1", SenderID: "parent-1", Text: "hi"})

	recipients := hub.route(event)
	require.Len(t, recipients, 1)
	assert.Equal(t, subscriber.ID, recipients[0].ID)
}

func TestRoute_ChatMessageNoDoubleDelivery(t *testing.T) {
	hub := newTestHub()

	// An admin subscribed to the chat channel still appears exactly once.
	admin := newTestClient(hub, "staff-1", domain.RoleAdmin)
	hub.registerClient(admin)
	hub.Subscribe(admin, []string{"chat:c1"})

	event := domain.NewEvent(domain.ChatMessagePayload{ChatID: "c1", UserID: "parent-1", SenderID: "parent-1", Text: "hi"})

	assert.Len(t, hub.route(event), 1)
}

func TestRoute_ChannelContainment(t *testing.T) {
	hub := newTestHub()

	subscribed := newTestClient(hub, "parent-1", domain.RoleUser)
	unsubscribed := newTestClient(hub, "parent-2", domain.RoleUser)
	hub.registerClient(subscribed)
	hub.registerClient(unsubscribed)
	hub.Subscribe(subscribed, []string{"chat:c1"})

	event := domain.NewEvent(domain.ChatStatusPayload{ChatID: "c1", Status: "resolved"})

	recipients := hub.route(event)
	ids := recipientIDs(recipients)

	assert.True(t, ids[subscribed.ID.String()])
	assert.False(t, ids[unsubscribed.ID.String()])
}

func TestRoute_ChannelOverlapDeliversOnce(t *testing.T) {
	hub := newTestHub()

	// invoice_update maps to both the user channel and admin:all; an admin
	// connection holding both must receive one copy.
	admin := newTestClient(hub, "staff-1", domain.RoleAdmin)
	hub.registerClient(admin)
	hub.Subscribe(admin, []string{domain.UserChannel("parent-1")})

	event := domain.NewEvent(domain.InvoiceUpdatePayload{InvoiceID: "inv-1", UserID: "parent-1", Status: "paid"})

	assert.Len(t, hub.route(event), 1)
}

// unknownPayload is a kind without a row in the channel table.
type unknownPayload struct{}

func (unknownPayload) EventType() domain.EventType { return "mystery_event" }

func TestChannelsFor(t *testing.T) {
	tests := []struct {
		name    string
		payload domain.EventPayload
		want    []string
	}{
		{
			name:    "chat status change",
			payload: domain.ChatStatusPayload{ChatID: "c1"},
			want:    []string{"chat:c1", domain.ChannelAdminAll},
		},
		{
			name:    "new chat",
			payload: domain.NewChatPayload{ChatID: "c1", UserID: "parent-1"},
			want:    []string{"user:parent-1", domain.ChannelAdminNewChats},
		},
		{
			name:    "unread count",
			payload: domain.UnreadCountPayload{ChatID: "c1", UserID: "parent-1"},
			want:    []string{"chat:c1", "user:parent-1"},
		},
		{
			name:    "invoice update",
			payload: domain.InvoiceUpdatePayload{InvoiceID: "inv-1", UserID: "parent-1"},
			want:    []string{"user:parent-1", domain.ChannelAdminAll},
		},
		{
			name:    "user registration",
			payload: domain.UserRegistrationPayload{UserID: "parent-1"},
			want:    []string{domain.ChannelAdminAll},
		},
		{
			name:    "workshop request created",
			payload: domain.WorkshopRequestCreatedPayload{RequestID: "r1", UserID: "parent-1"},
			want:    []string{domain.ChannelAdminWorkshopRequests},
		},
		{
			name:    "workshop request status change",
			payload: domain.WorkshopRequestStatusPayload{RequestID: "r1", UserID: "parent-1", Status: "approved"},
			want:    []string{"user:parent-1", domain.ChannelAdminWorkshopRequests},
		},
		{
			name:    "about media added",
			payload: domain.AboutMediaAddedPayload{MediaID: "m1"},
			want:    []string{domain.ChannelContentUpdates},
		},
		{
			name:    "master class falls back to system channel",
			payload: domain.MasterClassPayload{MasterClassID: "mc1", Action: "updated"},
			want:    []string{domain.ChannelSystemAll},
		},
		{
			name:    "unknown kind falls back to system channel",
			payload: unknownPayload{},
			want:    []string{domain.ChannelSystemAll},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, channelsFor(domain.NewEvent(tt.payload)))
		})
	}
}
