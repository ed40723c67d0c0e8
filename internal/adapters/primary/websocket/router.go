package websocket

import (
	"github.com/waxhands/workshop-backend/internal/core/domain"
)

// route computes the set of connections an event should reach. Priority
// order, first match wins, so one publish never double-delivers:
//
//  1. explicit target users
//  2. explicit target roles
//  3. chat-message fan-out (product rule, see chatRecipients)
//  4. channel-set intersection via the kind table
//
// Explicit targeting overrides channel membership on purpose: a
// point-to-point notification must not be suppressed by stale subscription
// state. The router only reads the registry; it never mutates it.
func (h *Hub) route(event domain.Event) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(event.TargetUsers) > 0 {
		return h.targetUserRecipients(event.TargetUsers)
	}

	if len(event.TargetRoles) > 0 {
		return h.targetRoleRecipients(event.TargetRoles)
	}

	if payload, ok := event.Payload.(domain.ChatMessagePayload); ok {
		return h.chatRecipients(payload)
	}

	return h.channelRecipients(channelsFor(event))
}

func (h *Hub) targetUserRecipients(users []string) []*Client {
	seen := make(map[*Client]bool)
	var recipients []*Client
	for _, userID := range users {
		for client := range h.byUser[userID] {
			if !seen[client] {
				seen[client] = true
				recipients = append(recipients, client)
			}
		}
	}
	return recipients
}

func (h *Hub) targetRoleRecipients(roles []domain.Role) []*Client {
	wanted := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		wanted[role] = true
	}

	var recipients []*Client
	for _, client := range h.clients {
		if wanted[client.Role] {
			recipients = append(recipients, client)
		}
	}
	return recipients
}

// chatRecipients implements the support-queue fan-out for chat messages:
// every admin connection receives every chat message, subscribed or not,
// because any admin may pick up any conversation. A non-admin connection
// receives it only via the chat's channel or its own user channel - the
// latter covers a chat so new the client has not subscribed yet.
func (h *Hub) chatRecipients(payload domain.ChatMessagePayload) []*Client {
	seen := make(map[*Client]bool)
	var recipients []*Client

	add := func(client *Client) {
		if !seen[client] {
			seen[client] = true
			recipients = append(recipients, client)
		}
	}

	for _, client := range h.clients {
		if client.Role == domain.RoleAdmin {
			add(client)
		}
	}

	for client := range h.channels[domain.ChatChannel(payload.ChatID)] {
		add(client)
	}
	if payload.UserID != "" {
		for client := range h.channels[domain.UserChannel(payload.UserID)] {
			add(client)
		}
	}

	return recipients
}

func (h *Hub) channelRecipients(channels []string) []*Client {
	seen := make(map[*Client]bool)
	var recipients []*Client
	for _, channel := range channels {
		for client := range h.channels[channel] {
			if !seen[client] {
				seen[client] = true
				recipients = append(recipients, client)
			}
		}
	}
	return recipients
}

// channelsFor is the fixed kind-to-channels table. Kinds without a row fall
// back to the system-wide channel; see DESIGN.md for why that fallback is
// kept as-is.
func channelsFor(event domain.Event) []string {
	switch payload := event.Payload.(type) {
	case domain.ChatStatusPayload:
		return []string{domain.ChatChannel(payload.ChatID), domain.ChannelAdminAll}

	case domain.ChatListPayload:
		return []string{domain.UserChannel(payload.UserID), domain.ChannelAdminAll}

	case domain.NewChatPayload:
		return []string{domain.UserChannel(payload.UserID), domain.ChannelAdminNewChats}

	case domain.UnreadCountPayload:
		return []string{domain.ChatChannel(payload.ChatID), domain.UserChannel(payload.UserID)}

	case domain.InvoiceUpdatePayload:
		return []string{domain.UserChannel(payload.UserID), domain.ChannelAdminAll}

	case domain.UserRegistrationPayload:
		return []string{domain.ChannelAdminAll}

	case domain.WorkshopRequestCreatedPayload:
		return []string{domain.ChannelAdminWorkshopRequests}

	case domain.WorkshopRequestUpdatePayload:
		return []string{domain.UserChannel(payload.UserID), domain.ChannelAdminWorkshopRequests}

	case domain.WorkshopRequestStatusPayload:
		return []string{domain.UserChannel(payload.UserID), domain.ChannelAdminWorkshopRequests}

	case domain.AboutContentPayload, domain.AboutMediaUpdatedPayload,
		domain.AboutMediaAddedPayload, domain.AboutMediaDeletedPayload:
		return []string{domain.ChannelContentUpdates}

	default:
		return []string{domain.ChannelSystemAll}
	}
}
