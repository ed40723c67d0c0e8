package domain

// Channel names are routing labels only; nothing is persisted under them.
const (
	// ChannelAdminAll receives everything the admin side should observe.
	ChannelAdminAll = "admin:all"

	// ChannelAdminNewChats receives announcements of freshly created chats.
	ChannelAdminNewChats = "admin:new-chats"

	// ChannelAdminWorkshopRequests receives workshop-request lifecycle events.
	ChannelAdminWorkshopRequests = "admin:workshop-requests"

	// ChannelSystemAll is the system-wide catch-all channel. Events of
	// unrecognized kinds fall back to it.
	ChannelSystemAll = "system:all"

	// ChannelContentUpdates receives about-page content and media changes.
	ChannelContentUpdates = "content:updates"
)

// UserChannel is the per-identity channel every authenticated connection
// subscribes to at accept time.
func UserChannel(userID string) string { return "user:" + userID }

// ChatChannel is the per-conversation channel.
func ChatChannel(chatID string) string { return "chat:" + chatID }

// NotificationsChannel is the per-identity notification channel for
// non-admin connections.
func NotificationsChannel(userID string) string { return "notifications:" + userID }
