package domain

import (
	"time"

	"github.com/google/uuid"
)

// BroadcastStats is a point-in-time snapshot of the hub for diagnostics.
type BroadcastStats struct {
	TotalConnections int `json:"totalConnections"`
	AdminConnections int `json:"adminConnections"`
	UserConnections  int `json:"userConnections"`
	LiveConnections  int `json:"liveConnections"`
	QueueDepth       int `json:"queueDepth"`
}

// DisconnectReason records why a connection left the registry.
type DisconnectReason string

const (
	DisconnectClosed       DisconnectReason = "closed"
	DisconnectError        DisconnectReason = "error"
	DisconnectStale        DisconnectReason = "stale"
	DisconnectSlowConsumer DisconnectReason = "slow_consumer"
)

// ConnectionAudit is one row of the connection audit trail. It records that
// a session happened, never what was delivered over it.
type ConnectionAudit struct {
	ConnectionID uuid.UUID
	UserID       string
	Role         Role
	RemoteAddr   string
	ConnectedAt  time.Time

	DisconnectedAt   *time.Time
	DisconnectReason *DisconnectReason
}
