package domain

import "time"

// Envelope is the wire format for every frame sent to a client.
type Envelope struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp int64     `json:"timestamp"` // epoch milliseconds
}

// Envelope converts an Event to its wire representation.
func (e Event) Envelope() Envelope {
	return Envelope{
		Type:      e.Type,
		Data:      e.Payload,
		Timestamp: e.Timestamp.UnixMilli(),
	}
}

// ConnectionEstablishedData is the payload of the acknowledgement frame sent
// right after a connection is registered.
type ConnectionEstablishedData struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId,omitempty"`
	UserRole Role   `json:"userRole"`
}

// NewConnectionEstablished builds the acknowledgement envelope.
func NewConnectionEstablished(clientID, userID string, role Role) Envelope {
	return Envelope{
		Type:      EventConnectionEstablished,
		Data:      ConnectionEstablishedData{ClientID: clientID, UserID: userID, UserRole: role},
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewPong builds the reply to a client-side ping control message. The
// envelope timestamp carries the server's current time.
func NewPong() Envelope {
	return Envelope{Type: EventPong, Timestamp: time.Now().UnixMilli()}
}
