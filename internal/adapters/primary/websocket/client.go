package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/waxhands/workshop-backend/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is one live transport session and its routing metadata. The hub is
// the only component that mutates the registry; the client mutates its own
// subscription set and liveness timestamp through the hub's control path.
type Client struct {
	Hub *Hub

	// The websocket connection. Nil in unit tests that exercise routing
	// without a transport.
	Conn *websocket.Conn

	// Buffered channel of outbound frames.
	Send chan domain.Envelope

	// ID is the opaque connection identifier assigned at accept time.
	ID uuid.UUID

	// Identity is the user this connection belongs to. Empty until known.
	Identity string

	// Role is the coarse privilege class used for routing.
	Role domain.Role

	// RemoteAddr is kept for the audit trail.
	RemoteAddr string

	// subscriptions is the set of channel names this connection listens to.
	subscriptions map[string]bool

	// lastSeen is the last successful heartbeat, application ping or
	// protocol pong.
	lastSeen time.Time

	// closeOnce ensures the Send channel is only closed once.
	closeOnce sync.Once

	// mu protects subscriptions and lastSeen.
	mu sync.RWMutex

	logger *slog.Logger
}

// NewClient creates a client for an accepted connection and assigns a fresh id.
func NewClient(hub *Hub, conn *websocket.Conn, identity string, role domain.Role, remoteAddr string, logger *slog.Logger) *Client {
	id := uuid.New()
	return &Client{
		Hub:           hub,
		Conn:          conn,
		Send:          make(chan domain.Envelope, 256),
		ID:            id,
		Identity:      identity,
		Role:          role,
		RemoteAddr:    remoteAddr,
		subscriptions: make(map[string]bool),
		lastSeen:      time.Now(),
		logger:        logger.With("client_id", id.String(), "user_id", identity),
	}
}

// CloseSend safely closes the Send channel exactly once.
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

// addSubscription records a channel on the client. The hub keeps the reverse
// index; both are updated under the hub's lock.
func (c *Client) addSubscription(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[channel] = true
}

func (c *Client) removeSubscription(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, channel)
}

// IsSubscribed reports whether the client listens to the channel.
func (c *Client) IsSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions[channel]
}

// Subscriptions returns a copy of the subscription set.
func (c *Client) Subscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	subs := make([]string, 0, len(c.subscriptions))
	for channel := range c.subscriptions {
		subs = append(subs, channel)
	}
	return subs
}

// TouchLiveness refreshes the heartbeat timestamp.
func (c *Client) TouchLiveness() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = time.Now()
}

// LastSeen returns the last observed heartbeat.
func (c *Client) LastSeen() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSeen
}

// ReadPump pumps control messages from the websocket connection to the hub.
// Runs in its own goroutine, one per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		c.TouchLiveness()
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleControlMessage(message)
	}
}

// WritePump pumps frames from the hub to the websocket connection.
// Runs in its own goroutine, one per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case envelope, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(envelope); err != nil {
				c.logger.Error("failed to write frame", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

func (c *Client) writeJSON(envelope domain.Envelope) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// --- Inbound control protocol ---

// ControlMessage is the structure for messages sent by the client.
type ControlMessage struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels,omitempty"`
}

// handleControlMessage processes one inbound control message. A malformed or
// unknown message is logged and dropped; it never closes the connection.
func (c *Client) handleControlMessage(message []byte) {
	var msg ControlMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal control message", "error", err)
		return
	}

	switch msg.Type {
	case "ping":
		c.TouchLiveness()
		c.Hub.Pong(c)

	case "subscribe":
		c.Hub.Subscribe(c, msg.Channels)

	case "unsubscribe":
		c.Hub.Unsubscribe(c, msg.Channels)

	default:
		c.logger.Debug("received unknown control message type", "type", msg.Type)
	}
}
