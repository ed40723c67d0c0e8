package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/waxhands/workshop-backend/internal/core/domain"
	apperrors "github.com/waxhands/workshop-backend/internal/core/errors"
	"github.com/waxhands/workshop-backend/internal/core/ports"
)

// Config tunes the hub's queue and liveness monitor.
type Config struct {
	// QueueSize is the capacity of the event queue. Publishing to a full
	// queue drops the event.
	QueueSize int

	// StaleThreshold is how long a connection may go without a heartbeat
	// before it is evicted. Must be well above the client ping interval so
	// a single missed ping does not cause eviction.
	StaleThreshold time.Duration

	// SweepInterval is how often the liveness monitor scans for stale
	// connections.
	SweepInterval time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		QueueSize:      256,
		StaleThreshold: 5 * time.Minute,
		SweepInterval:  time.Minute,
	}
}

// Hub is the connection registry and event dispatcher. It is the single
// owner of the connection set; the router only reads it. Events are consumed
// from a FIFO queue by one goroutine, so two events are never interleaved at
// the send level for a given connection.
type Hub struct {
	// clients maps connection ids to live connections.
	clients map[uuid.UUID]*Client

	// byUser indexes connections by identity. A user can be connected from
	// several tabs or devices at once.
	byUser map[string]map[*Client]bool

	// channels is the reverse subscription index consulted by the router.
	channels map[string]map[*Client]bool

	// broadcast is the event queue. Buffered; FIFO order of Broadcast calls
	// is the delivery order.
	broadcast chan domain.Event

	// Register requests from the transport handler.
	Register chan *Client

	// Unregister requests from client read pumps.
	Unregister chan *Client

	// mu protects clients, byUser and channels.
	mu sync.RWMutex

	cfg    Config
	audit  ports.ConnectionAuditRecorder // may be nil
	logger *slog.Logger
}

var (
	_ ports.EventBroadcaster = (*Hub)(nil)
	_ ports.StatsProvider    = (*Hub)(nil)
)

// NewHub creates the hub. audit may be nil to disable the audit trail.
func NewHub(cfg Config, audit ports.ConnectionAuditRecorder, logger *slog.Logger) *Hub {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.StaleThreshold <= 0 {
		cfg.StaleThreshold = DefaultConfig().StaleThreshold
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}

	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		byUser:     make(map[string]map[*Client]bool),
		channels:   make(map[string]map[*Client]bool),
		broadcast:  make(chan domain.Event, cfg.QueueSize),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		cfg:        cfg,
		audit:      audit,
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Broadcast enqueues an event for delivery. Implements ports.EventBroadcaster.
// The queue preserves the order of Broadcast calls; a full queue drops the
// event and reports ErrQueueFull rather than blocking the caller.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.broadcast <- event:
		return nil
	default:
		h.logger.Warn("event queue full, dropping event", "event_type", event.Type)
		return apperrors.ErrQueueFull
	}
}

// Run drives the hub's event loop until ctx is cancelled. This MUST be run
// as a goroutine. Registration, eviction, dispatch and the liveness sweep
// all pass through this single loop; a second Broadcast during dispatch only
// appends to the queue, it never starts a concurrent drain.
func (h *Hub) Run(ctx context.Context) {
	sweep := time.NewTicker(h.cfg.SweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.removeClient(client.ID, domain.DisconnectClosed)

		case event := <-h.broadcast:
			h.dispatch(event)

		case <-sweep.C:
			h.evictStale()
		}
	}
}

// registerClient adds the connection to the registry, seeds its default
// subscriptions and acknowledges with a connection_established frame.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	h.clients[client.ID] = client

	if client.Identity != "" {
		if h.byUser[client.Identity] == nil {
			h.byUser[client.Identity] = make(map[*Client]bool)
		}
		h.byUser[client.Identity][client] = true
		h.subscribeLocked(client, domain.UserChannel(client.Identity))
	}

	if client.Role == domain.RoleAdmin {
		h.subscribeLocked(client, domain.ChannelAdminAll)
		h.subscribeLocked(client, domain.ChannelAdminNewChats)
		h.subscribeLocked(client, domain.ChannelAdminWorkshopRequests)
		h.subscribeLocked(client, domain.ChannelSystemAll)
	} else {
		h.subscribeLocked(client, domain.ChannelContentUpdates)
		if client.Identity != "" {
			h.subscribeLocked(client, domain.NotificationsChannel(client.Identity))
		}
	}

	h.mu.Unlock()

	// The ack is queued before the write pump can see any event, so it is
	// always the first frame the client receives.
	h.trySend(client, domain.NewConnectionEstablished(client.ID.String(), client.Identity, client.Role))

	h.recordConnect(client)

	h.logger.Info("client registered",
		"client_id", client.ID,
		"user_id", client.Identity,
		"role", client.Role,
	)
}

// removeClient closes the transport if still open and deletes the connection
// from the registry. Idempotent: removing an absent id is a no-op.
func (h *Hub) removeClient(id uuid.UUID, reason domain.DisconnectReason) {
	h.mu.Lock()

	client, ok := h.clients[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, id)

	if client.Identity != "" {
		if userClients, ok := h.byUser[client.Identity]; ok {
			delete(userClients, client)
			if len(userClients) == 0 {
				delete(h.byUser, client.Identity)
			}
		}
	}

	for _, channel := range client.Subscriptions() {
		h.unsubscribeLocked(client, channel)
	}

	h.mu.Unlock()

	client.CloseSend()
	if client.Conn != nil {
		_ = client.Conn.Close()
	}

	h.recordDisconnect(client, reason)

	h.logger.Info("client removed",
		"client_id", client.ID,
		"user_id", client.Identity,
		"reason", reason,
	)
}

// Subscribe adds channels to the client's subscription set.
func (h *Hub) Subscribe(client *Client, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Only connections still in the registry may grow subscription state.
	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for _, channel := range channels {
		if channel == "" {
			continue
		}
		h.subscribeLocked(client, channel)
	}
}

// Unsubscribe removes channels from the client's subscription set.
func (h *Hub) Unsubscribe(client *Client, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for _, channel := range channels {
		h.unsubscribeLocked(client, channel)
	}
}

// Pong queues a pong reply for the client. The registry check and the send
// share the read lock: removeClient deletes the registration under the write
// lock before it closes Send, so a client observed as registered here cannot
// have its channel closed until the lock is released.
func (h *Hub) Pong(client *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	select {
	case client.Send <- domain.NewPong():
	default:
		// Buffer full; the next ping will get its pong.
	}
}

// subscribeLocked updates both the client set and the reverse index.
// Callers hold h.mu.
func (h *Hub) subscribeLocked(client *Client, channel string) {
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*Client]bool)
	}
	h.channels[channel][client] = true
	client.addSubscription(channel)
}

func (h *Hub) unsubscribeLocked(client *Client, channel string) {
	if subscribers, ok := h.channels[channel]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.channels, channel)
		}
	}
	client.removeSubscription(channel)
}

// sendOutcome is the per-recipient delivery result. A failed send evicts
// that recipient only; the dispatch loop carries on.
type sendOutcome int

const (
	sendOK sendOutcome = iota
	sendBufferFull
)

// trySend queues a frame without blocking. A slow client cannot stall
// delivery to other recipients.
func (h *Hub) trySend(client *Client, envelope domain.Envelope) sendOutcome {
	select {
	case client.Send <- envelope:
		return sendOK
	default:
		return sendBufferFull
	}
}

// dispatch routes one event to completion. Runs on the hub loop, one event
// at a time, so recipients observe events in enqueue order.
func (h *Hub) dispatch(event domain.Event) {
	recipients := h.route(event)
	if len(recipients) == 0 {
		return
	}

	envelope := event.Envelope()

	var evicted []*Client
	for _, client := range recipients {
		if h.trySend(client, envelope) == sendBufferFull {
			evicted = append(evicted, client)
		}
	}

	for _, client := range evicted {
		h.logger.Warn("client send buffer full, evicting",
			"client_id", client.ID,
			"user_id", client.Identity,
		)
		h.removeClient(client.ID, domain.DisconnectSlowConsumer)
	}

	h.logger.Debug("event dispatched",
		"event_type", event.Type,
		"recipients", len(recipients),
		"evicted", len(evicted),
	)
}

// evictStale removes every connection whose last heartbeat is older than the
// staleness threshold. A single hard check; there is no probing state.
func (h *Hub) evictStale() {
	cutoff := time.Now().Add(-h.cfg.StaleThreshold)

	h.mu.RLock()
	var stale []uuid.UUID
	for id, client := range h.clients {
		if client.LastSeen().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range stale {
		h.removeClient(id, domain.DisconnectStale)
	}
}

// closeAll tears down every connection on shutdown.
func (h *Hub) closeAll() {
	h.mu.RLock()
	ids := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.removeClient(id, domain.DisconnectClosed)
	}
}

// Stats returns a snapshot of the registry and queue for diagnostics.
func (h *Hub) Stats() domain.BroadcastStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cutoff := time.Now().Add(-h.cfg.StaleThreshold)
	stats := domain.BroadcastStats{
		TotalConnections: len(h.clients),
		QueueDepth:       len(h.broadcast),
	}
	for _, client := range h.clients {
		if client.Role == domain.RoleAdmin {
			stats.AdminConnections++
		} else {
			stats.UserConnections++
		}
		if !client.LastSeen().Before(cutoff) {
			stats.LiveConnections++
		}
	}
	return stats
}

// IsRegistered reports whether the connection id is still in the registry.
func (h *Hub) IsRegistered(id uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[id]
	return ok
}

func (h *Hub) recordConnect(client *Client) {
	if h.audit == nil {
		return
	}
	audit := &domain.ConnectionAudit{
		ConnectionID: client.ID,
		UserID:       client.Identity,
		Role:         client.Role,
		RemoteAddr:   client.RemoteAddr,
		ConnectedAt:  time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.audit.RecordConnect(ctx, audit); err != nil {
			h.logger.Warn("failed to record connect audit", "client_id", client.ID, "error", err)
		}
	}()
}

func (h *Hub) recordDisconnect(client *Client, reason domain.DisconnectReason) {
	if h.audit == nil {
		return
	}
	at := time.Now()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.audit.RecordDisconnect(ctx, client.ID, reason, at); err != nil {
			h.logger.Warn("failed to record disconnect audit", "client_id", client.ID, "error", err)
		}
	}()
}
