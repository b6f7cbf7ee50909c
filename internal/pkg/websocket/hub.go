package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/yigit/footlink/internal/pkg/metrics"
)

// Event types pushed to clients
const (
	EventMessage     = "message"
	EventMessageRead = "message_read"
)

// Event is the envelope written to a user's sockets
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type delivery struct {
	userID int64
	data   []byte
}

// Hub tracks the live sockets of each user and fans events out to them
type Hub struct {
	// Registered clients keyed by user ID; one user may have several tabs open
	clients map[int64]map[*Client]bool

	deliver    chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		deliver:    make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "ws-hub").Logger(),
	}
}

// Run processes registrations and deliveries until ctx is cancelled,
// then closes every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.deliver:
			h.deliverToUser(d)
		}
	}
}

// Register adds client unless the hub has stopped
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client; a no-op once the hub has stopped
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	metrics.WSConnections.Inc()

	h.logger.Info().
		Int64("userID", client.userID).
		Int("sockets", len(h.clients[client.userID])).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel. Caller holds mu.
func (h *Hub) removeLocked(client *Client) {
	sockets, ok := h.clients[client.userID]
	if !ok || !sockets[client] {
		return
	}
	delete(sockets, client)
	close(client.send)
	metrics.WSConnections.Dec()
	if len(sockets) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info().Int64("userID", client.userID).Msg("Client unregistered")
}

func (h *Hub) deliverToUser(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sockets, ok := h.clients[d.userID]
	if !ok {
		h.logger.Debug().Int64("userID", d.userID).Msg("User has no live sockets")
		return
	}

	for client := range sockets {
		select {
		case client.send <- d.data:
			metrics.WSMessagesSent.Inc()
		default:
			// send buffer full: the client is too slow, drop it
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sockets := range h.clients {
		for client := range sockets {
			h.removeLocked(client)
		}
	}
	h.logger.Info().Msg("Hub stopped")
}

// SendToUser queues event for every socket of userID. It never blocks the caller;
// events are dropped when the hub is saturated.
func (h *Hub) SendToUser(userID int64, eventType string, payload any) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		h.logger.Error().Err(err).Str("type", eventType).Msg("Failed to marshal event")
		return
	}

	select {
	case h.deliver <- delivery{userID: userID, data: data}:
	default:
		h.logger.Warn().Int64("userID", userID).Str("type", eventType).Msg("Hub saturated, event dropped")
	}
}

// GetClientsCount returns the number of live sockets of userID
func (h *Hub) GetClientsCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
