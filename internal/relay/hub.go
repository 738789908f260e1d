package relay

import (
	"errors"
	"log"
	"sync"
)

// ErrDuplicateID reports a register attempt for an id that is already live.
// The port-derived id scheme should make this unreachable, but it is checked
// rather than assumed; the offending connection is rejected, not the registry.
var ErrDuplicateID = errors.New("relay: client id already registered")

const defaultQueueDepth = 16

// Hub is the authoritative record of connected clients and the broadcast
// fan-out over them. All map mutation and iteration happens under one lock,
// so a concurrent register, unregister, or broadcast never observes a
// half-applied change.
type Hub struct {
	mu      sync.RWMutex
	clients map[ClientID]*Client

	queueDepth int
	logger     *log.Logger
}

// Option customizes a Hub.
type Option func(*Hub)

// WithQueueDepth sets the per-client outbound queue capacity. Messages
// arriving while a client's queue is full are dropped for that client only.
func WithQueueDepth(depth int) Option {
	return func(h *Hub) {
		if depth > 0 {
			h.queueDepth = depth
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *log.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHub constructs an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[ClientID]*Client),
		queueDepth: defaultQueueDepth,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register inserts a new client with a fresh outbound channel and returns
// it. The caller is responsible for unregistering the client when its
// session ends.
func (h *Hub) Register(id ClientID) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[id]; ok {
		return nil, ErrDuplicateID
	}

	client := &Client{
		ID:   id,
		send: make(chan Message, h.queueDepth),
	}
	h.clients[id] = client
	return client, nil
}

// Unregister removes the client and closes its outbound channel. Calling it
// for an id that is absent, or calling it twice, is a no-op: disconnects may
// be detected on both the read and the write path.
func (h *Hub) Unregister(id ClientID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	// Closed under the lock so no in-flight broadcast can send on it.
	close(client.send)
}

// Broadcast queues msg text from sender onto every other registered client's
// outbound channel and reports how many clients it reached. A client whose
// queue is full is skipped; delivery to the rest is never blocked on it.
func (h *Hub) Broadcast(sender ClientID, text string) int {
	msg := Message{Sender: sender, Text: text}
	delivered := 0

	h.mu.RLock()
	for id, client := range h.clients {
		if id == sender {
			continue
		}
		if client.tryDeliver(msg) {
			delivered++
		}
	}
	h.mu.RUnlock()

	return delivered
}

// ClientCount returns the number of currently registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
