package ws

import (
	"sync"

	"go.uber.org/zap"
)

// Hub tracks live connections per user.
//
// Layout is userID -> set of *Client. A user's entry is created with their
// first connection and removed with their last, so an idle user costs
// nothing and a user with several tabs or devices gets every signal on each
// of them.
//
// Registrations go through the register/unregister channels and are applied
// by the single Run goroutine; NotifyUser only takes the read lock, so a
// broadcast never waits on a slow registration. Every client's send channel
// is closed exactly once: by removeClient, by Shutdown, or by addClient when
// the hub is already shut down.
//
//	hub := ws.NewHub(log)
//	go hub.Run()
//	defer hub.Shutdown()
type Hub struct {
	clients map[string]map[*Client]bool
	mu      sync.RWMutex
	closed  bool // set by Shutdown under mu

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once

	log *zap.Logger

	onFirstConnect      func(userID string)
	onFullyDisconnected func(userID string)
}

// NewHub creates a hub. Call Run in its own goroutine before accepting
// connections.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// OnUserFirstConnect registers a callback run when a user goes from zero to
// one connection. Must be set before Run.
func (h *Hub) OnUserFirstConnect(fn func(userID string)) {
	h.onFirstConnect = fn
}

// OnUserFullyDisconnected registers a callback run when a user's last
// connection closes. Must be set before Run.
func (h *Hub) OnUserFullyDisconnected(fn func(userID string)) {
	h.onFullyDisconnected = fn
}

// Run serializes registrations until Shutdown.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Register adds client to the hub. It returns false after Shutdown.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Run may still pick up a registration that raced with Shutdown
	if h.closed {
		close(client.send)
		return
	}

	clients, ok := h.clients[client.userID]
	if !ok {
		clients = make(map[*Client]bool)
		h.clients[client.userID] = clients
		if h.onFirstConnect != nil {
			go h.onFirstConnect(client.userID)
		}
	}
	clients[client] = true

	h.log.Debug("client connected",
		zap.String("user_id", client.userID),
		zap.Int("connections", len(clients)),
	)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok || !clients[client] {
		return
	}

	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.clients, client.userID)
		if h.onFullyDisconnected != nil {
			go h.onFullyDisconnected(client.userID)
		}
		h.log.Debug("user fully disconnected", zap.String("user_id", client.userID))
		return
	}

	h.log.Debug("client disconnected",
		zap.String("user_id", client.userID),
		zap.Int("remaining", len(clients)),
	)
}

// NotifyUser sends SignalNewActivity to every connection of userID on this
// process. A connection whose send buffer is full is dropped; its client
// reconnects and re-fetches.
func (h *Hub) NotifyUser(userID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- []byte(SignalNewActivity):
		default:
			h.log.Warn("send buffer full, dropping connection", zap.String("user_id", userID))
			go h.unregisterClient(client)
		}
	}
}

// ConnectionCount returns the number of live connections of userID.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Shutdown closes every connection and stops Run. Safe to call twice.
// Clients registered after this point are closed on arrival.
func (h *Hub) Shutdown() {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		for _, clients := range h.clients {
			for client := range clients {
				close(client.send)
			}
		}
		h.clients = make(map[string]map[*Client]bool)
		h.mu.Unlock()

		close(h.done)
		h.log.Info("hub shut down, all connections closed")
	})
}
