package tcp

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/flipseven-go/internal/model"
)

// message is one line for a single member, or for everyone when to is zero
type message struct {
	to   model.MemberID
	line string
}

// Hub fans protocol lines out to connected clients. All sends go through
// one loop, so lines reach each client in the order they were sent.
type Hub struct {
	clients map[model.MemberID]*Client
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan *Client
	unregister chan *Client
	messages   chan message
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[model.MemberID]*Client),
		logger:     logger.With(slog.String("component", "tcp-hub")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		messages:   make(chan message),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client registered",
				slog.String("member", client.Tag()),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client.id] == client {
				delete(h.clients, client.id)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("client unregistered",
					slog.String("member", client.Tag()),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case msg := <-h.messages:
			h.mu.RLock()
			if msg.to != 0 {
				if client, ok := h.clients[msg.to]; ok {
					h.deliver(client, msg.line)
				}
			} else {
				for _, client := range h.clients {
					h.deliver(client, msg.line)
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

func (h *Hub) deliver(client *Client, line string) {
	select {
	case client.send <- line:
	default:
		h.logger.Warn("line dropped - client buffer full",
			slog.String("member", client.Tag()))
	}
}

// Register adds a client to the hub. It returns false once the hub is closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub and closes its send queue
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends a line to every client
func (h *Hub) Broadcast(line string) {
	h.post(message{line: line})
}

// Send sends a line to one member
func (h *Hub) Send(id model.MemberID, line string) {
	h.post(message{to: id, line: line})
}

func (h *Hub) post(msg message) {
	select {
	case h.messages <- msg:
	case <-h.done:
	}
}

// Close shuts down the hub, disconnecting every client
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
