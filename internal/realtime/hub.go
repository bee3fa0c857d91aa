package realtime

import (
	"log/slog"
	"sync"
)

// Hub tracks connected clients and their channel subscriptions, and fans
// events out to them. Delivery is best-effort: a client whose send queue is
// full loses the event rather than stalling the broadcaster.
type Hub struct {
	log *slog.Logger

	mu       sync.RWMutex
	clients  map[*Client]struct{}
	channels map[string]map[*Client]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:      log,
		clients:  make(map[*Client]struct{}),
		channels: make(map[string]map[*Client]struct{}),
	}
}

// Register adds a client to the broadcast set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// Subscribe adds the client to a named channel.
func (h *Hub) Subscribe(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[*Client]struct{})
		h.channels[channel] = subs
	}
	subs[c] = struct{}{}
}

// Unsubscribe removes the client from a named channel.
func (h *Hub) Unsubscribe(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromChannel(c, channel)
}

// Drop removes the client from the broadcast set and every channel. Called
// once when the connection terminates, before Client.Close.
func (h *Hub) Drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	for channel := range h.channels {
		h.removeFromChannel(c, channel)
	}
}

func (h *Hub) removeFromChannel(c *Client, channel string) {
	subs, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.channels, channel)
	}
}

// Route delivers one event: to every client when the event has no channel,
// otherwise to that channel's subscribers.
func (h *Hub) Route(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.clients
	if ev.Channel != "" {
		targets = h.channels[ev.Channel]
	}
	for c := range targets {
		select {
		case c.Send <- ev:
		case <-c.Done():
		default:
			h.log.Warn("realtime send queue full, dropping event",
				"client_id", c.ID, "event", ev.Type, "channel", ev.Channel)
		}
	}
}
