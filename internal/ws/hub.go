package ws

import (
	"context"
	"sync"

	"chatcore-service/internal/observability"
)

// Hub is the bidirectional index between rooms and live connections:
// room -> subscribed clients, and client -> joined rooms. Both sides are
// kept in lockstep under one mutex.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[int]map[*Client]bool
	joined map[*Client]map[int]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[int]map[*Client]bool),
		joined: make(map[*Client]map[int]bool),
	}
}

// Register tracks a freshly authenticated connection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joined[c] = make(map[int]bool)
}

// Unregister removes the connection from every room and closes its send
// channel. It returns the rooms the connection was subscribed to, and is a
// no-op for connections already gone.
func (h *Hub) Unregister(c *Client) []int {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomSet, ok := h.joined[c]
	if !ok {
		return nil
	}

	rooms := make([]int, 0, len(roomSet))
	for roomID := range roomSet {
		rooms = append(rooms, roomID)
		h.removeFromRoom(roomID, c)
	}
	delete(h.joined, c)
	c.closeSend()
	return rooms
}

// Join subscribes the connection to a room's broadcast group.
func (h *Hub) Join(roomID int, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomSet, ok := h.joined[c]
	if !ok {
		return
	}
	roomSet[roomID] = true

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
}

// Leave unsubscribes the connection from a room. It reports whether the
// connection was actually subscribed, so callers can keep leave idempotent
// without broadcasting spurious departures.
func (h *Hub) Leave(roomID int, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomSet, ok := h.joined[c]
	if !ok || !roomSet[roomID] {
		return false
	}
	delete(roomSet, roomID)
	h.removeFromRoom(roomID, c)
	return true
}

// InRoom reports whether the connection is subscribed to the room.
func (h *Hub) InRoom(roomID int, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	roomSet, ok := h.joined[c]
	return ok && roomSet[roomID]
}

// Broadcast fans an event out to every connection subscribed to the room,
// including all of the sender's own connections.
func (h *Hub) Broadcast(roomID int, evt Outbound) {
	h.fanOut(roomID, nil, evt)
}

// BroadcastExcept fans an event out to the room, skipping one connection.
func (h *Hub) BroadcastExcept(roomID int, except *Client, evt Outbound) {
	h.fanOut(roomID, except, evt)
}

func (h *Hub) fanOut(roomID int, except *Client, evt Outbound) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.Send(evt) {
			// Send buffer full means the peer stopped draining; drop it.
			h.drop(c)
		}
	}
}

// drop evicts a connection that stopped draining its send buffer. Peers in
// its rooms get the same user_left an orderly disconnect produces, so a slow
// consumer never vanishes silently.
func (h *Hub) drop(c *Client) {
	rooms := h.Unregister(c)
	if len(rooms) == 0 {
		return
	}

	info := c.Info()
	observability.IncWSEvent("ws_evict")
	_ = observability.PublishEvent(context.Background(), "ws_events.chats", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_evict",
		Payload: map[string]interface{}{
			"conn_id":  info.ConnID,
			"user_id":  info.UserID,
			"username": info.Username,
			"rooms":    rooms,
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))

	for _, roomID := range rooms {
		h.Broadcast(roomID, UserLeftEvent(Presence{
			UserID: info.UserID, Username: info.Username, ChatRoomID: roomID,
		}))
	}
}

func (h *Hub) removeFromRoom(roomID int, c *Client) {
	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}
