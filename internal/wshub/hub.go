package wshub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"gameshow/internal/cues"

	"github.com/coder/websocket"
)

// ServerMessage is the JSON structure sent to host consoles.
type ServerMessage struct {
	Type    string    `json:"t"`
	Cue     *cues.Cue `json:"cue,omitempty"`
	CanUndo *bool     `json:"canUndo,omitempty"`
	Paused  *bool     `json:"paused,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub holds the host console connections of one session.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.Send)
		delete(h.clients, id)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every client. Non-blocking: drops if a channel is full.
func (h *Hub) Broadcast(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("wshub marshal", "type", msg.Type, "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

// PlayCue forwards a sound cue to every console.
func (h *Hub) PlayCue(c cues.Cue) {
	h.Broadcast(ServerMessage{Type: "cue", Cue: &c})
}

// UndoState tells consoles whether the undo button should be enabled.
func (h *Hub) UndoState(canUndo bool) {
	h.Broadcast(ServerMessage{Type: "undo", CanUndo: &canUndo})
}

// PauseState tells consoles whether the game is paused.
func (h *Hub) PauseState(paused bool) {
	h.Broadcast(ServerMessage{Type: "pause", Paused: &paused})
}
