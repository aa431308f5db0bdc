package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/swingscope/internal/app"
	"github.com/ayusman/swingscope/internal/swing"
)

// Per-client outbound buffer. A client that falls this far behind is dropped.
const clientBuffer = 16

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventMessage is the websocket payload for one runner event.
type EventMessage struct {
	Type       string         `json:"type"`
	SessionID  string         `json:"sessionId,omitempty"`
	AnalysisID string         `json:"analysisId,omitempty"`
	Summary    *swing.Summary `json:"summary,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// NewEventMessage builds the compact websocket form of ev.
func NewEventMessage(ev app.Event) EventMessage {
	msg := EventMessage{
		Type:      ev.Type,
		SessionID: ev.SessionID,
		Error:     ev.Error,
	}
	if ev.Analysis != nil {
		msg.AnalysisID = ev.Analysis.ID
		if ev.Analysis.Result != nil {
			summary := ev.Analysis.Result.Summary
			msg.Summary = &summary
		}
	}
	return msg
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// EventHub relays runner events to websocket clients.
type EventHub struct {
	clients map[*client]bool
	mu      sync.RWMutex
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*client]bool)}
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends ev to every connected client without blocking.
func (h *EventHub) Publish(ev app.Event) {
	msg, err := json.Marshal(NewEventMessage(ev))
	if err != nil {
		log.Printf("event encode error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go h.writeLoop(c)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
}

func (h *EventHub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *EventHub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
