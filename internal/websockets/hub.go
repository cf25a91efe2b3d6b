// Package websockets pushes reservation lifecycle events to connected
// dashboards. Admin consoles see everything, verifier stations see
// verification events, and public display boards see only the reduced
// verification summaries.
package websockets

import (
	"encoding/json"

	"go.uber.org/zap"
)

// ClientType identifies the audience a connection belongs to.
type ClientType string

const (
	ClientAdmin    ClientType = "admin"
	ClientVerifier ClientType = "verifier"
	ClientDisplay  ClientType = "display"
)

func ValidClientType(t ClientType) bool {
	switch t {
	case ClientAdmin, ClientVerifier, ClientDisplay:
		return true
	}
	return false
}

// EventType names the reservation lifecycle events pushed to clients.
type EventType string

const (
	EventReservationCreated  EventType = "reservation.created"
	EventReservationUpdated  EventType = "reservation.updated"
	EventReservationVerified EventType = "reservation.verified"
)

// Message is the wire format for pushed events.
type Message struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

type outbound struct {
	audiences []ClientType
	data      []byte
}

// Hub tracks active connections and fans events out to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 16),
		log:        log,
	}
}

// Run owns the client set; all mutation happens on this goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Info("websocket client connected",
				zap.String("type", string(client.clientType)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Info("websocket client disconnected",
					zap.String("type", string(client.clientType)))
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if !msg.targets(client.clientType) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer, drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

func (m outbound) targets(t ClientType) bool {
	for _, a := range m.audiences {
		if a == t {
			return true
		}
	}
	return false
}

// Broadcast queues an event for the given audiences. Marshal failures
// are logged and dropped; the feed is best effort.
func (h *Hub) Broadcast(event EventType, payload any, audiences ...ClientType) {
	data, err := json.Marshal(Message{Type: event, Payload: payload})
	if err != nil {
		h.log.Warn("failed to marshal websocket message", zap.Error(err))
		return
	}
	h.broadcast <- outbound{audiences: audiences, data: data}
}
