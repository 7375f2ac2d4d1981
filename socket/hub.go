package socket

import (
	"context"
	"encoding/json"

	"tablestore/pkg/logger"
)

const (
	SubscribedType = "SUBSCRIBED" // Sent once the subscription is registered
	UpdateType     = "UPDATE"     // Table created or changed, payload is the record
	DeleteType     = "DELETE"     // Table deleted, payload is the removed record
)

type Event struct {
	Type    string          `json:"type"`
	TableID string          `json:"table_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans table events out to the websocket clients subscribed to that
// table. Rooms are only touched by the Run goroutine.
type Hub struct {
	rooms      map[string]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan Event),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and events until ctx is canceled, then closes
// every subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for tableID, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, tableID)
			}
			return

		case client := <-h.register:
			if h.rooms[client.tableID] == nil {
				h.rooms[client.tableID] = make(map[*Client]bool)
			}
			h.rooms[client.tableID][client] = true
			ack, _ := json.Marshal(Event{Type: SubscribedType, TableID: client.tableID})
			client.send <- ack

		case client := <-h.unregister:
			h.remove(client)

		case ev := <-h.broadcast:
			clients := h.rooms[ev.TableID]
			if len(clients) == 0 {
				continue
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling %s event for table %s: %v", ev.Type, ev.TableID, err)
				continue
			}
			for client := range clients {
				select {
				case client.send <- payload:
				default:
					logger.Sugar.Warnf("Subscriber of table %s is lagging, dropping it", ev.TableID)
					h.remove(client)
				}
			}
		}
	}
}

// Publish hands ev to the hub. It returns immediately once the hub stopped.
func (h *Hub) Publish(ev Event) {
	select {
	case h.broadcast <- ev:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.tableID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.tableID)
	}
}
