// Package hub fans outbox events out to connected waiting-room displays.
package hub

import (
	"encoding/json"
	"log"
	"sync"
)

type Subscription struct {
	ClinicID string
	DoctorID string
}

type Client struct {
	ID           string
	Send         chan []byte
	Subscription Subscription
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

type SubscribeMessage struct {
	Action   string `json:"action"`
	ClinicID string `json:"clinic_id"`
	DoctorID string `json:"doctor_id"`
}

func New() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) UpdateSubscription(client *Client, sub Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.Subscription = sub
}

// Broadcast delivers to every display whose subscription matches the event's
// clinic and doctor. Slow displays drop messages rather than block the loop.
func (h *Hub) Broadcast(payload []byte, meta Subscription) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !match(client.Subscription, meta) {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			log.Printf("drop message for display %s", client.ID)
		}
	}
}

func match(sub Subscription, meta Subscription) bool {
	if sub.ClinicID != "" && meta.ClinicID != sub.ClinicID {
		return false
	}
	if sub.DoctorID != "" && meta.DoctorID != sub.DoctorID {
		return false
	}
	return true
}

func ParseSubscribe(data []byte) (SubscribeMessage, bool) {
	var msg SubscribeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return SubscribeMessage{}, false
	}
	if msg.Action != "subscribe" && msg.Action != "unsubscribe" {
		return SubscribeMessage{}, false
	}
	return msg, true
}
