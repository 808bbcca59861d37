package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is the envelope pushed to websocket subscribers.
type Message struct {
	Type    string      `json:"type"` // "CALENDAR_FINALIZED", "PROFILE_INGESTED"
	Payload interface{} `json:"payload"`
	Topic   string      `json:"topic,omitempty"`
}

// Hub fans protocol events out to websocket clients grouped by topic.
// Clients only listen; inbound frames beyond control messages are
// dropped.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	topics map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		topics:     make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.topics[client.Topic]; !ok {
				h.topics[client.Topic] = make(map[*Client]bool)
			}
			h.topics[client.Topic][client] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client registered", slog.String("topic", client.Topic))

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.topics[client.Topic]; ok {
				if _, known := clients[client]; known {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.topics, client.Topic)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("websocket client unregistered", slog.String("topic", client.Topic))
		}
	}
}

// BroadcastEvent pushes an event to every connected client regardless of
// topic. Slow clients are skipped, not waited on.
func (h *Hub) BroadcastEvent(eventType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.topics {
		for client := range clients {
			client.trySend(data)
		}
	}
}

// BroadcastToTopic pushes an event to one topic's subscribers only.
func (h *Hub) BroadcastToTopic(topic, eventType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: eventType, Payload: payload, Topic: topic})
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.topics[topic] {
		client.trySend(data)
	}
}
