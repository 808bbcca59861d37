package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/skyblock-api/live"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: ограничить по списку разрешенных доменов из конфига
		return true
	},
}

type WebSocketHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeEvents подключает клиента к общему потоку событий (финализация
// календаря, новые снапшоты).
func (h *WebSocketHandler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = "events"
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту.
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &live.Client{
		Hub:   h.hub,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		Topic: topic,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
