package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/slot-arena/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler принимает те же origin, что и CORS; "*" разрешает любой.
func NewWebSocketHandler(hub *realtime.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		logger: logger,
	}
}

// ServeWs godoc
// @Summary Подписка на счётчики слотов
// @Tags realtime
// @Description /ws/tournaments получает все турниры, /ws/tournaments/{gameType}/{tournamentType} только один.
// @Param gameType path string false "bgmi | freefire"
// @Param tournamentType path string false "solo | duo | squad"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} map[string]string "Неверный ключ турнира"
// @Router /ws/tournaments/{gameType}/{tournamentType} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	room := realtime.RoomAll
	if gameType := chi.URLParam(r, "gameType"); gameType != "" {
		key, err := parseKeyParams(gameType, chi.URLParam(r, "tournamentType"))
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		room = key.String()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.Warn("failed to upgrade websocket connection", slog.String("room", room), slog.Any("error", err))
		return
	}

	client := realtime.NewClient(h.hub, conn, room)
	if !h.hub.Join(client) {
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
