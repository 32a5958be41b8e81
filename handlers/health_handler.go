package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dosada05/slot-arena/repositories"
)

type HealthHandler struct {
	store   repositories.Pinger
	driver  string
	started time.Time
}

func NewHealthHandler(store repositories.Pinger, driver string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver, started: time.Now()}
}

// Health godoc
// @Summary Проверка состояния сервиса и хранилища
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := jsonResponse{
		"store":     h.driver,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	}
	if err := h.store.Ping(ctx); err != nil {
		body["database"] = "disconnected"
		errorResponse(w, r, http.StatusServiceUnavailable, "Store is unavailable", body)
		return
	}
	body["database"] = "connected"
	okResponse(w, r, http.StatusOK, "Server is healthy", body)
}
