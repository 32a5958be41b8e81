package handlers

import (
	"net/http"

	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(s services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: s}
}

// Stats godoc
// @Summary Статистика заявок для админки
// @Tags admin
// @Produce json
// @Param gameType query string false "bgmi | freefire"
// @Param tournamentType query string false "solo | duo | squad"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Неверный фильтр"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var filter services.StatsFilter
	if v := optionalQuery(r, "gameType"); v != nil {
		g := models.GameType(*v)
		filter.GameType = &g
	}
	if v := optionalQuery(r, "tournamentType"); v != nil {
		t := models.TournamentType(*v)
		filter.TournamentType = &t
	}

	stats, err := h.dashboardService.GetStats(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusOK, "", jsonResponse{"stats": stats})
}
