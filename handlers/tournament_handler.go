package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/services"
)

type TournamentHandler struct {
	tournamentService *services.TournamentService
}

func NewTournamentHandler(ts *services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// List godoc
// @Summary Список турниров со счётчиками слотов
// @Tags tournaments
// @Produce json
// @Param gameType query string false "bgmi | freefire"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Неизвестная игра"
// @Router /tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	var gameType *models.GameType
	if v := optionalQuery(r, "gameType"); v != nil {
		g := models.GameType(*v)
		gameType = &g
	}

	slots, err := h.tournamentService.List(r.Context(), gameType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusOK, "", jsonResponse{"tournaments": slots})
}

type updateTournamentRequest struct {
	GameType       string     `json:"gameType"`
	TournamentType string     `json:"tournamentType"`
	QRCodeURL      *string    `json:"qrCodeUrl,omitempty"`
	RoomID         *string    `json:"roomId,omitempty"`
	RoomPassword   *string    `json:"roomPassword,omitempty"`
	StartTime      *time.Time `json:"startTime,omitempty"`
	EndTime        *time.Time `json:"endTime,omitempty"`
}

// Update godoc
// @Summary Обновить настройки турнира
// @Tags tournaments
// @Description QR-код оплаты, данные комнаты и расписание. Счётчики и число слотов не меняются.
// @Accept json
// @Produce json
// @Param body body updateTournamentRequest true "Ключ турнира и изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Не указан ключ / неверные данные"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /tournaments [put]
func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input updateTournamentRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	key, err := parseKeyParams(input.GameType, input.TournamentType)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slot, err := h.tournamentService.UpdateConfig(r.Context(), key, models.TournamentConfigPatch{
		QRCodeURL:    input.QRCodeURL,
		RoomID:       input.RoomID,
		RoomPassword: input.RoomPassword,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusOK, "Tournament updated successfully", jsonResponse{"tournament": slot})
}

// Init godoc
// @Summary Создать недостающие турниры из каталога
// @Tags tournaments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /tournaments/init [post]
func (h *TournamentHandler) Init(w http.ResponseWriter, r *http.Request) {
	created, err := h.tournamentService.InitializeAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusOK, "Tournaments initialized", jsonResponse{"created": created, "count": len(created)})
}

type resetTournamentRequest struct {
	GameType       string `json:"gameType"`
	TournamentType string `json:"tournamentType"`
}

// Reset godoc
// @Summary Сбросить турнир
// @Tags tournaments
// @Description Удаляет все заявки турнира и обнуляет счётчики.
// @Accept json
// @Produce json
// @Param body body resetTournamentRequest true "Ключ турнира"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Не указан ключ"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /tournaments/reset [post]
func (h *TournamentHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var input resetTournamentRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	key, err := parseKeyParams(input.GameType, input.TournamentType)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	deleted, slot, err := h.tournamentService.Reset(r.Context(), key)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusOK, "Tournament reset successfully", jsonResponse{
		"deletedRegistrations": deleted,
		"tournament":           slot,
	})
}

// Reconcile godoc
// @Summary Пересчитать счётчики всех турниров
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /admin/reconcile [post]
func (h *TournamentHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	slots, err := h.tournamentService.ReconcileAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusOK, "Counters reconciled", jsonResponse{"tournaments": slots})
}
