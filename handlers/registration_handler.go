package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/slot-arena/middleware"
	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/services"
	"github.com/go-chi/chi/v5"
)

type RegistrationHandler struct {
	registrationService *services.RegistrationService
}

func NewRegistrationHandler(rs *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: rs}
}

// Submit godoc
// @Summary Подать заявку на турнир
// @Tags registrations
// @Description Игрок отправляет заявку; проверяются формат данных, свободные слоты и повторная регистрация.
// @Accept json
// @Produce json
// @Param body body services.RegistrationInput true "Данные заявки"
// @Success 201 {object} map[string]interface{} "Заявка создана, ожидает одобрения"
// @Failure 400 {object} map[string]interface{} "Ошибки валидации / турнир заполнен / повторная заявка"
// @Failure 429 {object} map[string]string "Слишком много запросов"
// @Router /registrations [post]
func (h *RegistrationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input services.RegistrationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.registrationService.Submit(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusBadRequest)
		return
	}

	okResponse(w, r, http.StatusCreated, "Registration submitted successfully! Waiting for admin approval.", jsonResponse{
		"registration": result.Registration,
		"slotInfo":     result.SlotInfo,
	})
}

// List godoc
// @Summary Список заявок
// @Tags registrations
// @Produce json
// @Param gameType query string false "bgmi | freefire"
// @Param tournamentType query string false "solo | duo | squad"
// @Param status query string false "pending | approved | rejected"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Неверный фильтр"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /registrations [get]
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter models.RegistrationFilter
	if v := optionalQuery(r, "gameType"); v != nil {
		g := models.GameType(*v)
		filter.GameType = &g
	}
	if v := optionalQuery(r, "tournamentType"); v != nil {
		t := models.TournamentType(*v)
		filter.TournamentType = &t
	}
	if v := optionalQuery(r, "status"); v != nil {
		s := models.RegistrationStatus(*v)
		filter.Status = &s
	}

	regs, err := h.registrationService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusOK, "", jsonResponse{"registrations": regs, "count": len(regs)})
}

// Get godoc
// @Summary Получить заявку по ID
// @Tags registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Заявка не найдена"
// @Router /registrations/{id} [get]
func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registrationService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusOK, "", jsonResponse{"registration": reg})
}

type decideRequest struct {
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejectionReason,omitempty"`
}

// Decide godoc
// @Summary Одобрить или отклонить заявку
// @Tags registrations
// @Description Переход возможен только из pending. Одобрение проверяет свободные слоты.
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param body body decideRequest true "approved | rejected и причина отказа"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Неверный статус"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Заявка не найдена"
// @Failure 409 {object} map[string]interface{} "Решение уже принято / турнир заполнен"
// @Security BearerAuth
// @Router /registrations/{id} [patch]
func (h *RegistrationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	admin, err := middleware.GetAdminFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input decideRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// право зависит от целевого статуса, поэтому проверяется здесь, а не в роутере
	switch models.RegistrationStatus(input.Status) {
	case models.RegistrationApproved:
		if !admin.Can(models.PermApproveRegistration) {
			forbiddenResponse(w, r, fmt.Sprintf("permission %q required", models.PermApproveRegistration))
			return
		}
	case models.RegistrationRejected:
		if !admin.Can(models.PermRejectRegistration) {
			forbiddenResponse(w, r, fmt.Sprintf("permission %q required", models.PermRejectRegistration))
			return
		}
	}

	reg, err := h.registrationService.Decide(r.Context(), chi.URLParam(r, "id"), input.Status, input.RejectionReason, admin.Username)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusOK, fmt.Sprintf("Registration %s successfully", reg.Status), jsonResponse{"registration": reg})
}

// Delete godoc
// @Summary Удалить заявку
// @Tags registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Заявка не найдена"
// @Security BearerAuth
// @Router /registrations/{id} [delete]
func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.registrationService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusOK, "Registration deleted successfully", nil)
}
