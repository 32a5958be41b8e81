package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/services"
)

// multipart-обёртка поверх лимита самого файла
const multipartOverhead = 1 << 20

type UploadHandler struct {
	uploadService     services.UploadService
	tournamentService *services.TournamentService
}

func NewUploadHandler(us services.UploadService, ts *services.TournamentService) *UploadHandler {
	return &UploadHandler{uploadService: us, tournamentService: ts}
}

// UploadPayment godoc
// @Summary Загрузить скриншот оплаты
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Изображение до 5MB"
// @Success 201 {object} map[string]interface{} "URL загруженного файла"
// @Failure 400 {object} map[string]string "Нет файла / не изображение / больше 5MB"
// @Failure 429 {object} map[string]string "Слишком много запросов"
// @Router /upload [post]
func (h *UploadHandler) UploadPayment(w http.ResponseWriter, r *http.Request) {
	file, header, err := formImage(w, r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	defer file.Close()

	result, err := h.uploadService.UploadImage(r.Context(), services.FolderPayments, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusCreated, "File uploaded successfully", jsonResponse{
		"url": result.Location,
		"key": result.Key,
	})
}

// UploadQRCode godoc
// @Summary Загрузить QR-код оплаты турнира
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Изображение до 5MB"
// @Param gameType formData string true "bgmi | freefire"
// @Param tournamentType formData string true "solo | duo | squad"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Нет файла / неверный ключ турнира"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /admin/qr-code [post]
func (h *UploadHandler) UploadQRCode(w http.ResponseWriter, r *http.Request) {
	file, header, err := formImage(w, r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	defer file.Close()

	key, err := parseKeyParams(r.FormValue("gameType"), r.FormValue("tournamentType"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.uploadService.UploadImage(r.Context(), services.FolderQRCodes, key.String()+"-"+header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}

	slot, err := h.tournamentService.UpdateConfig(r.Context(), key, models.TournamentConfigPatch{QRCodeURL: &result.Location})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusCreated, "QR code uploaded successfully", jsonResponse{
		"url":        result.Location,
		"tournament": slot,
	})
}

func formImage(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(services.MaxUploadSize); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return nil, nil, services.ErrFileTooLarge
		}
		return nil, nil, services.ErrFileRequired
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, services.ErrFileRequired
	}
	if header.Size > services.MaxUploadSize {
		file.Close()
		return nil, nil, services.ErrFileTooLarge
	}
	return file, header, nil
}
