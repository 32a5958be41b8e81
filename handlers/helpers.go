package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// errorResponse пишет {"success": false, "message": ...} и дополнительные поля.
func errorResponse(w http.ResponseWriter, r *http.Request, status int, message string, extra jsonResponse) {
	env := jsonResponse{"success": false, "message": message}
	for k, v := range extra {
		env[k] = v
	}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message, nil)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, capitalize(err.Error()), nil)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusNotFound, message, nil)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message, nil)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message, nil)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message, nil)
}

func okResponse(w http.ResponseWriter, r *http.Request, status int, message string, data jsonResponse) {
	env := jsonResponse{"success": true}
	if message != "" {
		env["message"] = message
	}
	for k, v := range data {
		env[k] = v
	}
	if err := writeJSON(w, status, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
// fullStatus задаёт код для заполненного турнира: 400 при подаче заявки, 409 при одобрении.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error, fullStatus int) {
	var validationErr *services.ValidationError
	var capacityErr *services.CapacityExceededError
	var duplicateErr *services.DuplicateRegistrationError

	switch {
	case errors.As(err, &validationErr):
		errorResponse(w, r, http.StatusBadRequest, "Validation failed", jsonResponse{"errors": validationErr.Messages})

	case errors.As(err, &capacityErr):
		errorResponse(w, r, fullStatus, "Tournament is full", jsonResponse{
			"availableSlots": capacityErr.AvailableSlots,
			"maxSlots":       capacityErr.MaxSlots,
		})

	case errors.As(err, &duplicateErr):
		extra := jsonResponse{}
		if duplicateErr.RegistrationID != "" {
			extra["registrationId"] = duplicateErr.RegistrationID
		}
		errorResponse(w, r, http.StatusBadRequest, "You have already registered for this tournament", extra)

	// Ресурс не найден
	case errors.Is(err, services.ErrRegistrationNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrAdminNotFound):
		notFoundResponse(w, r, capitalize(err.Error()))

	// Конфликты
	case errors.Is(err, services.ErrRegistrationAlreadyDecided),
		errors.Is(err, services.ErrAdminExists),
		errors.Is(err, services.ErrAdminConflict):
		conflictResponse(w, r, capitalize(err.Error()))

	// Невалидные данные
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidTournamentKey),
		errors.Is(err, services.ErrInvalidConfigPatch),
		errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrUnsupportedFileType),
		errors.Is(err, services.ErrFileRequired),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrUsernameRequired):
		errorResponse(w, r, http.StatusBadRequest, capitalize(err.Error()), nil)

	// Ошибки авторизации/доступа
	case errors.Is(err, services.ErrAuthInvalidCredentials),
		errors.Is(err, services.ErrAuthenticationFailed):
		unauthorizedResponse(w, r, capitalize(err.Error()))
	case errors.Is(err, services.ErrForbiddenOperation):
		forbiddenResponse(w, r, capitalize(err.Error()))

	default:
		serverErrorResponse(w, r, err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseKeyParams(gameType, tournamentType string) (models.TournamentKey, error) {
	if strings.TrimSpace(gameType) == "" || strings.TrimSpace(tournamentType) == "" {
		return models.TournamentKey{}, errors.New("game type and tournament type are required")
	}
	return services.ParseTournamentKey(gameType, tournamentType)
}

// optionalQuery returns nil for an absent or empty query parameter.
func optionalQuery(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}
