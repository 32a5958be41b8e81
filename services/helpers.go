package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/repositories"
)

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисного слоя.
func handleRepositoryError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrRegistrationNotPending):
		return ErrRegistrationAlreadyDecided
	case errors.Is(err, repositories.ErrRegistrationConflict):
		return &DuplicateRegistrationError{}
	case errors.Is(err, repositories.ErrRegistrationTournamentInvalid),
		errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrAdminNotFound):
		return ErrAdminNotFound
	case errors.Is(err, repositories.ErrAdminConflict):
		return ErrAdminConflict
	}
	if isServiceError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isServiceError reports whether err already belongs to this package's taxonomy.
func isServiceError(err error) bool {
	for _, target := range []error{
		ErrValidationFailed, ErrTournamentFull, ErrRegistrationConflict, ErrRegistrationAlreadyDecided,
		ErrRegistrationNotFound, ErrTournamentNotFound, ErrInvalidStatus, ErrInvalidTournamentKey, ErrInvalidConfigPatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ParseTournamentKey validates raw path or body values.
func ParseTournamentKey(gameType, tournamentType string) (models.TournamentKey, error) {
	key := models.TournamentKey{
		GameType:       models.GameType(strings.TrimSpace(gameType)),
		TournamentType: models.TournamentType(strings.TrimSpace(tournamentType)),
	}
	if !key.Valid() {
		return models.TournamentKey{}, ErrInvalidTournamentKey
	}
	return key, nil
}

func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// getExtensionFromContentType maps an image content type to a file extension.
func getExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && parts[0] == "image" && parts[1] != "" {
			// image/svg+xml -> .svg
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, contentType)
	}
}
