package services

import (
	"errors"
	"fmt"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrAdminNotFound        = errors.New("admin not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrTournamentFull       = errors.New("tournament is full")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidTournamentKey = errors.New("valid game type and tournament type are required")
	ErrInvalidConfigPatch   = errors.New("invalid tournament configuration")
	ErrFileTooLarge         = errors.New("file size exceeds 5MB limit")
	ErrUnsupportedFileType  = errors.New("only image files are allowed")
	ErrFileRequired         = errors.New("no file provided")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrUsernameRequired     = errors.New("username and password are required")

	// Ошибки конфликтов
	ErrRegistrationConflict       = errors.New("you have already registered for this tournament")
	ErrRegistrationAlreadyDecided = errors.New("registration has already been decided")
	ErrAdminExists                = errors.New("admin already exists")
	ErrAdminConflict              = errors.New("admin username or email already taken")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid username or password")
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current admin")
)

// ValidationError carries every structural problem found in a submission.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(e.Messages, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// CapacityExceededError is returned when every slot of a tournament is taken.
type CapacityExceededError struct {
	AvailableSlots int
	MaxSlots       int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s: %d of %d slots available", ErrTournamentFull, e.AvailableSlots, e.MaxSlots)
}

func (e *CapacityExceededError) Unwrap() error { return ErrTournamentFull }

// DuplicateRegistrationError references the active registration of the same leader.
type DuplicateRegistrationError struct {
	RegistrationID string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("%s (registration %s)", ErrRegistrationConflict, e.RegistrationID)
}

func (e *DuplicateRegistrationError) Unwrap() error { return ErrRegistrationConflict }
