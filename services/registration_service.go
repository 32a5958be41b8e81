package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/slot-arena/metrics"
	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/repositories"
	"github.com/google/uuid"
)

// SlotInfo is the capacity summary returned with a new submission.
type SlotInfo struct {
	AvailableSlots  int `json:"availableSlots"`
	MaxSlots        int `json:"maxSlots"`
	CurrentCount    int `json:"currentCount"`
	RegisteredCount int `json:"registeredCount"`
}

type SubmissionResult struct {
	Registration *models.Registration `json:"registration"`
	SlotInfo     SlotInfo             `json:"slotInfo"`
}

// RegistrationService реализует приём заявок и решения администраторов.
type RegistrationService struct {
	registrations repositories.RegistrationRepository
	tournaments   *TournamentService
	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
}

func NewRegistrationService(store *repositories.Store, tournaments *TournamentService, logger *slog.Logger) *RegistrationService {
	return &RegistrationService{
		registrations: store.Registrations,
		tournaments:   tournaments,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         func() string { return uuid.NewString() },
	}
}

// Submit validates the input, then checks capacity and duplicates and inserts
// the registration while holding the slot lock.
func (s *RegistrationService) Submit(ctx context.Context, in RegistrationInput) (*SubmissionResult, error) {
	in.normalize()
	if err := ValidateRegistration(in); err != nil {
		game, format := metricLabels(in.GameType, in.TournamentType)
		metrics.RecordSubmission(game, format, "invalid")
		return nil, err
	}

	key := models.TournamentKey{GameType: models.GameType(in.GameType), TournamentType: models.TournamentType(in.TournamentType)}
	teamName := in.TeamName
	if teamName == "" {
		teamName = fmt.Sprintf("%s's Team", in.TeamLeader.Name)
	}
	players := in.Players
	if players == nil {
		players = []models.Player{}
	}
	reg := &models.Registration{
		ID:             s.newID(),
		GameType:       key.GameType,
		TournamentType: key.TournamentType,
		TeamName:       teamName,
		TeamLeader:     *in.TeamLeader,
		Players:        players,
		Payment:        *in.Payment,
		Status:         models.RegistrationPending,
	}

	slot, err := s.tournaments.withLockedSlot(ctx, key, func(ctx context.Context, slot *models.TournamentSlot) error {
		counts, err := s.registrations.CountByStatus(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to count registrations: %w", err)
		}
		if counts.Approved >= slot.MaxSlots {
			return &CapacityExceededError{AvailableSlots: 0, MaxSlots: slot.MaxSlots}
		}

		existing, err := s.registrations.FindActiveByLeader(ctx, key, reg.TeamLeader.GameID)
		switch {
		case err == nil:
			return &DuplicateRegistrationError{RegistrationID: existing.ID}
		case !errors.Is(err, repositories.ErrRegistrationNotFound):
			return fmt.Errorf("failed to check duplicate registration: %w", err)
		}

		reg.SubmittedAt = s.now()
		if err := s.registrations.Create(ctx, reg); err != nil {
			return err
		}
		return s.tournaments.recomputeLocked(ctx, slot)
	})
	if err != nil {
		err = handleRepositoryError(err, "submit registration")
		metrics.RecordSubmission(in.GameType, in.TournamentType, outcomeOf(err))
		return nil, err
	}

	metrics.RecordSubmission(in.GameType, in.TournamentType, "accepted")
	s.logger.InfoContext(ctx, "registration submitted",
		slog.String("registration_id", reg.ID),
		slog.String("key", key.String()),
		slog.Int("available_slots", slot.AvailableSlots),
	)

	return &SubmissionResult{
		Registration: reg,
		SlotInfo: SlotInfo{
			AvailableSlots:  slot.AvailableSlots,
			MaxSlots:        slot.MaxSlots,
			CurrentCount:    slot.ApprovedCount,
			RegisteredCount: slot.RegisteredCount,
		},
	}, nil
}

// metricLabels keeps label cardinality bounded for malformed input.
func metricLabels(gameType, tournamentType string) (string, string) {
	if !models.GameType(gameType).Valid() {
		gameType = "unknown"
	}
	if !models.TournamentType(tournamentType).Valid() {
		tournamentType = "unknown"
	}
	return gameType, tournamentType
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrTournamentFull):
		return "full"
	case errors.Is(err, ErrRegistrationConflict):
		return "duplicate"
	case errors.Is(err, ErrRegistrationAlreadyDecided):
		return "conflict"
	case errors.Is(err, ErrRegistrationNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTournamentKey):
		return "invalid"
	default:
		return "error"
	}
}

func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get registration")
	}
	return reg, nil
}

// List returns registrations, newest first.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]*models.Registration, error) {
	if filter.GameType != nil && !filter.GameType.Valid() {
		return nil, ErrInvalidTournamentKey
	}
	if filter.TournamentType != nil && !filter.TournamentType.Valid() {
		return nil, ErrInvalidTournamentKey
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	regs, err := s.registrations.List(ctx, filter)
	if err != nil {
		return nil, handleRepositoryError(err, "list registrations")
	}
	return regs, nil
}

// decide loads the registration, then re-reads and mutates it under the slot lock.
func (s *RegistrationService) decide(ctx context.Context, id string, status models.RegistrationStatus, mutate func(ctx context.Context, slot *models.TournamentSlot, reg *models.Registration) error) (*models.Registration, error) {
	current, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get registration")
	}
	if current.Status != models.RegistrationPending {
		metrics.RecordDecision(string(current.GameType), string(current.TournamentType), string(status), "conflict")
		return nil, ErrRegistrationAlreadyDecided
	}

	var updated *models.Registration
	_, err = s.tournaments.withLockedSlot(ctx, current.Key(), func(ctx context.Context, slot *models.TournamentSlot) error {
		reg, err := s.registrations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if reg.Status != models.RegistrationPending {
			return ErrRegistrationAlreadyDecided
		}
		if err := mutate(ctx, slot, reg); err != nil {
			return err
		}
		if err := s.registrations.UpdateDecision(ctx, reg); err != nil {
			return err
		}
		updated = reg
		return s.tournaments.recomputeLocked(ctx, slot)
	})
	if err != nil {
		err = handleRepositoryError(err, "decide registration")
		metrics.RecordDecision(string(current.GameType), string(current.TournamentType), string(status), outcomeOf(err))
		return nil, err
	}

	metrics.RecordDecision(string(updated.GameType), string(updated.TournamentType), string(status), "applied")
	return updated, nil
}

// Approve admits a pending registration when a slot is still free.
func (s *RegistrationService) Approve(ctx context.Context, id, adminIdentity string) (*models.Registration, error) {
	reg, err := s.decide(ctx, id, models.RegistrationApproved, func(ctx context.Context, slot *models.TournamentSlot, reg *models.Registration) error {
		counts, err := s.registrations.CountByStatus(ctx, slot.Key())
		if err != nil {
			return fmt.Errorf("failed to count registrations: %w", err)
		}
		if counts.Approved >= slot.MaxSlots {
			return &CapacityExceededError{AvailableSlots: 0, MaxSlots: slot.MaxSlots}
		}
		now := s.now()
		reg.Status = models.RegistrationApproved
		reg.ApprovedAt = &now
		reg.ApprovedBy = optionalString(&adminIdentity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "registration approved", slog.String("registration_id", id), slog.String("admin", adminIdentity))
	return reg, nil
}

// Reject declines a pending registration. An empty reason is stored as absent.
func (s *RegistrationService) Reject(ctx context.Context, id string, reason *string, adminIdentity string) (*models.Registration, error) {
	reg, err := s.decide(ctx, id, models.RegistrationRejected, func(_ context.Context, _ *models.TournamentSlot, reg *models.Registration) error {
		now := s.now()
		reg.Status = models.RegistrationRejected
		reg.RejectionReason = optionalString(reason)
		reg.RejectedAt = &now
		reg.RejectedBy = optionalString(&adminIdentity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "registration rejected", slog.String("registration_id", id), slog.String("admin", adminIdentity))
	return reg, nil
}

// Decide dispatches a PATCH body. Only approved and rejected are accepted targets.
func (s *RegistrationService) Decide(ctx context.Context, id, status string, reason *string, adminIdentity string) (*models.Registration, error) {
	switch models.RegistrationStatus(strings.TrimSpace(status)) {
	case models.RegistrationApproved:
		return s.Approve(ctx, id, adminIdentity)
	case models.RegistrationRejected:
		return s.Reject(ctx, id, reason, adminIdentity)
	default:
		return nil, ErrInvalidStatus
	}
}

// Delete removes a registration in any status and recomputes its slot.
func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return handleRepositoryError(err, "get registration")
	}

	_, err = s.tournaments.withLockedSlot(ctx, reg.Key(), func(ctx context.Context, slot *models.TournamentSlot) error {
		if err := s.registrations.Delete(ctx, id); err != nil {
			return err
		}
		return s.tournaments.recomputeLocked(ctx, slot)
	})
	if err != nil {
		return handleRepositoryError(err, "delete registration")
	}
	s.logger.InfoContext(ctx, "registration deleted", slog.String("registration_id", id), slog.String("key", reg.Key().String()))
	return nil
}
