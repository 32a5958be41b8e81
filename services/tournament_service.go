package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/slot-arena/metrics"
	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/repositories"
	"golang.org/x/sync/errgroup"
)

// SlotPublisher receives every slot whose counters or configuration changed.
type SlotPublisher interface {
	PublishSlot(slot *models.TournamentSlot)
}

type noopPublisher struct{}

func (noopPublisher) PublishSlot(*models.TournamentSlot) {}

// TournamentService владеет слотами турниров и их счётчиками.
// Счётчики пишутся только отсюда.
type TournamentService struct {
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	tx            repositories.Transactor
	publisher     SlotPublisher
	logger        *slog.Logger
	now           func() time.Time
}

func NewTournamentService(store *repositories.Store, publisher SlotPublisher, logger *slog.Logger) *TournamentService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &TournamentService{
		tournaments:   store.Tournaments,
		registrations: store.Registrations,
		tx:            store.Tx,
		publisher:     publisher,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate returns the slot for key, seeding it from the catalog on first access.
// A concurrent create that loses the race re-reads the winner's row.
func (s *TournamentService) GetOrCreate(ctx context.Context, key models.TournamentKey) (*models.TournamentSlot, error) {
	cfg, ok := models.LookupSlotConfig(key)
	if !ok {
		return nil, ErrInvalidTournamentKey
	}

	slot, err := s.tournaments.GetByKey(ctx, key)
	if err == nil {
		return slot, nil
	}
	if !errors.Is(err, repositories.ErrTournamentNotFound) {
		return nil, fmt.Errorf("failed to get tournament %s: %w", key, err)
	}

	slot = models.NewTournamentSlot(key, cfg, s.now())
	err = s.tournaments.Create(ctx, slot)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "tournament slot created", slog.String("key", key.String()), slog.Int("max_slots", slot.MaxSlots))
		return slot, nil
	case errors.Is(err, repositories.ErrTournamentExists):
		return s.tournaments.GetByKey(ctx, key)
	default:
		return nil, fmt.Errorf("failed to create tournament %s: %w", key, err)
	}
}

// recomputeLocked rewrites the counters of a slot already locked by the caller's transaction.
func (s *TournamentService) recomputeLocked(ctx context.Context, slot *models.TournamentSlot) error {
	counts, err := s.registrations.CountByStatus(ctx, slot.Key())
	if err != nil {
		return fmt.Errorf("failed to count registrations: %w", err)
	}
	slot.ApplyCounts(counts)
	if err := s.tournaments.SaveCounters(ctx, slot); err != nil {
		return fmt.Errorf("failed to save counters: %w", err)
	}
	return nil
}

// published records metrics and notifies subscribers after a committed change.
func (s *TournamentService) published(slot *models.TournamentSlot) {
	metrics.RecordSlotCounters(string(slot.GameType), string(slot.TournamentType), slot.ApprovedCount, slot.AvailableSlots)
	s.publisher.PublishSlot(slot)
}

// withLockedSlot ensures the slot exists, then runs fn inside a transaction holding its lock.
func (s *TournamentService) withLockedSlot(ctx context.Context, key models.TournamentKey, fn func(ctx context.Context, slot *models.TournamentSlot) error) (*models.TournamentSlot, error) {
	if _, err := s.GetOrCreate(ctx, key); err != nil {
		return nil, err
	}

	var locked *models.TournamentSlot
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		slot, err := s.tournaments.Lock(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to lock tournament %s: %w", key, err)
		}
		if err := fn(ctx, slot); err != nil {
			return err
		}
		locked = slot
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.published(locked)
	return locked, nil
}

// RecomputeCounters re-derives the cached counters from the registrations. Idempotent.
func (s *TournamentService) RecomputeCounters(ctx context.Context, key models.TournamentKey) (*models.TournamentSlot, error) {
	slot, err := s.withLockedSlot(ctx, key, s.recomputeLocked)
	if err != nil {
		return nil, handleRepositoryError(err, "recompute counters")
	}
	return slot, nil
}

// List returns every slot (optionally of one game) with freshly recomputed counters.
func (s *TournamentService) List(ctx context.Context, gameType *models.GameType) ([]*models.TournamentSlot, error) {
	if gameType != nil && !gameType.Valid() {
		return nil, ErrInvalidTournamentKey
	}
	for _, key := range models.AllTournamentKeys() {
		if gameType != nil && key.GameType != *gameType {
			continue
		}
		if _, err := s.RecomputeCounters(ctx, key); err != nil {
			return nil, err
		}
	}
	slots, err := s.tournaments.List(ctx, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return slots, nil
}

// UpdateConfig applies an admin patch. Counters and capacity are never touched here.
func (s *TournamentService) UpdateConfig(ctx context.Context, key models.TournamentKey, patch models.TournamentConfigPatch) (*models.TournamentSlot, error) {
	if !key.Valid() {
		return nil, ErrInvalidTournamentKey
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidConfigPatch)
	}

	slot, err := s.withLockedSlot(ctx, key, func(ctx context.Context, slot *models.TournamentSlot) error {
		patch.Apply(slot)
		if slot.StartTime != nil && slot.EndTime != nil && !slot.EndTime.After(*slot.StartTime) {
			return fmt.Errorf("%w: end time must be after start time", ErrInvalidConfigPatch)
		}
		return s.tournaments.Save(ctx, slot)
	})
	if err != nil {
		return nil, handleRepositoryError(err, "update tournament config")
	}
	s.logger.InfoContext(ctx, "tournament config updated", slog.String("key", key.String()))
	return slot, nil
}

// Reset deletes every registration of the slot and restores its defaults in one transaction.
func (s *TournamentService) Reset(ctx context.Context, key models.TournamentKey) (int64, *models.TournamentSlot, error) {
	if !key.Valid() {
		return 0, nil, ErrInvalidTournamentKey
	}

	var deleted int64
	slot, err := s.withLockedSlot(ctx, key, func(ctx context.Context, slot *models.TournamentSlot) error {
		n, err := s.registrations.DeleteByTournament(ctx, key)
		if err != nil {
			return err
		}
		deleted = n
		slot.ResetState()
		return s.tournaments.Save(ctx, slot)
	})
	if err != nil {
		return 0, nil, handleRepositoryError(err, "reset tournament")
	}
	s.logger.WarnContext(ctx, "tournament reset", slog.String("key", key.String()), slog.Int64("deleted_registrations", deleted))
	return deleted, slot, nil
}

// InitializeAll creates the missing catalog slots and returns the ones it created.
func (s *TournamentService) InitializeAll(ctx context.Context) ([]*models.TournamentSlot, error) {
	created := make([]*models.TournamentSlot, 0)
	for _, key := range models.AllTournamentKeys() {
		_, err := s.tournaments.GetByKey(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("failed to get tournament %s: %w", key, err)
		}
		slot, err := s.GetOrCreate(ctx, key)
		if err != nil {
			return nil, err
		}
		created = append(created, slot)
	}
	return created, nil
}

// ReconcileAll recomputes every slot concurrently and advances schedule statuses.
func (s *TournamentService) ReconcileAll(ctx context.Context) ([]*models.TournamentSlot, error) {
	started := time.Now()
	keys := models.AllTournamentKeys()
	slots := make([]*models.TournamentSlot, len(keys))
	now := s.now()

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			slot, err := s.withLockedSlot(gctx, key, func(ctx context.Context, slot *models.TournamentSlot) error {
				prevStatus := slot.Status
				if err := s.recomputeLocked(ctx, slot); err != nil {
					return err
				}
				if next := slot.NextScheduleStatus(now); next != prevStatus {
					slot.Status = next
					return s.tournaments.Save(ctx, slot)
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to reconcile %s: %w", key, err)
			}
			slots[i] = slot
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.RecordReconcileDuration(time.Since(started))
	s.logger.InfoContext(ctx, "tournament counters reconciled", slog.Int("slots", len(slots)), slog.Duration("took", time.Since(started)))
	return slots, nil
}
