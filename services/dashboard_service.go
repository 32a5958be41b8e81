package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/repositories"
	"golang.org/x/sync/errgroup"
)

// StatsFilter narrows the dashboard to one game and/or format.
type StatsFilter struct {
	GameType       *models.GameType
	TournamentType *models.TournamentType
}

type DashboardService interface {
	GetStats(ctx context.Context, filter StatsFilter) (models.DashboardStats, error)
}

type dashboardService struct {
	registrations repositories.RegistrationRepository
	tournaments   *TournamentService
}

func NewDashboardService(store *repositories.Store, tournaments *TournamentService) DashboardService {
	return &dashboardService{
		registrations: store.Registrations,
		tournaments:   tournaments,
	}
}

func (s *dashboardService) GetStats(ctx context.Context, filter StatsFilter) (models.DashboardStats, error) {
	if filter.GameType != nil && !filter.GameType.Valid() {
		return models.DashboardStats{}, ErrInvalidTournamentKey
	}
	if filter.TournamentType != nil && !filter.TournamentType.Valid() {
		return models.DashboardStats{}, ErrInvalidTournamentKey
	}

	keys := make([]models.TournamentKey, 0, 6)
	for _, key := range models.AllTournamentKeys() {
		if filter.GameType != nil && key.GameType != *filter.GameType {
			continue
		}
		if filter.TournamentType != nil && key.TournamentType != *filter.TournamentType {
			continue
		}
		keys = append(keys, key)
	}

	rows := make([]models.TournamentBreakdown, len(keys))
	statuses := make([]models.SlotStatus, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			slot, err := s.tournaments.GetOrCreate(gctx, key)
			if err != nil {
				return err
			}
			counts, err := s.registrations.CountByStatus(gctx, key)
			if err != nil {
				return fmt.Errorf("failed to count registrations of %s: %w", key, err)
			}
			rows[i] = models.TournamentBreakdown{
				TournamentKey:  key,
				Counts:         counts,
				Total:          counts.Total(),
				MaxSlots:       slot.MaxSlots,
				AvailableSlots: max(0, slot.MaxSlots-counts.Approved),
			}
			statuses[i] = slot.Status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}

	stats := models.DashboardStats{Breakdown: rows}
	for i, row := range rows {
		stats.TotalRegistrations += row.Total
		stats.ApprovedCount += row.Counts.Approved
		stats.PendingCount += row.Counts.Pending
		stats.RejectedCount += row.Counts.Rejected
		stats.TotalSlots += row.MaxSlots
		stats.AvailableSlots += row.AvailableSlots
		if statuses[i] == models.SlotScheduled || statuses[i] == models.SlotLive {
			stats.ActiveTournaments++
		}
	}
	return stats, nil
}
