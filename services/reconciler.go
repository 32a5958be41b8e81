package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Reconciler periodically re-derives every slot's counters and schedule status.
type Reconciler struct {
	scheduler   gocron.Scheduler
	tournaments *TournamentService
	interval    time.Duration
	logger      *slog.Logger
}

func NewReconciler(tournaments *TournamentService, interval time.Duration, logger *slog.Logger) (*Reconciler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Reconciler{
		scheduler:   scheduler,
		tournaments: tournaments,
		interval:    interval,
		logger:      logger,
	}, nil
}

// Start registers the job (первый запуск сразу) and starts the scheduler.
func (r *Reconciler) Start(ctx context.Context) error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() {
			r.run(ctx)
		}),
		gocron.WithName("reconcile-tournaments"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile job: %w", err)
	}
	r.scheduler.Start()
	r.logger.Info("reconciler started", slog.Duration("interval", r.interval))
	return nil
}

func (r *Reconciler) run(ctx context.Context) {
	if _, err := r.tournaments.ReconcileAll(ctx); err != nil {
		r.logger.ErrorContext(ctx, "reconcile failed", slog.Any("error", err))
	}
}

func (r *Reconciler) Stop() error {
	return r.scheduler.Shutdown()
}
