package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/slot-arena/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament slot not found")
	ErrTournamentExists   = errors.New("tournament slot already exists")
	ErrLockOutsideTx      = errors.New("tournament slot lock requires a transaction")
)

type TournamentRepository interface {
	Create(ctx context.Context, slot *models.TournamentSlot) error
	GetByKey(ctx context.Context, key models.TournamentKey) (*models.TournamentSlot, error)
	// Lock reads the slot and holds it until the surrounding transaction ends.
	Lock(ctx context.Context, key models.TournamentKey) (*models.TournamentSlot, error)
	List(ctx context.Context, gameType *models.GameType) ([]*models.TournamentSlot, error)
	// Save persists the mutable configuration, status and counters.
	Save(ctx context.Context, slot *models.TournamentSlot) error
	// SaveCounters persists only the derived counters.
	SaveCounters(ctx context.Context, slot *models.TournamentSlot) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	game_type, tournament_type, max_slots, entry_fee, winner_prize, runner_up_prize, per_kill_reward,
	qr_code_url, room_id, room_password, start_time, end_time,
	registered_count, approved_count, pending_count, rejected_count, available_slots, is_full, status,
	created_at, updated_at`

func scanTournament(row rowScanner) (*models.TournamentSlot, error) {
	s := &models.TournamentSlot{}
	err := row.Scan(
		&s.GameType, &s.TournamentType, &s.MaxSlots, &s.EntryFee, &s.WinnerPrize, &s.RunnerUpPrize, &s.PerKillReward,
		&s.QRCodeURL, &s.RoomID, &s.RoomPassword, &s.StartTime, &s.EndTime,
		&s.RegisteredCount, &s.ApprovedCount, &s.PendingCount, &s.RejectedCount, &s.AvailableSlots, &s.IsFull, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, s *models.TournamentSlot) error {
	query := `
		INSERT INTO tournament_slots (
			game_type, tournament_type, max_slots, entry_fee, winner_prize, runner_up_prize, per_kill_reward,
			registered_count, approved_count, pending_count, rejected_count, available_slots, is_full, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (game_type, tournament_type) DO NOTHING`

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		s.GameType, s.TournamentType, s.MaxSlots, s.EntryFee, s.WinnerPrize, s.RunnerUpPrize, s.PerKillReward,
		s.RegisteredCount, s.ApprovedCount, s.PendingCount, s.RejectedCount, s.AvailableSlots, s.IsFull, s.Status,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tournament slot %s: %w", s.Key(), err)
	}
	return checkAffectedRows(result, ErrTournamentExists)
}

func (r *postgresTournamentRepository) GetByKey(ctx context.Context, key models.TournamentKey) (*models.TournamentSlot, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournament_slots WHERE game_type = $1 AND tournament_type = $2`
	return r.findOne(ctx, query, key)
}

func (r *postgresTournamentRepository) Lock(ctx context.Context, key models.TournamentKey) (*models.TournamentSlot, error) {
	if !inSQLTx(ctx) {
		return nil, ErrLockOutsideTx
	}
	query := `SELECT ` + tournamentColumns + ` FROM tournament_slots WHERE game_type = $1 AND tournament_type = $2 FOR UPDATE`
	return r.findOne(ctx, query, key)
}

func (r *postgresTournamentRepository) findOne(ctx context.Context, query string, key models.TournamentKey) (*models.TournamentSlot, error) {
	s, err := scanTournament(executor(ctx, r.db).QueryRowContext(ctx, query, key.GameType, key.TournamentType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament slot %s: %w", key, err)
	}
	return s, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, gameType *models.GameType) ([]*models.TournamentSlot, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournament_slots`
	args := []interface{}{}
	if gameType != nil {
		query += ` WHERE game_type = $1`
		args = append(args, *gameType)
	}
	query += ` ORDER BY game_type ASC, CASE tournament_type WHEN 'solo' THEN 1 WHEN 'duo' THEN 2 ELSE 3 END`

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament slots: %w", err)
	}
	defer rows.Close()

	slots := make([]*models.TournamentSlot, 0, 6)
	for rows.Next() {
		s, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament slot row: %w", err)
		}
		slots = append(slots, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament slot rows: %w", err)
	}
	return slots, nil
}

func (r *postgresTournamentRepository) Save(ctx context.Context, s *models.TournamentSlot) error {
	query := `
		UPDATE tournament_slots SET
			qr_code_url = $3,
			room_id = $4,
			room_password = $5,
			start_time = $6,
			end_time = $7,
			registered_count = $8,
			approved_count = $9,
			pending_count = $10,
			rejected_count = $11,
			available_slots = $12,
			is_full = $13,
			status = $14,
			updated_at = NOW()
		WHERE game_type = $1 AND tournament_type = $2
		RETURNING updated_at`

	err := executor(ctx, r.db).QueryRowContext(ctx, query,
		s.GameType, s.TournamentType,
		s.QRCodeURL, s.RoomID, s.RoomPassword, s.StartTime, s.EndTime,
		s.RegisteredCount, s.ApprovedCount, s.PendingCount, s.RejectedCount, s.AvailableSlots, s.IsFull, s.Status,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to save tournament slot %s: %w", s.Key(), err)
	}
	return nil
}

func (r *postgresTournamentRepository) SaveCounters(ctx context.Context, s *models.TournamentSlot) error {
	query := `
		UPDATE tournament_slots SET
			registered_count = $3,
			approved_count = $4,
			pending_count = $5,
			rejected_count = $6,
			available_slots = $7,
			is_full = $8,
			updated_at = NOW()
		WHERE game_type = $1 AND tournament_type = $2
		RETURNING updated_at`

	err := executor(ctx, r.db).QueryRowContext(ctx, query,
		s.GameType, s.TournamentType,
		s.RegisteredCount, s.ApprovedCount, s.PendingCount, s.RejectedCount, s.AvailableSlots, s.IsFull,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to save counters for tournament slot %s: %w", s.Key(), err)
	}
	return nil
}
