package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/slot-arena/models"
)

var (
	ErrRegistrationNotFound          = errors.New("registration not found")
	ErrRegistrationConflict          = errors.New("an active registration already exists for this team leader")
	ErrRegistrationNotPending        = errors.New("registration is no longer pending")
	ErrRegistrationTournamentInvalid = errors.New("registration references an unknown tournament slot")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id string) (*models.Registration, error)
	// FindActiveByLeader returns the pending or approved registration of a leader game ID.
	FindActiveByLeader(ctx context.Context, key models.TournamentKey, leaderGameID string) (*models.Registration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]*models.Registration, error)
	// UpdateDecision writes the decision fields only while the stored row is still pending.
	UpdateDecision(ctx context.Context, reg *models.Registration) error
	Delete(ctx context.Context, id string) error
	DeleteByTournament(ctx context.Context, key models.TournamentKey) (int64, error)
	CountByStatus(ctx context.Context, key models.TournamentKey) (models.StatusCounts, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

const registrationColumns = `
	id, game_type, tournament_type, team_name,
	leader_name, leader_game_id, leader_whatsapp, players,
	payment_screenshot, payment_transaction_id, status, rejection_reason,
	submitted_at, approved_at, approved_by, rejected_at, rejected_by, updated_at`

func scanRegistration(row rowScanner) (*models.Registration, error) {
	reg := &models.Registration{}
	var players []byte
	err := row.Scan(
		&reg.ID, &reg.GameType, &reg.TournamentType, &reg.TeamName,
		&reg.TeamLeader.Name, &reg.TeamLeader.GameID, &reg.TeamLeader.Whatsapp, &players,
		&reg.Payment.Screenshot, &reg.Payment.TransactionID, &reg.Status, &reg.RejectionReason,
		&reg.SubmittedAt, &reg.ApprovedAt, &reg.ApprovedBy, &reg.RejectedAt, &reg.RejectedBy, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.Players = []models.Player{}
	if len(players) > 0 {
		if err := json.Unmarshal(players, &reg.Players); err != nil {
			return nil, fmt.Errorf("failed to decode players of registration %s: %w", reg.ID, err)
		}
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	players := reg.Players
	if players == nil {
		players = []models.Player{}
	}
	playersJSON, err := json.Marshal(players)
	if err != nil {
		return fmt.Errorf("failed to encode players: %w", err)
	}

	query := `
		INSERT INTO registrations (
			id, game_type, tournament_type, team_name,
			leader_name, leader_game_id, leader_whatsapp, players,
			payment_screenshot, payment_transaction_id, status, submitted_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`

	_, err = executor(ctx, r.db).ExecContext(ctx, query,
		reg.ID, reg.GameType, reg.TournamentType, reg.TeamName,
		reg.TeamLeader.Name, reg.TeamLeader.GameID, reg.TeamLeader.Whatsapp, playersJSON,
		reg.Payment.Screenshot, reg.Payment.TransactionID, reg.Status, reg.SubmittedAt,
	)
	if err != nil {
		if constraint, ok := pqConstraint(err, pqUniqueViolation); ok && constraint == "registrations_active_leader_key" {
			return ErrRegistrationConflict
		}
		if _, ok := pqConstraint(err, pqForeignKeyViolation); ok {
			return ErrRegistrationTournamentInvalid
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	reg.UpdatedAt = reg.SubmittedAt
	return nil
}

func (r *postgresRegistrationRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Registration, error) {
	reg, err := scanRegistration(executor(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresRegistrationRepository) FindActiveByLeader(ctx context.Context, key models.TournamentKey, leaderGameID string) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE game_type = $1 AND tournament_type = $2 AND leader_game_id = $3 AND status IN ($4, $5)
		LIMIT 1`
	return r.findOne(ctx, query, key.GameType, key.TournamentType, leaderGameID, models.RegistrationPending, models.RegistrationApproved)
}

func (r *postgresRegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]*models.Registration, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + registrationColumns + ` FROM registrations WHERE 1=1`)
	args := []interface{}{}
	argID := 1

	if filter.GameType != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND game_type = $%d", argID))
		args = append(args, *filter.GameType)
		argID++
	}
	if filter.TournamentType != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND tournament_type = $%d", argID))
		args = append(args, *filter.TournamentType)
		argID++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argID))
		args = append(args, *filter.Status)
	}
	queryBuilder.WriteString(" ORDER BY submitted_at DESC")

	rows, err := executor(ctx, r.db).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		registrations = append(registrations, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return registrations, nil
}

func (r *postgresRegistrationRepository) UpdateDecision(ctx context.Context, reg *models.Registration) error {
	query := `
		UPDATE registrations SET
			status = $2,
			rejection_reason = $3,
			approved_at = $4,
			approved_by = $5,
			rejected_at = $6,
			rejected_by = $7,
			updated_at = NOW()
		WHERE id = $1 AND status = $8
		RETURNING updated_at`

	err := executor(ctx, r.db).QueryRowContext(ctx, query,
		reg.ID, reg.Status, reg.RejectionReason, reg.ApprovedAt, reg.ApprovedBy, reg.RejectedAt, reg.RejectedBy,
		models.RegistrationPending,
	).Scan(&reg.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update registration %s: %w", reg.ID, err)
	}

	// Nothing matched: either the row is gone or it has already been decided.
	if _, getErr := r.GetByID(ctx, reg.ID); getErr != nil {
		return getErr
	}
	return ErrRegistrationNotPending
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, id string) error {
	result, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) DeleteByTournament(ctx context.Context, key models.TournamentKey) (int64, error) {
	result, err := executor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM registrations WHERE game_type = $1 AND tournament_type = $2`,
		key.GameType, key.TournamentType,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete registrations of %s: %w", key, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return deleted, nil
}

func (r *postgresRegistrationRepository) CountByStatus(ctx context.Context, key models.TournamentKey) (models.StatusCounts, error) {
	query := `
		SELECT status, COUNT(*)
		FROM registrations
		WHERE game_type = $1 AND tournament_type = $2
		GROUP BY status`

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, key.GameType, key.TournamentType)
	if err != nil {
		return models.StatusCounts{}, fmt.Errorf("failed to count registrations of %s: %w", key, err)
	}
	defer rows.Close()

	var counts models.StatusCounts
	for rows.Next() {
		var status models.RegistrationStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return models.StatusCounts{}, fmt.Errorf("failed to scan registration count row: %w", err)
		}
		addCount(&counts, status, n)
	}
	if err = rows.Err(); err != nil {
		return models.StatusCounts{}, fmt.Errorf("error iterating registration count rows: %w", err)
	}
	return counts, nil
}

func addCount(counts *models.StatusCounts, status models.RegistrationStatus, n int) {
	switch status {
	case models.RegistrationPending:
		counts.Pending += n
	case models.RegistrationApproved:
		counts.Approved += n
	case models.RegistrationRejected:
		counts.Rejected += n
	}
}
