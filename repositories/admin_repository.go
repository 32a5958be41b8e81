package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/slot-arena/models"
	"github.com/lib/pq"
)

var (
	ErrAdminNotFound = errors.New("admin not found")
	ErrAdminConflict = errors.New("admin username or email already taken")
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	Count(ctx context.Context) (int, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type postgresAdminRepository struct {
	db *sql.DB
}

func NewPostgresAdminRepository(db *sql.DB) AdminRepository {
	return &postgresAdminRepository{db: db}
}

const adminColumns = `id, username, email, password_hash, role, permissions, is_active, last_login, created_at`

func permissionsToStrings(perms []models.Permission) pq.StringArray {
	out := make(pq.StringArray, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}

func scanAdmin(row rowScanner) (*models.Admin, error) {
	a := &models.Admin{}
	var perms pq.StringArray
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &perms, &a.IsActive, &a.LastLogin, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Permissions = make([]models.Permission, 0, len(perms))
	for _, p := range perms {
		a.Permissions = append(a.Permissions, models.Permission(p))
	}
	return a, nil
}

func (r *postgresAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	query := `
		INSERT INTO admins (id, username, email, password_hash, role, permissions, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		admin.ID,
		admin.Username,
		admin.Email,
		admin.PasswordHash,
		admin.Role,
		permissionsToStrings(admin.Permissions),
		admin.IsActive,
		admin.CreatedAt,
	)
	if err != nil {
		if _, ok := pqConstraint(err, pqUniqueViolation); ok {
			return ErrAdminConflict
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *postgresAdminRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Admin, error) {
	a, err := scanAdmin(executor(ctx, r.db).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return a, nil
}

func (r *postgresAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return r.findOne(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
}

func (r *postgresAdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return r.findOne(ctx, `SELECT `+adminColumns+` FROM admins WHERE username = $1`, username)
}

func (r *postgresAdminRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := executor(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}

func (r *postgresAdminRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	result, err := executor(ctx, r.db).ExecContext(ctx, `UPDATE admins SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update admin last login: %w", err)
	}
	return checkAffectedRows(result, ErrAdminNotFound)
}
