package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/repositories"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.Admin, error)
	// Bootstrap creates the first super admin; it fails once any admin exists.
	Bootstrap(ctx context.Context, input CreateAdminInput) (*models.Admin, error)
	CreateAdmin(ctx context.Context, input CreateAdminInput) (*models.Admin, error)
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateAdminInput struct {
	Username    string              `json:"username"`
	Password    string              `json:"password"`
	Email       *string             `json:"email,omitempty"`
	Role        models.AdminRole    `json:"role,omitempty"`
	Permissions []models.Permission `json:"permissions,omitempty"`
}

type authService struct {
	adminRepo repositories.AdminRepository
	tx        repositories.Transactor
	logger    *slog.Logger
}

func NewAuthService(store *repositories.Store, logger *slog.Logger) AuthService {
	return &authService{
		adminRepo: store.Admins,
		tx:        store.Tx,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("ошибка поиска администратора: %w", err)
	}
	if !admin.IsActive {
		return nil, ErrAuthInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("ошибка проверки пароля: %w", err)
	}

	now := time.Now().UTC()
	if err := s.adminRepo.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to record admin login", slog.String("admin_id", admin.ID), slog.Any("error", err))
	} else {
		admin.LastLogin = &now
	}
	return admin, nil
}

func (s *authService) Bootstrap(ctx context.Context, input CreateAdminInput) (*models.Admin, error) {
	input.Role = models.RoleSuperAdmin

	var admin *models.Admin
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.adminRepo.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if n > 0 {
			return ErrAdminExists
		}
		admin, err = s.CreateAdmin(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "initial admin created", slog.String("username", admin.Username))
	return admin, nil
}

func (s *authService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*models.Admin, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	role := input.Role
	if role == "" {
		role = models.RoleAdmin
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, role)
	}
	perms := make([]models.Permission, 0, len(input.Permissions))
	for _, p := range input.Permissions {
		if _, ok := models.ParsePermission(string(p)); !ok {
			return nil, fmt.Errorf("%w: unknown permission %q", ErrValidationFailed, p)
		}
		perms = append(perms, p)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	admin := &models.Admin{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        optionalString(input.Email),
		PasswordHash: string(hashedPassword),
		Role:         role,
		Permissions:  perms,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, handleRepositoryError(err, "create admin")
	}
	return admin, nil
}
