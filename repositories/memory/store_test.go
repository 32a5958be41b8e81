package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = models.TournamentKey{GameType: models.GameBGMI, TournamentType: models.TournamentDuo}

func seed(t *testing.T, store *repositories.Store) {
	t.Helper()
	cfg, _ := models.LookupSlotConfig(key)
	require.NoError(t, store.Tournaments.Create(context.Background(), models.NewTournamentSlot(key, cfg, time.Now())))
}

func registration(id, leader string, status models.RegistrationStatus) *models.Registration {
	return &models.Registration{
		ID:             id,
		GameType:       key.GameType,
		TournamentType: key.TournamentType,
		TeamName:       "Team " + id,
		TeamLeader:     models.TeamLeader{Name: "Lead", GameID: leader, Whatsapp: "9876543210"},
		Status:         status,
		SubmittedAt:    time.Now(),
	}
}

func TestWithinTransaction_RollsBack(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, store.Registrations.Create(ctx, registration("r1", "1111111111", models.RegistrationPending)))
		slot, err := store.Tournaments.Lock(ctx, key)
		require.NoError(t, err)
		slot.ApplyCounts(models.StatusCounts{Pending: 1})
		require.NoError(t, store.Tournaments.SaveCounters(ctx, slot))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Registrations.GetByID(ctx, "r1")
	assert.ErrorIs(t, err, repositories.ErrRegistrationNotFound)
	slot, err := store.Tournaments.GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, slot.PendingCount)
}

func TestWithinTransaction_Nested(t *testing.T) {
	store := NewStore()
	seed(t, store)
	ctx := context.Background()

	err := store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			return store.Registrations.Create(ctx, registration("r1", "1111111111", models.RegistrationPending))
		})
	})
	require.NoError(t, err)

	_, err = store.Registrations.GetByID(ctx, "r1")
	assert.NoError(t, err)
}

func TestLockOutsideTransaction(t *testing.T) {
	store := NewStore()
	seed(t, store)

	_, err := store.Tournaments.Lock(context.Background(), key)
	assert.ErrorIs(t, err, repositories.ErrLockOutsideTx)
}

func TestRegistrations(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.Registrations.Create(ctx, registration("r0", "1111111111", models.RegistrationPending))
	assert.ErrorIs(t, err, repositories.ErrRegistrationTournamentInvalid)

	seed(t, store)
	require.NoError(t, store.Registrations.Create(ctx, registration("r1", "1111111111", models.RegistrationPending)))
	require.NoError(t, store.Registrations.Create(ctx, registration("r2", "2222222222", models.RegistrationPending)))

	// активный лидер уникален внутри турнира
	err = store.Registrations.Create(ctx, registration("r3", "1111111111", models.RegistrationPending))
	assert.ErrorIs(t, err, repositories.ErrRegistrationConflict)

	found, err := store.Registrations.FindActiveByLeader(ctx, key, "1111111111")
	require.NoError(t, err)
	assert.Equal(t, "r1", found.ID)

	reg, err := store.Registrations.GetByID(ctx, "r2")
	require.NoError(t, err)
	reg.Status = models.RegistrationApproved
	require.NoError(t, store.Registrations.UpdateDecision(ctx, reg))
	assert.ErrorIs(t, store.Registrations.UpdateDecision(ctx, reg), repositories.ErrRegistrationNotPending)

	counts, err := store.Registrations.CountByStatus(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCounts{Pending: 1, Approved: 1}, counts)

	// возвращённые значения не связаны с хранилищем
	reg.TeamName = "mutated"
	fresh, err := store.Registrations.GetByID(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, "Team r2", fresh.TeamName)

	n, err := store.Registrations.DeleteByTournament(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.ErrorIs(t, store.Registrations.Delete(ctx, "r1"), repositories.ErrRegistrationNotFound)
}

func TestAdmins(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	email := "a@example.com"

	require.NoError(t, store.Admins.Create(ctx, &models.Admin{ID: "a1", Username: "root", Email: &email, Role: models.RoleSuperAdmin}))
	assert.ErrorIs(t, store.Admins.Create(ctx, &models.Admin{ID: "a2", Username: "root"}), repositories.ErrAdminConflict)
	assert.ErrorIs(t, store.Admins.Create(ctx, &models.Admin{ID: "a3", Username: "other", Email: &email}), repositories.ErrAdminConflict)

	at := time.Now().UTC()
	require.NoError(t, store.Admins.UpdateLastLogin(ctx, "a1", at))
	admin, err := store.Admins.GetByUsername(ctx, "root")
	require.NoError(t, err)
	require.NotNil(t, admin.LastLogin)
	assert.True(t, at.Equal(*admin.LastLogin))

	_, err = store.Admins.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrAdminNotFound)
	n, err := store.Admins.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
