package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/slot-arena/db"
	"github.com/Dosada05/slot-arena/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Интеграционные тесты запускаются только при заданных POSTGRES_TEST_URL / MONGO_TEST_URI.
// Mongo должен быть replica set: сервисы работают через транзакции.

func postgresStore(t *testing.T) *repositories.Store {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_URL")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_URL is not set")
	}
	conn, err := db.Connect(dsn, 5*time.Second, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))
	return repositories.NewPostgresStore(conn)
}

func mongoStore(t *testing.T) *repositories.Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI is not set")
	}
	client, err := db.ConnectMongo(uri, 5*time.Second)
	require.NoError(t, err)
	database := client.Database(fmt.Sprintf("slot_arena_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, db.EnsureIndexes(context.Background(), database))
	return repositories.NewMongoStore(client, database)
}

func TestStoreIntegration(t *testing.T) {
	for name, open := range map[string]func(*testing.T) *repositories.Store{
		"postgres": postgresStore,
		"mongo":    mongoStore,
	} {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ts := NewTournamentService(store, nil, discardLogger())
			rs := NewRegistrationService(store, ts, discardLogger())
			ctx := context.Background()

			_, _, err := ts.Reset(ctx, bgmiSoloKey)
			require.NoError(t, err)

			res, err := rs.Submit(ctx, bgmiSolo("1234567890"))
			require.NoError(t, err)
			_, err = rs.Submit(ctx, bgmiSolo("1234567890"))
			assert.ErrorIs(t, err, ErrRegistrationConflict)

			reg, err := rs.Approve(ctx, res.Registration.ID, "moderator")
			require.NoError(t, err)
			assert.NotNil(t, reg.ApprovedAt)
			_, err = rs.Reject(ctx, res.Registration.ID, nil, "moderator")
			assert.ErrorIs(t, err, ErrRegistrationAlreadyDecided)

			fetched, err := rs.Get(ctx, res.Registration.ID)
			require.NoError(t, err)
			assert.Equal(t, res.Registration.TeamLeader, fetched.TeamLeader)
			assert.Equal(t, res.Registration.Payment, fetched.Payment)

			slot, err := ts.RecomputeCounters(ctx, bgmiSoloKey)
			require.NoError(t, err)
			assert.Equal(t, 1, slot.ApprovedCount)
			assert.Equal(t, slot.MaxSlots-1, slot.AvailableSlots)

			deleted, slot, err := ts.Reset(ctx, bgmiSoloKey)
			require.NoError(t, err)
			assert.EqualValues(t, 1, deleted)
			assert.Zero(t, slot.RegisteredCount)
		})
	}
}

func TestStoreIntegration_ConcurrentApprovals(t *testing.T) {
	store := postgresStore(t)
	ts := NewTournamentService(store, nil, discardLogger())
	rs := NewRegistrationService(store, ts, discardLogger())
	ctx := context.Background()

	_, _, err := ts.Reset(ctx, bgmiSoloKey)
	require.NoError(t, err)
	slot, err := ts.GetOrCreate(ctx, bgmiSoloKey)
	require.NoError(t, err)

	ids := make([]string, slot.MaxSlots+5)
	for i := range ids {
		res, err := rs.Submit(ctx, bgmiSolo(fmt.Sprintf("8%09d", i)))
		require.NoError(t, err)
		ids[i] = res.Registration.ID
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		full int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := rs.Approve(ctx, id, "moderator"); errors.Is(err, ErrTournamentFull) {
				mu.Lock()
				full++
				mu.Unlock()
			} else {
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 5, full)
	slot, err = ts.RecomputeCounters(ctx, bgmiSoloKey)
	require.NoError(t, err)
	assert.Equal(t, slot.MaxSlots, slot.ApprovedCount)
	assert.True(t, slot.IsFull)

	_, _, err = ts.Reset(ctx, bgmiSoloKey)
	require.NoError(t, err)
}
