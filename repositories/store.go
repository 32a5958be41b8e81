package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Transactor runs fn inside one store transaction. Repositories called with the
// ctx passed to fn join that transaction. Nested calls reuse the outer one.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Tournaments   TournamentRepository
	Registrations RegistrationRepository
	Admins        AdminRepository
	Tx            Transactor
	Health        Pinger
}

// NewPostgresStore wires the Postgres repositories around one connection pool.
func NewPostgresStore(db *sql.DB) *Store {
	tx := &postgresTransactor{db: db}
	return &Store{
		Tournaments:   NewPostgresTournamentRepository(db),
		Registrations: NewPostgresRegistrationRepository(db),
		Admins:        NewPostgresAdminRepository(db),
		Tx:            tx,
		Health:        tx,
	}
}

type sqlTxKey struct{}

type postgresTransactor struct {
	db *sql.DB
}

func (t *postgresTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
			}
		}
	}()

	if err = fn(context.WithValue(ctx, sqlTxKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *postgresTransactor) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// executor returns the transaction carried by ctx, falling back to the pool.
func executor(ctx context.Context, db *sql.DB) SQLExecutor {
	if tx, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

func inSQLTx(ctx context.Context) bool {
	_, ok := ctx.Value(sqlTxKey{}).(*sql.Tx)
	return ok
}
