package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	TournamentsCollection   = "tournament_slots"
	RegistrationsCollection = "registrations"
	AdminsCollection        = "admins"
)

// NewMongoStore wires the MongoDB repositories. Transactions need a replica set.
func NewMongoStore(client *mongo.Client, database *mongo.Database) *Store {
	tx := &mongoTransactor{client: client}
	return &Store{
		Tournaments:   NewMongoTournamentRepository(database.Collection(TournamentsCollection)),
		Registrations: NewMongoRegistrationRepository(database.Collection(RegistrationsCollection)),
		Admins:        NewMongoAdminRepository(database.Collection(AdminsCollection)),
		Tx:            tx,
		Health:        tx,
	}
}

type mongoTransactor struct {
	client *mongo.Client
}

// WithinTransaction runs fn in a session transaction. The driver retries fn on
// transient errors such as a write conflict on a locked slot, so fn must not
// keep side effects outside the store.
func (t *mongoTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (t *mongoTransactor) Ping(ctx context.Context) error {
	return t.client.Ping(ctx, readpref.Primary())
}

func inMongoTx(ctx context.Context) bool {
	return mongo.SessionFromContext(ctx) != nil
}
