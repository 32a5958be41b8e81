package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/slot-arena/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo dials MongoDB and verifies the primary within timeout.
func ConnectMongo(uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo within %v: %w", timeout, err)
	}
	return client, nil
}

// EnsureIndexes creates the unique and lookup indexes used by the repositories.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		repositories.TournamentsCollection: {
			{
				Keys:    bson.D{{Key: "gameType", Value: 1}, {Key: "tournamentType", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("tournament_key"),
			},
		},
		repositories.RegistrationsCollection: {
			{
				Keys:    bson.D{{Key: "gameType", Value: 1}, {Key: "tournamentType", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("tournament_status"),
			},
			{
				Keys:    bson.D{{Key: "gameType", Value: 1}, {Key: "tournamentType", Value: 1}, {Key: "teamLeader.gameId", Value: 1}},
				Options: options.Index().SetName("tournament_leader"),
			},
			{
				Keys:    bson.D{{Key: "submittedAt", Value: -1}},
				Options: options.Index().SetName("submitted_at"),
			},
		},
		repositories.AdminsCollection: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("admin_username"),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true).SetName("admin_email"),
			},
		},
	}

	for coll, models := range indexes {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
