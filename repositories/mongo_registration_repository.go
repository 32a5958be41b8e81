package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/slot-arena/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRegistrationRepository struct {
	coll *mongo.Collection
}

func NewMongoRegistrationRepository(coll *mongo.Collection) RegistrationRepository {
	return &mongoRegistrationRepository{coll: coll}
}

func (r *mongoRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	if reg.Players == nil {
		reg.Players = []models.Player{}
	}
	reg.UpdatedAt = reg.SubmittedAt
	if _, err := r.coll.InsertOne(ctx, reg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrRegistrationConflict
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *mongoRegistrationRepository) findOne(ctx context.Context, filter bson.M) (*models.Registration, error) {
	var reg models.Registration
	if err := r.coll.FindOne(ctx, filter).Decode(&reg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	if reg.Players == nil {
		reg.Players = []models.Player{}
	}
	return &reg, nil
}

func (r *mongoRegistrationRepository) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRegistrationRepository) FindActiveByLeader(ctx context.Context, key models.TournamentKey, leaderGameID string) (*models.Registration, error) {
	filter := keyFilter(key)
	filter["teamLeader.gameId"] = leaderGameID
	filter["status"] = bson.M{"$in": bson.A{models.RegistrationPending, models.RegistrationApproved}}
	return r.findOne(ctx, filter)
}

func (r *mongoRegistrationRepository) List(ctx context.Context, f models.RegistrationFilter) ([]*models.Registration, error) {
	filter := bson.M{}
	if f.GameType != nil {
		filter["gameType"] = *f.GameType
	}
	if f.TournamentType != nil {
		filter["tournamentType"] = *f.TournamentType
	}
	if f.Status != nil {
		filter["status"] = *f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer cursor.Close(ctx)

	registrations := make([]*models.Registration, 0)
	if err := cursor.All(ctx, &registrations); err != nil {
		return nil, fmt.Errorf("failed to decode registrations: %w", err)
	}
	for _, reg := range registrations {
		if reg.Players == nil {
			reg.Players = []models.Player{}
		}
	}
	return registrations, nil
}

func (r *mongoRegistrationRepository) UpdateDecision(ctx context.Context, reg *models.Registration) error {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":          reg.Status,
		"rejectionReason": reg.RejectionReason,
		"approvedAt":      reg.ApprovedAt,
		"approvedBy":      reg.ApprovedBy,
		"rejectedAt":      reg.RejectedAt,
		"rejectedBy":      reg.RejectedBy,
		"updatedAt":       now,
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": reg.ID, "status": models.RegistrationPending}, update)
	if err != nil {
		return fmt.Errorf("failed to update registration %s: %w", reg.ID, err)
	}
	if res.MatchedCount == 0 {
		if _, getErr := r.GetByID(ctx, reg.ID); getErr != nil {
			return getErr
		}
		return ErrRegistrationNotPending
	}
	reg.UpdatedAt = now
	return nil
}

func (r *mongoRegistrationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *mongoRegistrationRepository) DeleteByTournament(ctx context.Context, key models.TournamentKey) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, keyFilter(key))
	if err != nil {
		return 0, fmt.Errorf("failed to delete registrations of %s: %w", key, err)
	}
	return res.DeletedCount, nil
}

func (r *mongoRegistrationRepository) CountByStatus(ctx context.Context, key models.TournamentKey) (models.StatusCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: keyFilter(key)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.StatusCounts{}, fmt.Errorf("failed to count registrations of %s: %w", key, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.RegistrationStatus `bson:"_id"`
		Count  int                       `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return models.StatusCounts{}, fmt.Errorf("failed to decode registration counts: %w", err)
	}

	var counts models.StatusCounts
	for _, row := range rows {
		addCount(&counts, row.Status, row.Count)
	}
	return counts, nil
}
