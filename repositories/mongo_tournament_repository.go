package repositories

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Dosada05/slot-arena/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTournamentRepository struct {
	coll *mongo.Collection
}

func NewMongoTournamentRepository(coll *mongo.Collection) TournamentRepository {
	return &mongoTournamentRepository{coll: coll}
}

func keyFilter(key models.TournamentKey) bson.M {
	return bson.M{"gameType": key.GameType, "tournamentType": key.TournamentType}
}

func (r *mongoTournamentRepository) Create(ctx context.Context, s *models.TournamentSlot) error {
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrTournamentExists
		}
		return fmt.Errorf("failed to create tournament slot %s: %w", s.Key(), err)
	}
	return nil
}

func (r *mongoTournamentRepository) GetByKey(ctx context.Context, key models.TournamentKey) (*models.TournamentSlot, error) {
	var s models.TournamentSlot
	if err := r.coll.FindOne(ctx, keyFilter(key)).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament slot %s: %w", key, err)
	}
	return &s, nil
}

// Lock bumps a revision field so that a concurrent transaction touching the
// same slot fails with a write conflict and is retried by the driver.
func (r *mongoTournamentRepository) Lock(ctx context.Context, key models.TournamentKey) (*models.TournamentSlot, error) {
	if !inMongoTx(ctx) {
		return nil, ErrLockOutsideTx
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var s models.TournamentSlot
	err := r.coll.FindOneAndUpdate(ctx, keyFilter(key), bson.M{"$inc": bson.M{"revision": 1}}, opts).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to lock tournament slot %s: %w", key, err)
	}
	return &s, nil
}

func (r *mongoTournamentRepository) List(ctx context.Context, gameType *models.GameType) ([]*models.TournamentSlot, error) {
	filter := bson.M{}
	if gameType != nil {
		filter["gameType"] = *gameType
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament slots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := make([]*models.TournamentSlot, 0, 6)
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode tournament slots: %w", err)
	}
	sortSlots(slots)
	return slots, nil
}

// sortSlots orders by game, then solo, duo, squad.
func sortSlots(slots []*models.TournamentSlot) {
	slices.SortFunc(slots, func(a, b *models.TournamentSlot) int {
		if c := strings.Compare(string(a.GameType), string(b.GameType)); c != 0 {
			return c
		}
		return slices.Index(models.TournamentTypes, a.TournamentType) - slices.Index(models.TournamentTypes, b.TournamentType)
	})
}

func (r *mongoTournamentRepository) update(ctx context.Context, s *models.TournamentSlot, set bson.M) error {
	now := time.Now().UTC()
	set["updatedAt"] = now
	res, err := r.coll.UpdateOne(ctx, keyFilter(s.Key()), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to save tournament slot %s: %w", s.Key(), err)
	}
	if res.MatchedCount == 0 {
		return ErrTournamentNotFound
	}
	s.UpdatedAt = now
	return nil
}

func counterFields(s *models.TournamentSlot) bson.M {
	return bson.M{
		"registeredCount": s.RegisteredCount,
		"approvedCount":   s.ApprovedCount,
		"pendingCount":    s.PendingCount,
		"rejectedCount":   s.RejectedCount,
		"availableSlots":  s.AvailableSlots,
		"isFull":          s.IsFull,
	}
}

func (r *mongoTournamentRepository) Save(ctx context.Context, s *models.TournamentSlot) error {
	set := counterFields(s)
	set["qrCodeUrl"] = s.QRCodeURL
	set["roomId"] = s.RoomID
	set["roomPassword"] = s.RoomPassword
	set["startTime"] = s.StartTime
	set["endTime"] = s.EndTime
	set["status"] = s.Status
	return r.update(ctx, s, set)
}

func (r *mongoTournamentRepository) SaveCounters(ctx context.Context, s *models.TournamentSlot) error {
	return r.update(ctx, s, counterFields(s))
}
