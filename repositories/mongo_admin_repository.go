package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/slot-arena/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoAdminRepository struct {
	coll *mongo.Collection
}

func NewMongoAdminRepository(coll *mongo.Collection) AdminRepository {
	return &mongoAdminRepository{coll: coll}
}

func (r *mongoAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.Permissions == nil {
		admin.Permissions = []models.Permission{}
	}
	if _, err := r.coll.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAdminConflict
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *mongoAdminRepository) findOne(ctx context.Context, filter bson.M) (*models.Admin, error) {
	var a models.Admin
	if err := r.coll.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

func (r *mongoAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoAdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *mongoAdminRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return int(n), nil
}

func (r *mongoAdminRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": at}})
	if err != nil {
		return fmt.Errorf("failed to update admin last login: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAdminNotFound
	}
	return nil
}
