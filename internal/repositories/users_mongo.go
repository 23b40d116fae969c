package repositories

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"starter-server/internal/schemas"
)

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository returns a UserRepository backed by the users collection.
func NewUserMongoRepository(db *mongo.Database) UserRepository {
	return &userMongoRepository{db: db}
}

// EnsureUserIndexes creates the unique email index on the users collection.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := db.Collection(userCollection).Indexes().CreateMany(ctx, indexes)
	return errors.Wrap(err, "create user indexes")
}

func (r *userMongoRepository) Create(ctx context.Context, user *schemas.User) error {
	_, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}

	return errors.Wrapf(err, "insert user %s", user.Email)
}

func (r *userMongoRepository) FindByEmail(ctx context.Context, email string) (*schemas.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) FindByID(ctx context.Context, id string) (*schemas.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userMongoRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"password":   passwordHash,
			"updated_at": at,
		},
	}

	return r.updateOne(ctx, id, update)
}

func (r *userMongoRepository) SetEmailVerifiedAt(ctx context.Context, id string, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"email_verified_at": at,
			"updated_at":        at,
		},
	}

	return r.updateOne(ctx, id, update)
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*schemas.User, error) {
	var user schemas.User
	err := r.db.Collection(userCollection).FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}

	return &user, nil
}

func (r *userMongoRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	result, err := r.db.Collection(userCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errors.Wrapf(err, "update user %s", id)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}
