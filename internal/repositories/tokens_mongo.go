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

const verificationTokenCollection = "verification_tokens"

type verificationTokenMongoRepository struct {
	db *mongo.Database
}

// NewVerificationTokenMongoRepository returns a VerificationTokenRepository backed by the verification_tokens collection.
func NewVerificationTokenMongoRepository(db *mongo.Database) VerificationTokenRepository {
	return &verificationTokenMongoRepository{db: db}
}

// EnsureVerificationTokenIndexes creates the lookup indexes of the verification_tokens collection.
// Expired tokens are kept, so there is no TTL index.
func EnsureVerificationTokenIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "token", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "type", Value: 1}},
		},
	}

	_, err := db.Collection(verificationTokenCollection).Indexes().CreateMany(ctx, indexes)
	return errors.Wrap(err, "create verification token indexes")
}

func (r *verificationTokenMongoRepository) Create(ctx context.Context, token *schemas.VerificationToken) error {
	_, err := r.db.Collection(verificationTokenCollection).InsertOne(ctx, token)
	return errors.Wrapf(err, "insert %s token for user %s", token.Type, token.UserID)
}

func (r *verificationTokenMongoRepository) FindOne(ctx context.Context, token, userID string, tokenType schemas.VerificationTokenType) (*schemas.VerificationToken, error) {
	filter := bson.M{
		"token":   token,
		"user_id": userID,
		"type":    tokenType,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var verificationToken schemas.VerificationToken
	err := r.db.Collection(verificationTokenCollection).FindOne(ctx, filter, opts).Decode(&verificationToken)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find %s token for user %s", tokenType, userID)
	}

	return &verificationToken, nil
}

func (r *verificationTokenMongoRepository) FindByUser(ctx context.Context, userID string, tokenType schemas.VerificationTokenType) ([]*schemas.VerificationToken, error) {
	filter := bson.M{
		"user_id": userID,
		"type":    tokenType,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(verificationTokenCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s tokens for user %s", tokenType, userID)
	}

	tokens := make([]*schemas.VerificationToken, 0)
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, errors.Wrap(err, "decode verification tokens")
	}

	return tokens, nil
}

func (r *verificationTokenMongoRepository) Consume(ctx context.Context, token string, at time.Time) (bool, error) {
	filter := bson.M{
		"token":       token,
		"verified_at": nil,
	}
	update := bson.M{
		"$set": bson.M{"verified_at": at},
	}

	result, err := r.db.Collection(verificationTokenCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, errors.Wrap(err, "consume verification token")
	}

	return result.ModifiedCount > 0, nil
}
