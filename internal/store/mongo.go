package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/headcookai/headcook/internal/models"
	"github.com/headcookai/headcook/internal/types"
)

const (
	usersCollection       = "users"
	credentialsCollection = "credentials"
)

// MongoStore implements UserStore and CredentialStore on MongoDB. Users are
// keyed by uid in _id.
type MongoStore struct {
	users       *mongo.Collection
	credentials *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:       db.Collection(usersCollection),
		credentials: db.Collection(credentialsCollection),
	}
}

// EnsureIndexes creates the unique email index on credentials.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.credentials.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create credentials index: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) IncrementSearchCount(ctx context.Context, identity types.Identity, limit int64) (int64, error) {
	now := time.Now()

	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": identity.UID},
		bson.M{"$setOnInsert": bson.M{
			"email":       identity.Email,
			"searchCount": int64(0),
			"createdAt":   now,
			"updatedAt":   now,
		}},
		options.Update().SetUpsert(true),
	)
	// A concurrent upsert of the same _id may lose the insert race
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	filter := bson.M{"_id": identity.UID}
	if limit > 0 {
		filter["searchCount"] = bson.M{"$lt": limit}
	}

	var user models.User
	err = s.users.FindOneAndUpdate(ctx,
		filter,
		bson.M{
			"$inc": bson.M{"searchCount": int64(1)},
			"$set": bson.M{"updatedAt": now},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrQuotaExceeded
		}
		return 0, fmt.Errorf("failed to increment search count: %w", err)
	}
	return user.SearchCount, nil
}

func (s *MongoStore) CreateCredential(ctx context.Context, cred *models.Credential) error {
	if _, err := s.credentials.InsertOne(ctx, cred); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

func (s *MongoStore) GetCredentialByEmail(ctx context.Context, email string) (*models.Credential, error) {
	var cred models.Credential
	if err := s.credentials.FindOne(ctx, bson.M{"email": email}).Decode(&cred); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}
