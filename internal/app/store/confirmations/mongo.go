// internal/app/store/confirmations/mongo.go
package confirmstore

import (
	"context"
	"time"

	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is the MongoDB-backed confirmation token store.
type Mongo struct {
	c *mongo.Collection
}

var _ Store = (*Mongo)(nil)

// NewMongo creates a Mongo store over the confirmation_tokens collection.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{c: db.Collection("confirmation_tokens")}
}

// EnsureIndexes creates the unique token index.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName("idx_confirmations_token_unique").SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Mongo) Insert(ctx context.Context, t models.ConfirmationToken) (models.ConfirmationToken, error) {
	t.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.ConfirmationToken{}, err
	}
	return t, nil
}

// MarkConsumed folds the whole binding check into the update filter, so
// the consumed flip is a single compare-and-swap at the database.
func (s *Mongo) MarkConsumed(ctx context.Context, token, action, targetID string, issuedTo primitive.ObjectID, now time.Time) (models.ConfirmationToken, error) {
	filter := bson.M{
		"token":      token,
		"action":     action,
		"target_id":  targetID,
		"issued_to":  issuedTo,
		"consumed":   false,
		"expires_at": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{"consumed": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.ConfirmationToken
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return models.ConfirmationToken{}, ErrNotRedeemable
	}
	if err != nil {
		return models.ConfirmationToken{}, err
	}
	return t, nil
}

func (s *Mongo) DeleteDead(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"consumed": true},
		bson.M{"expires_at": bson.M{"$lte": now}},
	}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
