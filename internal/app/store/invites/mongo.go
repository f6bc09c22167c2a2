// internal/app/store/invites/mongo.go
package invitestore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is the MongoDB-backed invite store.
type Mongo struct {
	c *mongo.Collection
}

var _ Store = (*Mongo)(nil)

// NewMongo creates a Mongo store over the group_invites collection.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{c: db.Collection("group_invites")}
}

// EnsureIndexes creates the unique token index and the group lookup index.
// No TTL index: expiry is derived lazily so validation and consumption can
// report "expired" instead of "unknown".
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName("idx_invites_token_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}},
			Options: options.Index().SetName("idx_invites_group"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Mongo) Insert(ctx context.Context, inv models.GroupInvite) (models.GroupInvite, error) {
	inv.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		if wafflemongo.IsDup(err) {
			return models.GroupInvite{}, ErrDuplicateToken
		}
		return models.GroupInvite{}, err
	}
	return inv, nil
}

func (s *Mongo) GetByToken(ctx context.Context, token string) (models.GroupInvite, error) {
	var inv models.GroupInvite
	err := s.c.FindOne(ctx, bson.M{"token": token}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return models.GroupInvite{}, ErrNotFound
	}
	if err != nil {
		return models.GroupInvite{}, err
	}
	return inv, nil
}

// ConsumeUse increments uses_consumed with a single conditional update so
// the Active check and the increment cannot interleave with a concurrent
// consumer.
func (s *Mongo) ConsumeUse(ctx context.Context, token string, now time.Time) (models.GroupInvite, error) {
	filter := bson.M{
		"token":      token,
		"revoked":    false,
		"expires_at": bson.M{"$gt": now},
		"$or": bson.A{
			bson.M{"max_uses": bson.M{"$exists": false}},
			bson.M{"max_uses": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$uses_consumed", "$max_uses"}}},
		},
	}
	update := bson.M{"$inc": bson.M{"uses_consumed": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var inv models.GroupInvite
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return models.GroupInvite{}, ErrNoActiveInvite
	}
	if err != nil {
		return models.GroupInvite{}, err
	}
	return inv, nil
}

// RefundUse reverses one ConsumeUse. The guard on uses_consumed keeps
// concurrent refunds from driving the count negative.
func (s *Mongo) RefundUse(ctx context.Context, token string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"token": token, "uses_consumed": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"uses_consumed": -1}})
	return err
}

func (s *Mongo) Revoke(ctx context.Context, token string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"token": token}, bson.M{"$set": bson.M{"revoked": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Mongo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
