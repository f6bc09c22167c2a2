// internal/app/store/memberships/mongo.go
package membershipstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/studycove/studyhub/internal/app/system/perms"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is the MongoDB-backed membership store.
type Mongo struct {
	c *mongo.Collection
}

var _ Store = (*Mongo)(nil)

// NewMongo creates a Mongo store over the group_memberships collection.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{c: db.Collection("group_memberships")}
}

// EnsureIndexes creates the unique (group_id, user_id) compound index that
// backs the one-membership-per-user invariant, plus lookup indexes.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "group_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().SetName("idx_memberships_group_user_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_memberships_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Mongo) Add(ctx context.Context, m models.GroupMembership) (models.GroupMembership, error) {
	if !perms.ValidRole(perms.Role(m.Role)) {
		return models.GroupMembership{}, ErrBadRole
	}

	m.ID = primitive.NewObjectID()
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.GroupMembership{}, ErrDuplicateMembership
		}
		return models.GroupMembership{}, err
	}
	return m, nil
}

func (s *Mongo) Get(ctx context.Context, groupID, userID primitive.ObjectID) (models.GroupMembership, error) {
	var m models.GroupMembership
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.GroupMembership{}, ErrNotFound
	}
	if err != nil {
		return models.GroupMembership{}, err
	}
	return m, nil
}

func (s *Mongo) Remove(ctx context.Context, groupID, userID primitive.ObjectID) error {
	var m models.GroupMembership
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if m.Role != string(perms.RoleAdmin) {
		res, err := s.c.DeleteOne(ctx, bson.M{"_id": m.ID})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrNotFound
		}
		return nil
	}

	adminFilter := bson.M{"group_id": groupID, "role": string(perms.RoleAdmin)}
	admins, err := s.c.CountDocuments(ctx, adminFilter)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return ErrLastAdmin
	}

	res, err := s.c.DeleteOne(ctx, bson.M{"_id": m.ID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	// Recheck after the delete: a concurrent removal may have taken the
	// other admin between the count and the delete. Reinstating this row
	// keeps the group from ever ending up admin-less.
	admins, err = s.c.CountDocuments(ctx, adminFilter)
	if err == nil && admins == 0 {
		_, _ = s.c.InsertOne(ctx, m)
		return ErrLastAdmin
	}
	return nil
}

func (s *Mongo) CountByGroupRole(ctx context.Context, groupID primitive.ObjectID, role string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"group_id": groupID, "role": role})
}

func (s *Mongo) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GroupMembership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Mongo) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
