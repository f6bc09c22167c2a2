// internal/app/store/contents/mongo.go
package contentstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is the MongoDB-backed content metadata store.
type Mongo struct {
	c *mongo.Collection
}

var _ Store = (*Mongo)(nil)

// NewMongo creates a Mongo store over the group_contents collection.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{c: db.Collection("group_contents")}
}

// EnsureIndexes creates the group lookup index.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}},
			Options: options.Index().SetName("idx_contents_group"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Mongo) Insert(ctx context.Context, c models.GroupContent) (models.GroupContent, error) {
	c.ID = primitive.NewObjectID()
	if c.StorageKey == "" {
		c.StorageKey = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.GroupContent{}, err
	}
	return c, nil
}

func (s *Mongo) GetByID(ctx context.Context, id primitive.ObjectID) (models.GroupContent, error) {
	var c models.GroupContent
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return models.GroupContent{}, ErrNotFound
	}
	if err != nil {
		return models.GroupContent{}, err
	}
	return c, nil
}

func (s *Mongo) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupContent, error) {
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GroupContent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Mongo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
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
