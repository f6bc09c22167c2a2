// internal/app/store/groups/mongo.go
package groupstore

import (
	"context"
	"time"

	"github.com/studycove/studyhub/internal/app/system/status"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Mongo is the MongoDB-backed group store.
type Mongo struct {
	c *mongo.Collection
}

var _ Store = (*Mongo)(nil)

// NewMongo creates a Mongo store over the groups collection.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{c: db.Collection("groups")}
}

func (s *Mongo) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	if g.Status == "" {
		g.Status = status.Active
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

func (s *Mongo) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.Group{}, ErrNotFound
	}
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
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
