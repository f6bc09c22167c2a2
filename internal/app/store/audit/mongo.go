// internal/app/store/audit/mongo.go
package audit

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is the MongoDB-backed audit store.
type Mongo struct {
	c *mongo.Collection
}

var _ Store = (*Mongo)(nil)

// NewMongo creates a Mongo audit store over the audit_events collection.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{c: db.Collection("audit_events")}
}

// EnsureIndexes creates the query indexes.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{
			{Key: "group_id", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "actor_id", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "category", Value: 1},
			{Key: "event_type", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Mongo) Log(ctx context.Context, e Event) error {
	if _, err := s.c.InsertOne(ctx, stamp(e)); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Mongo) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	query := bson.M{}
	if filter.GroupID != nil {
		query["group_id"] = filter.GroupID
	}
	if filter.ActorID != nil {
		query["actor_id"] = filter.ActorID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	if filter.StartTime != nil || filter.EndTime != nil {
		rng := bson.M{}
		if filter.StartTime != nil {
			rng["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			rng["$lte"] = *filter.EndTime
		}
		query["timestamp"] = rng
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}
	return events, nil
}
