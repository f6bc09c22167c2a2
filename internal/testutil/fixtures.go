package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for seeding test documents directly
// into the collections the stores read.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateGroup inserts an active group owned by ownerID.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, ownerID primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		OwnerID:   ownerID,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// CreateMembership inserts a membership for userID in groupID with the
// given role ("admin" or "member").
func (f *Fixtures) CreateMembership(ctx context.Context, groupID, userID primitive.ObjectID, role string) models.GroupMembership {
	f.t.Helper()

	m := models.GroupMembership{
		ID:       primitive.NewObjectID(),
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateInvite inserts an invite with the given token. maxUses may be
// nil for unlimited; expiresAt controls the derived state.
func (f *Fixtures) CreateInvite(ctx context.Context, token string, groupID, createdBy primitive.ObjectID, maxUses *int, expiresAt time.Time) models.GroupInvite {
	f.t.Helper()

	inv := models.GroupInvite{
		ID:        primitive.NewObjectID(),
		Token:     token,
		GroupID:   groupID,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
		MaxUses:   maxUses,
	}
	if _, err := f.db.Collection("group_invites").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("failed to create test invite: %v", err)
	}
	return inv
}
