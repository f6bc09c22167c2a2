package groupstore

import (
	"context"
	"errors"
	"testing"

	"github.com/studycove/studyhub/internal/domain/models"
	"github.com/studycove/studyhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoCreateAssignsDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewMongo(db)
	ctx := context.Background()

	created, err := store.Create(ctx, models.Group{
		Name:    "Linear Algebra",
		OwnerID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if created.Status != "active" {
		t.Errorf("status: got %q, want %q", created.Status, "active")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Linear Algebra" {
		t.Errorf("name: got %q", got.Name)
	}
}

func TestMongoDeleteMissingGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewMongo(db)

	err := store.Delete(context.Background(), primitive.NewObjectID())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete missing: got %v, want ErrNotFound", err)
	}
}
