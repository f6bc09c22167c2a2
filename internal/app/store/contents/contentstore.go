// internal/app/store/contents/contentstore.go

// Package contentstore persists shared group content metadata. The actual
// bytes live in the external upload pipeline; these records exist so
// access checks can verify which group a piece of content belongs to.
package contentstore

import (
	"context"
	"errors"

	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when no content record exists with the given ID.
var ErrNotFound = errors.New("content not found")

// Store is the persistence contract for group content metadata.
type Store interface {
	// Insert stores a content record, assigning ID, storage key, and
	// creation time.
	Insert(ctx context.Context, c models.GroupContent) (models.GroupContent, error)

	// GetByID returns the content record, or ErrNotFound.
	GetByID(ctx context.Context, id primitive.ObjectID) (models.GroupContent, error)

	// ListByGroup returns all content records owned by the group.
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupContent, error)

	// Delete removes one content record, or ErrNotFound.
	Delete(ctx context.Context, id primitive.ObjectID) error

	// DeleteByGroup removes all content records owned by the group.
	// Returns the number removed.
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}
